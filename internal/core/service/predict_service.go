package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/skinscan/api/internal/core/domain"
	"github.com/skinscan/api/internal/core/ports"
)

// PredictService relays image uploads to the prediction microservice.
type PredictService struct {
	predictor ports.Predictor
	logger    zerolog.Logger
}

func NewPredictService(predictor ports.Predictor, logger zerolog.Logger) *PredictService {
	return &PredictService{predictor: predictor, logger: logger}
}

// Predict returns the upstream body as-is. The payload is never inspected
// beyond what the Predictor does.
func (s *PredictService) Predict(ctx context.Context, req domain.PredictionRequest) ([]byte, error) {
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("%w: no image uploaded", domain.ErrValidation)
	}

	body, err := s.predictor.Predict(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	s.logger.Debug().Str("image", req.ImageName).Int("image_bytes", len(req.Image)).Msg("prediction relayed")
	return body, nil
}
