package ports

import (
	"context"

	"github.com/skinscan/api/internal/core/domain"
)

// Predictor forwards an image and its metadata to the prediction microservice
// and returns the raw response body.
type Predictor interface {
	Predict(ctx context.Context, req domain.PredictionRequest) ([]byte, error)
}

// PredictService validates an upload and relays it to the Predictor.
type PredictService interface {
	Predict(ctx context.Context, req domain.PredictionRequest) ([]byte, error)
}
