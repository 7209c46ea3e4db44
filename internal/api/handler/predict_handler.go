package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skinscan/api/internal/api/metrics"
	"github.com/skinscan/api/internal/core/domain"
	"github.com/skinscan/api/internal/core/ports"
)

// PredictHandler relays image uploads to the prediction microservice.
type PredictHandler struct {
	predictService ports.PredictService
	log            zerolog.Logger
}

func NewPredictHandler(predictService ports.PredictService, log zerolog.Logger) *PredictHandler {
	return &PredictHandler{predictService: predictService, log: log}
}

// Predict handles POST /predict. The upstream JSON is returned untouched.
//
// @Summary      Predict from a skin image
// @Tags         predict
// @Accept       multipart/form-data
// @Produce      json
// @Param        image   formData  file    true   "Image to analyse"
// @Param        age     formData  string  false  "Age"
// @Param        gender  formData  string  false  "Gender"
// @Param        weight  formData  string  false  "Weight"
// @Param        lat     formData  string  false  "Latitude"
// @Param        lon     formData  string  false  "Longitude"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  errorResponse
// @Failure      413     {object}  errorResponse
// @Failure      500     {object}  errorResponse
// @Router       /predict [post]
func (h *PredictHandler) Predict(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		// BodyLimit fails the read mid-stream for chunked uploads.
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgNoImage})
	}

	f, err := fh.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("open uploaded image")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgNoImage})
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		h.log.Error().Err(err).Msg("read uploaded image")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgNoImage})
	}

	req := domain.PredictionRequest{
		Image:     image,
		ImageName: fh.Filename,
		Metadata: domain.PredictionMetadata{
			Age:    c.FormValue("age"),
			Gender: c.FormValue("gender"),
			Weight: c.FormValue("weight"),
			Lat:    c.FormValue("lat"),
			Lon:    c.FormValue("lon"),
		},
	}

	start := time.Now()
	body, err := h.predictService.Predict(c.Request().Context(), req)
	if err == nil || errors.Is(err, domain.ErrUpstream) {
		metrics.ObserveUpstream(metrics.ServicePredictor, start, err)
	}
	if err != nil {
		if statusFor(err) == http.StatusBadRequest {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgNoImage})
		}
		h.log.Error().Err(err).Str("image", fh.Filename).Msg("predict proxy failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgPredictionFailure})
	}

	return c.JSONBlob(http.StatusOK, body)
}
