package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skinscan/api/internal/core/domain"
)

type stubPredictService struct {
	predictFn func(ctx context.Context, req domain.PredictionRequest) ([]byte, error)
	calls     int
}

func (s *stubPredictService) Predict(ctx context.Context, req domain.PredictionRequest) ([]byte, error) {
	s.calls++
	return s.predictFn(ctx, req)
}

func multipartRequest(t *testing.T, image []byte, imageName string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if image != nil {
		part, err := w.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = part.Write(image)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/predict", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestPredictHandler_Predict_RelaysUpstreamJSON(t *testing.T) {
	e := newTestEcho()
	upstream := []byte(`{"prediction":"nevus","confidence":0.88,"treatments":["monitor"]}`)
	var got domain.PredictionRequest
	stub := &stubPredictService{predictFn: func(ctx context.Context, req domain.PredictionRequest) ([]byte, error) {
		got = req
		return upstream, nil
	}}
	handler := NewPredictHandler(stub, zerolog.Nop())

	req := multipartRequest(t, []byte("jpeg"), "arm.jpg", map[string]string{
		"age": "33", "gender": "male", "weight": "80", "lat": "10.5", "lon": "-66.9",
	})
	rec := httptest.NewRecorder()
	if err := handler.Predict(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), upstream) {
		t.Fatalf("body altered: %s", rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		t.Fatalf("unexpected content type %q", ct)
	}
	want := domain.PredictionMetadata{Age: "33", Gender: "male", Weight: "80", Lat: "10.5", Lon: "-66.9"}
	if got.Metadata != want || got.ImageName != "arm.jpg" || string(got.Image) != "jpeg" {
		t.Fatalf("unexpected request forwarded: %+v", got)
	}
}

func TestPredictHandler_Predict_MissingMetadataIsEmpty(t *testing.T) {
	e := newTestEcho()
	var got domain.PredictionRequest
	stub := &stubPredictService{predictFn: func(ctx context.Context, req domain.PredictionRequest) ([]byte, error) {
		got = req
		return []byte(`{}`), nil
	}}
	handler := NewPredictHandler(stub, zerolog.Nop())

	req := multipartRequest(t, []byte("png"), "back.png", map[string]string{"age": "70"})
	rec := httptest.NewRecorder()
	_ = handler.Predict(e.NewContext(req, rec))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Metadata != (domain.PredictionMetadata{Age: "70"}) {
		t.Fatalf("missing fields should be empty strings: %+v", got.Metadata)
	}
}

func TestPredictHandler_Predict_NoImage(t *testing.T) {
	cases := map[string]*http.Request{
		"multipart without file": multipartRequest(t, nil, "", map[string]string{"age": "20"}),
		"json body":              httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(`{"age":"20"}`)),
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubPredictService{predictFn: func(ctx context.Context, req domain.PredictionRequest) ([]byte, error) {
				return nil, nil
			}}
			handler := NewPredictHandler(stub, zerolog.Nop())

			rec := httptest.NewRecorder()
			_ = handler.Predict(e.NewContext(req, rec))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if resp := decodeBody(t, rec); resp["error"] != msgNoImage {
				t.Fatalf("unexpected payload: %+v", resp)
			}
			if stub.calls != 0 {
				t.Fatalf("service called %d times", stub.calls)
			}
		})
	}
}

func TestPredictHandler_Predict_UpstreamFailure(t *testing.T) {
	e := newTestEcho()
	stub := &stubPredictService{predictFn: func(ctx context.Context, req domain.PredictionRequest) ([]byte, error) {
		return nil, fmt.Errorf("%w: context deadline exceeded", domain.ErrUpstream)
	}}
	handler := NewPredictHandler(stub, zerolog.Nop())

	req := multipartRequest(t, []byte("jpeg"), "leg.jpg", nil)
	rec := httptest.NewRecorder()
	_ = handler.Predict(e.NewContext(req, rec))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["error"] != msgPredictionFailure {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

// tooLargeReader yields data and then fails the way echo's BodyLimit does
// once a streamed body passes the limit.
type tooLargeReader struct {
	r io.Reader
}

func (t *tooLargeReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err == io.EOF {
		return n, echo.ErrStatusRequestEntityTooLarge
	}
	return n, err
}

func TestPredictHandler_Predict_BodyLimitPassesThrough(t *testing.T) {
	e := newTestEcho()
	stub := &stubPredictService{predictFn: func(ctx context.Context, req domain.PredictionRequest) ([]byte, error) {
		return nil, nil
	}}
	handler := NewPredictHandler(stub, zerolog.Nop())

	req := multipartRequest(t, []byte("jpeg"), "arm.jpg", map[string]string{"age": "40"})
	full, _ := io.ReadAll(req.Body)
	req.Body = io.NopCloser(&tooLargeReader{r: bytes.NewReader(full[:len(full)/2])})
	req.ContentLength = -1
	rec := httptest.NewRecorder()

	err := handler.Predict(e.NewContext(req, rec))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 HTTPError, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("service called %d times", stub.calls)
	}
}
