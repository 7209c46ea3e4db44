// Package predictor talks to the image prediction microservice over
// multipart/form-data.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"time"

	"github.com/skinscan/api/internal/core/domain"
)

const (
	DefaultTimeout = 15 * time.Second

	// maxResponseBytes caps how much of the upstream body is buffered.
	maxResponseBytes = 4 << 20
	defaultImageName = "image"
)

// Client implements ports.Predictor.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient returns a Client posting to url. Each call is bounded by timeout
// (DefaultTimeout when zero).
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        url,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Predict forwards the image and metadata and returns the upstream JSON body
// byte for byte. Every failure is wrapped with domain.ErrUpstream.
func (c *Client) Predict(ctx context.Context, req domain.PredictionRequest) ([]byte, error) {
	body, contentType, err := encodeForm(req)
	if err != nil {
		return nil, fmt.Errorf("encode prediction form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrUpstream, err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrUpstream, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: prediction service returned status %d", domain.ErrUpstream, resp.StatusCode)
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: prediction service returned non-JSON body", domain.ErrUpstream)
	}

	return payload, nil
}

// encodeForm writes the image part first, then the metadata fields in a fixed
// order. Missing metadata is sent as an empty string.
func encodeForm(req domain.PredictionRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := req.ImageName
	if name == "" {
		name = defaultImageName
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "image",
		"filename": name,
	}))
	h.Set("Content-Type", imageContentType(name))

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Image); err != nil {
		return nil, "", err
	}

	m := req.Metadata
	fields := []struct{ key, value string }{
		{"age", m.Age},
		{"gender", m.Gender},
		{"weight", m.Weight},
		{"lat", m.Lat},
		{"lon", m.Lon},
	}
	for _, f := range fields {
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func imageContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
