package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/telemetry"
)

// maxResponseSize is the maximum allowed response size from the model service (1MB)
const maxResponseSize = 1 << 20

// HTTPClient calls the churn model service over HTTP. A request posts the
// full 50-field feature vector to /predict and receives a churn probability
// with a confidence estimate. Transient failures (connection errors, 5xx,
// 429) surface as shared.ErrClassifierUnavailable and are retried with
// bounded backoff; malformed responses and 4xx are not retried.
type HTTPClient struct {
	config     *Config
	httpClient *http.Client
	retry      shared.RetryPolicy

	mu           sync.RWMutex
	modelVersion string
}

var _ scoring.Classifier = (*HTTPClient)(nil)

// predictRequest is the wire shape sent to the model service
type predictRequest struct {
	Features *scoring.FeatureVector `json:"features"`
}

// predictResponse is the wire shape returned by the model service
type predictResponse struct {
	Probability  float64 `json:"churn_probability"`
	Confidence   float64 `json:"confidence"`
	ModelVersion string  `json:"model_version"`
}

type healthResponse struct {
	Status       string `json:"status"`
	ModelVersion string `json:"model_version"`
}

// NewHTTPClient creates a model service client with the given configuration
func NewHTTPClient(config *Config) (*HTTPClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		retry: shared.RetryPolicy{
			MaxAttempts: config.MaxRetries,
			BaseBackoff: config.RetryBackoff,
			MaxBackoff:  30 * time.Second,
		},
		modelVersion: config.ModelVersion,
	}, nil
}

// Score implements scoring.Classifier
func (c *HTTPClient) Score(ctx context.Context, vector *scoring.FeatureVector) (*scoring.ScoreResult, error) {
	if vector == nil {
		return nil, fmt.Errorf("%w: nil feature vector", shared.ErrInvalidInput)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "classifier", "Score",
		telemetry.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	telemetry.SetAttributes(span, "model_version", c.ModelVersion())

	payload, err := json.Marshal(predictRequest{Features: vector})
	if err != nil {
		return nil, fmt.Errorf("classifier: failed to encode request: %w", err)
	}

	var result *scoring.ScoreResult
	err = c.retry.Do(ctx, func(ctx context.Context) error {
		res, attemptErr := c.predict(ctx, payload)
		if attemptErr != nil {
			if errors.Is(attemptErr, shared.ErrClassifierUnavailable) {
				return attemptErr
			}
			// 4xx and malformed bodies will not improve on retry.
			return shared.Permanent(attemptErr)
		}
		result = res
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return result, nil
}

func (c *HTTPClient) predict(ctx context.Context, payload []byte) (*scoring.ScoreResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.config.BaseURL, "/")+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("classifier: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", shared.ErrClassifierUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: HTTP %d", shared.ErrClassifierUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("classifier: HTTP %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var out predictResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("classifier: malformed response: %w", err)
	}
	if out.Probability < 0 || out.Probability > 1 {
		return nil, fmt.Errorf("classifier: probability %f out of range", out.Probability)
	}

	version := out.ModelVersion
	if version == "" {
		version = c.ModelVersion()
	} else {
		c.setModelVersion(version)
	}

	return &scoring.ScoreResult{
		Probability:  out.Probability,
		Confidence:   out.Confidence,
		ModelVersion: version,
	}, nil
}

// ModelVersion implements scoring.Classifier. It returns the version the
// service most recently reported, falling back to the configured version.
func (c *HTTPClient) ModelVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.modelVersion
}

func (c *HTTPClient) setModelVersion(version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modelVersion = version
}

// Healthy probes the model service health endpoint. A reachable service
// that reports a model version refreshes the cached version.
func (c *HTTPClient) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.config.BaseURL, "/")+"/health", nil)
	if err != nil {
		return fmt.Errorf("classifier: failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", shared.ErrClassifierUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", shared.ErrClassifierUnavailable, err)
	}

	var out healthResponse
	if err := json.Unmarshal(body, &out); err == nil && out.ModelVersion != "" {
		c.setModelVersion(out.ModelVersion)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
