package analysis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"shipshape/internal/core/ports"

	"go.uber.org/zap"
)

// Client forwards analysis requests to the downstream AI service. The
// payload and response are opaque to this service.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.SugaredLogger
}

func NewClient(endpoint string, timeout time.Duration, logger *zap.SugaredLogger) ports.Analyzer {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (c *Client) Analyze(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call analysis service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read analysis response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Errorw("analysis service returned error",
			"status", resp.StatusCode,
			"body_len", len(body),
		)
		return nil, fmt.Errorf("analysis service status %d", resp.StatusCode)
	}
	return body, nil
}
