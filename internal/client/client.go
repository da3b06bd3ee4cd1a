package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"textsummarizer/internal/domain"
)

const (
	DefaultRelayURL = "http://localhost:3000"

	defaultTimeout   = 150 * time.Second
	maxResponseBytes = 4 << 20
)

// Client talks to the relay's HTTP surface.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultRelayURL
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Summarize returns the first summary_text of the relay result. Failures are
// *domain.Error values.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/summarize", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &domain.Error{
			Kind:    domain.KindUnreachable,
			Message: "Cannot connect to server",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &domain.Error{
			Kind:    domain.KindUnreachable,
			Message: "Connection to server was interrupted",
			Err:     err,
		}
	}

	return parseResponse(resp.StatusCode, respBody)
}

func parseResponse(statusCode int, body []byte) (string, error) {
	errField := gjson.GetBytes(body, "error")

	if statusCode == http.StatusServiceUnavailable ||
		(errField.Exists() && strings.Contains(strings.ToLower(errField.String()), "loading")) {
		estimated := gjson.GetBytes(body, "estimated_time").Float()
		if estimated <= 0 {
			estimated = domain.DefaultEstimatedTimeSeconds
		}

		return "", &domain.Error{
			Kind:          domain.KindRetryable,
			Message:       "Model loading",
			EstimatedTime: estimated,
		}
	}

	if errField.Exists() {
		kind := domain.KindGateway
		if statusCode == http.StatusBadRequest {
			kind = domain.KindValidation
		}

		return "", &domain.Error{Kind: kind, Message: errField.String()}
	}

	if statusCode != http.StatusOK {
		return "", &domain.Error{
			Kind:    domain.KindGateway,
			Message: fmt.Sprintf("unexpected status %d", statusCode),
		}
	}

	summary := gjson.GetBytes(body, "0.summary_text")
	if !gjson.ValidBytes(body) || !summary.Exists() || strings.TrimSpace(summary.String()) == "" {
		return "", &domain.Error{Kind: domain.KindGateway, Message: "Invalid response from AI model"}
	}

	return summary.String(), nil
}
