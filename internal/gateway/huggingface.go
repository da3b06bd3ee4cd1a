package gateway

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
)

const (
	defaultHuggingFaceTimeout = 120 * time.Second
	maxResponseBytes          = 4 << 20
)

// HuggingFace calls the Hugging Face inference endpoint of a summarization
// model.
type HuggingFace struct {
	url        string
	token      string
	parameters Parameters
	client     *http.Client
}

type huggingFaceRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters Parameters `json:"parameters"`
}

func NewHuggingFace(url, token string, timeout time.Duration) *HuggingFace {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultHuggingFaceURL
	}

	if timeout <= 0 {
		timeout = defaultHuggingFaceTimeout
	}

	return &HuggingFace{
		url:        url,
		token:      strings.TrimSpace(token),
		parameters: DefaultParameters,
		client:     &http.Client{Timeout: timeout},
	}
}

func (h *HuggingFace) Summarize(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(huggingFaceRequest{
		Inputs:     prompt,
		Parameters: h.parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return classifyResponse(resp.StatusCode, respBody)
}

// classifyResponse turns the upstream reply into a result or a typed error.
// A reply is a warm-up when the status is 503, when it carries a numeric
// estimated_time, or when its error mentions "loading". The last rule keeps
// compatibility with endpoints that only report the condition in the text.
func classifyResponse(statusCode int, body []byte) ([]byte, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("malformed response (status = %d, bytes = %d)", statusCode, len(body))
	}

	errField := gjson.GetBytes(body, "error")
	estimated := gjson.GetBytes(body, "estimated_time")

	upstreamMessage := errField.String()
	if errField.IsArray() {
		parts := make([]string, 0, len(errField.Array()))
		for _, e := range errField.Array() {
			parts = append(parts, e.String())
		}
		upstreamMessage = strings.Join(parts, "; ")
	}

	loading := statusCode == http.StatusServiceUnavailable ||
		estimated.Type == gjson.Number ||
		(errField.Exists() && strings.Contains(strings.ToLower(upstreamMessage), "loading"))

	if loading && (errField.Exists() || statusCode >= http.StatusBadRequest) {
		return nil, &LoadingError{
			EstimatedTime: estimated.Float(),
			Message:       upstreamMessage,
		}
	}

	if errField.Exists() && upstreamMessage != "" {
		return nil, &UpstreamError{StatusCode: statusCode, Message: upstreamMessage}
	}

	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, &UpstreamError{StatusCode: statusCode, Message: http.StatusText(statusCode)}
	}

	return body, nil
}
