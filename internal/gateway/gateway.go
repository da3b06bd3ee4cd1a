package gateway

import (
	"context"
	"fmt"
)

const DefaultHuggingFaceURL = "https://router.huggingface.co/hf-inference/models/facebook/bart-large-cnn"

// Parameters are the fixed generation settings sent with every request.
type Parameters struct {
	MaxLength     int     `json:"max_length"`
	MinLength     int     `json:"min_length"`
	LengthPenalty float64 `json:"length_penalty"`
	NumBeams      int     `json:"num_beams"`
	EarlyStopping bool    `json:"early_stopping"`
	DoSample      bool    `json:"do_sample"`
}

var DefaultParameters = Parameters{
	MaxLength:     200,
	MinLength:     60,
	LengthPenalty: 2.0,
	NumBeams:      4,
	EarlyStopping: true,
	DoSample:      false,
}

// Gateway is the hosted summarization model. Summarize returns the model's
// raw JSON result on success.
type Gateway interface {
	Summarize(ctx context.Context, prompt string) ([]byte, error)
}

// LoadingError reports that the model is warming up.
type LoadingError struct {
	// EstimatedTime is the upstream wait estimate in seconds, zero if unknown.
	EstimatedTime float64
	Message       string
}

func (e *LoadingError) Error() string {
	return fmt.Sprintf("model is loading (estimated time = %.1fs): %s", e.EstimatedTime, e.Message)
}

// UpstreamError is any other error reported by the model service.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status = %d): %s", e.StatusCode, e.Message)
}
