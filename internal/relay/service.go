package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"textsummarizer/internal/domain"
	"textsummarizer/internal/gateway"
)

const PromptPrefix = "Summarize the following text concisely, capturing the main points and key ideas:"

// Service validates summarization requests and forwards them to the
// gateway. It keeps no state between requests.
type Service struct {
	gateway gateway.Gateway
	metrics *Metrics
	log     *slog.Logger
}

func NewService(g gateway.Gateway, metrics *Metrics, log *slog.Logger) *Service {
	return &Service{
		gateway: g,
		metrics: metrics,
		log:     log,
	}
}

// Handle summarizes inputs and returns the gateway result unchanged. Every
// failure is a *domain.Error.
func (s *Service) Handle(ctx context.Context, inputs string) (json.RawMessage, error) {
	inputLength := domain.TextLength(inputs)

	if err := domain.ValidateInput(inputs); err != nil {
		s.log.InfoContext(ctx, "Summarize request is rejected",
			"error", err,
			"inputLength", inputLength)
		s.metrics.observeOutcome(domain.KindValidation)

		return nil, err
	}

	s.log.InfoContext(ctx, "Summarizing text",
		"inputLength", inputLength)
	s.metrics.observeInput(inputLength)

	start := time.Now()
	result, err := s.gateway.Summarize(ctx, BuildPrompt(inputs))
	s.metrics.observeGateway(time.Since(start))

	if err != nil {
		relayErr := normalizeGatewayError(err)

		s.log.ErrorContext(ctx, "Failed to summarize text",
			"error", err,
			"kind", relayErr.Kind,
			"inputLength", inputLength,
			"gatewayDuration", time.Since(start))
		s.metrics.observeOutcome(relayErr.Kind)

		return nil, relayErr
	}

	s.log.InfoContext(ctx, "Summary is generated",
		"inputLength", inputLength,
		"resultBytes", len(result),
		"gatewayDuration", time.Since(start))
	s.metrics.observeOutcome("")

	return json.RawMessage(result), nil
}

func BuildPrompt(inputs string) string {
	return PromptPrefix + "\n\n" + inputs
}

func normalizeGatewayError(err error) *domain.Error {
	var loadingErr *gateway.LoadingError
	if errors.As(err, &loadingErr) {
		estimated := loadingErr.EstimatedTime
		if estimated <= 0 {
			estimated = domain.DefaultEstimatedTimeSeconds
		}

		return &domain.Error{
			Kind:          domain.KindRetryable,
			Message:       "Model is loading",
			EstimatedTime: estimated,
			Err:           err,
		}
	}

	var upstreamErr *gateway.UpstreamError
	if errors.As(err, &upstreamErr) {
		return &domain.Error{
			Kind:    domain.KindGateway,
			Message: upstreamErr.Message,
			Err:     err,
		}
	}

	return &domain.Error{
		Kind:    domain.KindInternal,
		Message: "Internal Server Error",
		Err:     err,
	}
}
