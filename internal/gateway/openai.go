package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	baseMaxOutputTokens  int64 = 512
	limitMaxOutputTokens int64 = 2048

	openAIInstructions = `You are a summarization model.

Rules:
- Follow the instruction at the top of the input.
- Neutral tone, plain prose, no lists or headings.
- Output only the summary in the same language as the text.`
)

// OpenAI calls OpenAI's Responses API and shapes the answer like a
// Hugging Face summarization result.
type OpenAI struct {
	client openai.Client
}

type summaryResult struct {
	SummaryText string `json:"summary_text"`
}

func NewOpenAI(apiKey string, opts ...option.RequestOption) *OpenAI {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAI{
		client: openai.NewClient(opts...),
	}
}

func (o *OpenAI) Summarize(ctx context.Context, prompt string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("prompt is empty")
	}

	maxOutputTokens := baseMaxOutputTokens
	for {
		resp, err := o.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           openai.ChatModelGPT5Mini2025_08_07,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Reasoning: responses.ReasoningParam{
				Effort: openai.ReasoningEffortLow,
			},
			Instructions: openai.String(openAIInstructions),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(prompt),
			},
		})
		if err != nil {
			return nil, classifyOpenAIError(err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens)
				continue
			}
			return nil, &UpstreamError{
				StatusCode: http.StatusOK,
				Message: fmt.Sprintf(
					"response is incomplete (reason = %s, maxOutputTokens = %d)",
					resp.IncompleteDetails.Reason,
					maxOutputTokens,
				),
			}
		}

		summary := strings.TrimSpace(resp.OutputText())
		if summary == "" {
			return nil, &UpstreamError{
				StatusCode: http.StatusOK,
				Message:    fmt.Sprintf("output text is missing (status = %s)", resp.Status),
			}
		}

		result, err := json.Marshal([]summaryResult{{SummaryText: summary}})
		if err != nil {
			return nil, fmt.Errorf("marshal result: %w", err)
		}

		return result, nil
	}
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("do request: %w", err)
	}

	if apiErr.StatusCode == http.StatusServiceUnavailable {
		return &LoadingError{Message: apiErr.Error()}
	}

	return &UpstreamError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
}
