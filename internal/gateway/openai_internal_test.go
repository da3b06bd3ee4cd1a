package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenAI("test-key",
		option.WithBaseURL(srv.URL+"/"),
		option.WithMaxRetries(0))
}

func TestOpenAIShapesResultLikeSummarizationModel(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "resp_1",
			"object": "response",
			"status": "completed",
			"output": [{
				"type": "message",
				"id": "msg_1",
				"role": "assistant",
				"status": "completed",
				"content": [{"type": "output_text", "text": " A summary. ", "annotations": []}]
			}]
		}`))
	})

	result, err := o.Summarize(context.Background(), "Summarize this")
	require.NoError(t, err)
	require.JSONEq(t, `[{"summary_text":"A summary."}]`, string(result))
}

func TestOpenAIErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantLoading bool
	}{
		{"Unavailable is a warm-up", http.StatusServiceUnavailable, true},
		{"Bad request is upstream", http.StatusBadRequest, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(test.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
			})

			_, err := o.Summarize(context.Background(), "Summarize this")
			require.Error(t, err)

			var loadingErr *LoadingError
			var upstreamErr *UpstreamError
			if test.wantLoading {
				require.True(t, errors.As(err, &loadingErr), "got %v", err)
				return
			}

			require.True(t, errors.As(err, &upstreamErr), "got %v", err)
			require.Equal(t, test.status, upstreamErr.StatusCode)
		})
	}
}

func TestOpenAIRejectsEmptyPrompt(t *testing.T) {
	o := NewOpenAI("test-key")

	_, err := o.Summarize(context.Background(), "  ")
	require.Error(t, err)
}
