package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textsummarizer/internal/domain"
)

func TestSummarize(t *testing.T) {
	var gotInputs string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summarize", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotInputs = body["inputs"]

		_, _ = w.Write([]byte(`[{"summary_text":"The gist."}]`))
	}))
	defer srv.Close()

	summary, err := New(srv.URL+"/", time.Second).Summarize(context.Background(), "some text")
	require.NoError(t, err)
	require.Equal(t, "The gist.", summary)
	require.Equal(t, "some text", gotInputs)
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantKind      domain.ErrorKind
		wantEstimated float64
		wantSummary   string
	}{
		{"Success", 200, `[{"summary_text":"ok"}]`, "", 0, "ok"},
		{"Warm-up", 503, `{"error":"Model is loading","estimated_time":15}`, domain.KindRetryable, 15, ""},
		{"Warm-up default wait", 503, `{"error":"Model is loading"}`, domain.KindRetryable, 20, ""},
		{"Loading text on 500", 500, `{"error":"still loading"}`, domain.KindRetryable, 20, ""},
		{"Too short", 400, `{"error":"Text must be at least 50 characters"}`, domain.KindValidation, 0, ""},
		{"Gateway failure", 500, `{"error":"bad things"}`, domain.KindGateway, 0, ""},
		{"Unexpected status", 502, `<html/>`, domain.KindGateway, 0, ""},
		{"Empty array", 200, `[]`, domain.KindGateway, 0, ""},
		{"Missing field", 200, `[{"generated_text":"x"}]`, domain.KindGateway, 0, ""},
		{"Not JSON", 200, `nope`, domain.KindGateway, 0, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			summary, err := parseResponse(test.status, []byte(test.body))

			if test.wantKind == "" {
				require.NoError(t, err)
				require.Equal(t, test.wantSummary, summary)
				return
			}

			var e *domain.Error
			require.True(t, errors.As(err, &e), "got %v", err)
			require.Equal(t, test.wantKind, e.Kind)
			require.Equal(t, test.wantEstimated, e.EstimatedTime)
		})
	}
}

func TestSummarizeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Summarize(context.Background(), "text")
	require.Equal(t, domain.KindUnreachable, domain.KindOf(err))
}
