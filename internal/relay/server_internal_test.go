package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"textsummarizer/internal/gateway"
)

func newTestServer(g gateway.Gateway) *Server {
	metrics := NewMetrics()
	return NewServer(NewService(g, metrics, discardLogger()), metrics, ":0", discardLogger())
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	return rec
}

func summarizeBody(t *testing.T, inputs string) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{"inputs": inputs})
	require.NoError(t, err)

	return string(body)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestServer(&fakeGateway{}), http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "OK", body["status"])
	require.NotEmpty(t, body["message"])
	require.NotEmpty(t, body["timestamp"])
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSummarizeSuccess(t *testing.T) {
	g := &fakeGateway{result: []byte(`[{"summary_text":"A concise summary."}]`)}
	rec := doRequest(t, newTestServer(g), http.MethodPost, "/summarize", summarizeBody(t, strings.Repeat("x", 200)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"summary_text":"A concise summary."}]`, rec.Body.String())
}

func TestSummarizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"Missing inputs", `{}`, "at least 50"},
		{"Forty characters", summarizeBody(t, strings.Repeat("y", 40)), "at least 50"},
		{"Too long", summarizeBody(t, strings.Repeat("y", 10_001)), "too long"},
		{"Inputs is not a string", `{"inputs": 42}`, "inputs string"},
		{"Broken JSON", `{"inputs": `, "inputs string"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := &fakeGateway{}
			rec := doRequest(t, newTestServer(g), http.MethodPost, "/summarize", test.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			require.Equal(t, "validation", body["kind"])
			require.Contains(t, body["error"], test.wantErr)
			require.Zero(t, g.calls.Load())
		})
	}
}

func TestSummarizeWarmUp(t *testing.T) {
	g := &fakeGateway{err: &gateway.LoadingError{EstimatedTime: 15, Message: "model is loading"}}
	rec := doRequest(t, newTestServer(g), http.MethodPost, "/summarize", summarizeBody(t, strings.Repeat("z", 200)))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "retryable", body["kind"])
	require.Equal(t, "Model is loading", body["error"])
	require.InDelta(t, 15, body["estimated_time"], 0)
	require.NotEmpty(t, body["message"])
}

func TestSummarizeGatewayError(t *testing.T) {
	g := &fakeGateway{err: &gateway.UpstreamError{StatusCode: 400, Message: "bad input"}}
	rec := doRequest(t, newTestServer(g), http.MethodPost, "/summarize", summarizeBody(t, strings.Repeat("z", 200)))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "gateway", body["kind"])
	require.Equal(t, "bad input", body["error"])
	require.Equal(t, gatewayFailedMessage, body["message"])
}

func TestSummarizeInternalError(t *testing.T) {
	tests := []struct {
		name string
		g    *fakeGateway
	}{
		{"Gateway call failure", &fakeGateway{err: json.Unmarshal([]byte("{"), &struct{}{})}},
		{"Panic", &fakeGateway{panic: true}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := doRequest(t, newTestServer(test.g), http.MethodPost, "/summarize", summarizeBody(t, strings.Repeat("z", 200)))

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			body := decodeBody(t, rec)
			require.Equal(t, "internal", body["kind"])
			require.Equal(t, "Internal Server Error", body["error"])
			require.NotEmpty(t, body["message"])
		})
	}
}

func TestPreflight(t *testing.T) {
	for _, path := range []string{"/summarize", "/"} {
		rec := doRequest(t, newTestServer(&fakeGateway{}), http.MethodOptions, path, "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Body.String())
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
		require.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := doRequest(t, newTestServer(&fakeGateway{}), http.MethodGet, "/summarize", "")

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Contains(t, decodeBody(t, rec)["error"], "POST")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeGateway{result: []byte(`[{"summary_text":"ok"}]`)})
	doRequest(t, s, http.MethodPost, "/summarize", summarizeBody(t, strings.Repeat("m", 100)))

	rec := doRequest(t, s, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `relay_requests_total{outcome="success"} 1`)
}
