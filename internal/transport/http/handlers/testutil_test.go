package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ghpayroll/internal/app/server"
	"ghpayroll/internal/platform/config"
	"ghpayroll/internal/transport/http/api"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *api.Error      `json:"error"`
	RequestID string          `json:"requestId"`
}

func testConfig() config.Config {
	return config.Config{
		Addr:               ":0",
		Environment:        "test",
		StoreDriver:        config.StoreMemory,
		TokenTTL:           time.Hour,
		MaxBodyBytes:       4096,
		RateLimitPerMinute: 1000,
		BatchWorkers:       2,
		CompanyName:        "Acme Ghana Ltd",
		Currency:           "GHS",
		MetricsEnabled:     true,
	}
}

func newTestApp(t *testing.T, cfg config.Config) *server.App {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	app, err := server.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		app.Close()
	})
	return app
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch v := body.(type) {
		case string:
			buf.WriteString(v)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(v))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

// issueFields lists the field paths of a validation_error response.
func issueFields(t *testing.T, env envelope) []string {
	t.Helper()
	details, ok := env.Error.Details.(map[string]any)
	require.True(t, ok, "details missing")
	raw, ok := details["fields"].([]any)
	require.True(t, ok, "fields missing")
	fields := make([]string, 0, len(raw))
	for _, item := range raw {
		issue, ok := item.(map[string]any)
		require.True(t, ok)
		fields = append(fields, issue["field"].(string))
	}
	return fields
}
