package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
app:
  http:
    port: 0
instrument:
  enabled: false
  log_level: error
rate_limit:
  max_attempts: 2
otp:
  reset_endpoint_enabled: true
`

func startApp(t *testing.T) string {
	t.Helper()

	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(testConfig), 0o600))
	t.Setenv("CONFIG_PATH", file)
	t.Setenv("REDIS_URL", "")
	t.Setenv("SMTP_USER", "")
	t.Setenv("TEXTBEE_API_KEY", "")

	application := New()
	assert.Equal(t, 10*time.Second, application.ShutdownTimeout())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	errs := application.Serve(l)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		application.Stop(ctx)
		assert.ErrorIs(t, <-errs, http.ErrServerClosed)
	})

	return "http://" + l.Addr().String()
}

func doJSON(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return resp.StatusCode, out
}

func TestApp_ServesOTPEndpoints(t *testing.T) {
	base := startApp(t)

	status, body := doJSON(t, http.MethodGet, base+"/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"status": "ok", "store": "memory"}, body)

	send := `{"recipient":"+15005550006","channel":"sms"}`
	for range 2 {
		status, body = doJSON(t, http.MethodPost, base+"/otp/send", send)
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, "sent", body["status"])
	}

	status, body = doJSON(t, http.MethodPost, base+"/otp/send", send)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "rate_limited", body["error"])

	status, body = doJSON(t, http.MethodPost, base+"/otp/reset-attempts", `{"recipient":"+15005550006"}`)
	require.Equal(t, http.StatusOK, status, body)

	status, _ = doJSON(t, http.MethodPost, base+"/otp/send", send)
	assert.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, http.MethodPost, base+"/otp/verify", `{"recipient":"+15005550006","code":"00000"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_code", body["error"])

	status, body = doJSON(t, http.MethodPost, base+"/otp/send", `{"recipient":"+15005550006","channel":"carrier-pigeon"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "unsupported_channel", body["error"])
}
