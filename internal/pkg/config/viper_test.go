package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/otpgate/internal/pkg/config"
)

const sampleYAML = `
otp:
  ttl_seconds: 120
  length: 8
store:
  key_prefix: "test:"
instrument:
  log_mask_fields:
    - code
    - " api_key "
cors:
  origins: "https://a.example, https://b.example,,"
`

func TestNewViperFromBytes(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, cfg.Close()) })

	assert.Equal(t, 8, cfg.GetInt("otp.length"))
	assert.Equal(t, int64(120), cfg.GetInt64("otp.ttl_seconds"))
	assert.Equal(t, 120*time.Second, cfg.GetSecond("otp.ttl_seconds"))
	assert.Equal(t, "test:", cfg.GetString("store.key_prefix"))
	assert.Empty(t, cfg.GetString("missing.key"))
	assert.False(t, cfg.GetBool("missing.key"))
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	_, err := config.NewViperFromBytes(" ", []byte(sampleYAML))
	require.Error(t, err)
}

func TestViper_GetArray(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"code", "api_key"}, cfg.GetArray("instrument.log_mask_fields"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.GetArray("cors.origins"))
	assert.Empty(t, cfg.GetArray("missing.key"))
}

func TestViper_Defaults(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(sampleYAML), config.WithDefaults(map[string]any{
		"otp.length":              6,
		"rate_limit.max_attempts": 5,
		"rate_limit.window_ms":    60000,
	}))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.GetInt("otp.length"), "file value wins over default")
	assert.Equal(t, 5, cfg.GetInt("rate_limit.max_attempts"))
	assert.Equal(t, int64(60000), cfg.GetInt64("rate_limit.window_ms"))
}

func TestViper_EnvOverride(t *testing.T) {
	t.Setenv("OTP_LENGTH", "10")
	t.Setenv("RATE_LIMIT_MAX", "3")

	cfg, err := config.NewViperFromBytes("yaml", []byte(sampleYAML),
		config.WithDefaults(map[string]any{"rate_limit.max_attempts": 5}),
		config.WithEnvAliases(map[string][]string{"rate_limit.max_attempts": {"RATE_LIMIT_MAX"}}),
	)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.GetInt("otp.length"))
	assert.Equal(t, 3, cfg.GetInt("rate_limit.max_attempts"))
}

func TestNewViper(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sampleYAML), 0o600))

	cfg, err := config.NewViper(file)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.GetInt("otp.length"))
}

func TestNewViper_MissingFile(t *testing.T) {
	cfg, err := config.NewViper(filepath.Join(t.TempDir(), "config.yaml"),
		config.WithDefaults(map[string]any{"otp.length": 6}))
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.GetInt("otp.length"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("OTPGATE_DOTENV_PROBE=loaded\n"), 0o600))
	t.Setenv("OTPGATE_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("OTPGATE_DOTENV_PROBE"))

	require.NoError(t, config.LoadDotEnv(file, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "loaded", os.Getenv("OTPGATE_DOTENV_PROBE"))
}
