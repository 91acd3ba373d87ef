package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wirebridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseKeepsDefaultsForAbsentFields(t *testing.T) {
	cfg, err := Parse([]byte("profile: firefox_139\n"))
	require.NoError(t, err)

	assert.Equal(t, "firefox_139", cfg.Profile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Zero(t, cfg.Timeout)
}

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse([]byte(`
profile: safari_18_5
proxy: socks5://127.0.0.1:1080
timeout: 15
queueSize: 32
logLevel: debug
logFormat: json
`))
	require.NoError(t, err)

	assert.Equal(t, "safari_18_5", cfg.Profile)
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.Proxy)
	assert.Equal(t, 15*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, 32, cfg.QueueSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("profil: chrome_137\n"))
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("profile: [unterminated\n"))
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	_, err := Parse([]byte("logLevel: loud\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logLevel")

	_, err = Parse([]byte("timeout: -5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeConfigFile(t, "")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLoadDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestLoadReadsFile(t *testing.T) {
	path := writeConfigFile(t, "profile: chrome_131\nproxy: http://proxy.example:8080\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "chrome_131", cfg.Profile)
	assert.Equal(t, "http://proxy.example:8080", cfg.Proxy)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvProfile, "opera_119")
	t.Setenv(EnvProxy, "socks5h://proxy.example:1080")
	t.Setenv(EnvTimeout, "45")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "json")

	cfg := Default()
	ApplyEnv(cfg)

	assert.Equal(t, "opera_119", cfg.Profile)
	assert.Equal(t, "socks5h://proxy.example:1080", cfg.Proxy)
	assert.Equal(t, 45, cfg.Timeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestApplyEnvIgnoresMalformedTimeout(t *testing.T) {
	t.Setenv(EnvTimeout, "soon")
	cfg := Default()
	ApplyEnv(cfg)
	assert.Zero(t, cfg.Timeout)
}

func TestResolveEnvBeatsFile(t *testing.T) {
	path := writeConfigFile(t, "profile: chrome_120\ntimeout: 10\n")
	t.Setenv(EnvProfile, "firefox_139")

	cfg, err := Resolve(path)
	require.NoError(t, err)

	assert.Equal(t, "firefox_139", cfg.Profile, "environment must beat the file")
	assert.Equal(t, 10, cfg.Timeout, "untouched fields keep the file's values")
}

func TestResolveConfigPathFromEnv(t *testing.T) {
	path := writeConfigFile(t, "profile: edge_134\n")
	t.Setenv(EnvConfig, path)

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "edge_134", cfg.Profile)
}

func TestResolveNoFileUsesDefaults(t *testing.T) {
	for _, env := range []string{EnvConfig, EnvProfile, EnvProxy, EnvTimeout, EnvLogLevel, EnvLogFormat} {
		t.Setenv(env, "")
	}
	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestResolveValidatesEnvValues(t *testing.T) {
	t.Setenv(EnvLogLevel, "loud")
	_, err := Resolve("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logLevel")
}
