package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "revtrace.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 5000, cfg.PerformanceThresholdMS)
	assert.Equal(t, 5*time.Second, cfg.Threshold())
	assert.NotEmpty(t, cfg.EncodingFallbacks)
	assert.True(t, cfg.LoadWorkerLog)
}

func TestLoadFile(t *testing.T) {
	p := writeConfig(t, `
performance_threshold_ms: 2500
encoding_fallbacks: [windows-1252]
load_worker_log: false
`)

	cfg, err := LoadFile(p)
	require.NoError(t, err)

	assert.Equal(t, 2500, cfg.PerformanceThresholdMS)
	assert.Equal(t, []string{"windows-1252"}, cfg.EncodingFallbacks)
	assert.False(t, cfg.LoadWorkerLog)
}

func TestLoadFile_AbsentFieldsKeepDefaults(t *testing.T) {
	p := writeConfig(t, "performance_threshold_ms: 1000\n")

	cfg, err := LoadFile(p)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.PerformanceThresholdMS)
	assert.Equal(t, Default().EncodingFallbacks, cfg.EncodingFallbacks)
	assert.True(t, cfg.LoadWorkerLog)
}

func TestLoadFile_RejectsNonPositiveThreshold(t *testing.T) {
	p := writeConfig(t, "performance_threshold_ms: 0\n")

	_, err := LoadFile(p)
	assert.ErrorContains(t, err, "performance_threshold_ms")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_Malformed(t *testing.T) {
	p := writeConfig(t, "performance_threshold_ms: [not a number\n")

	_, err := LoadFile(p)
	assert.ErrorContains(t, err, "parse config")
}
