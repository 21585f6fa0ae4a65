package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "latin1", cfg.Import.Encoding)
	assert.Equal(t, 1000, cfg.Import.SchoolBatchSize)
	assert.Equal(t, 5000, cfg.Scan.BatchSize)
	assert.Equal(t, 10, cfg.Import.ReportLimit)
	assert.Equal(t, filepath.Join("./media", "photos"), cfg.PhotosPath())
	assert.Equal(t, 24*time.Hour, cfg.ScanJobTTL())
}

func TestLoadConfig_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := "media:\n  root: /srv/media\n  photos_dir: /data/photos\nscan:\n  batch_size: 250\nimport:\n  encoding: cp1252\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("SCAN_BATCH_SIZE", "750")
	t.Setenv("IMPORT_DEFAULT_BATCH", "2026")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/photos", cfg.PhotosPath())
	assert.Equal(t, "cp1252", cfg.Import.Encoding)
	assert.Equal(t, 750, cfg.Scan.BatchSize)
	assert.Equal(t, "2026", cfg.Import.DefaultBatch)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	t.Setenv("SCAN_BATCH_SIZE", "0")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan batch_size")
}

func TestLoadConfig_RejectsMalformedEnv(t *testing.T) {
	t.Setenv("MEDIA_MAX_PHOTO_BYTES", "ten")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEDIA_MAX_PHOTO_BYTES")
}
