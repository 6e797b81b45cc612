package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/edseed/pkg/edseed"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `data_dir: /srv/data
log_dir: /var/log/edseed
batch_size: 250
timeout: 10m
sources:
  attendance: att.csv
  enrollment: /abs/enr.csv
  assessments: mcas.csv
  schools:
    - a.csv
    - b.csv
connection:
  auth_method: aws
  aws_region: us-east-1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/srv/data", cfg.DataDir)
	assert.Equal(t, "/var/log/edseed", cfg.LogDir)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, "aws", cfg.Connection.AuthMethod)
	assert.Equal(t, "us-east-1", cfg.Connection.AWSRegion)
	require.NoError(t, cfg.Validate())

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, timeout)

	att, err := cfg.SourcesFor("attendance")
	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/data/att.csv"}, att)

	enr, err := cfg.SourcesFor("enrollment")
	require.NoError(t, err)
	assert.Equal(t, []string{"/abs/enr.csv"}, enr)

	schools, err := cfg.SourcesFor("schools")
	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/data/a.csv", "/srv/data/b.csv"}, schools)
}

func TestLoad_FilePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch_size: 10\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, edseed.DefaultDataDir, cfg.DataDir)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("batch_size: [oops"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConfigNotFound))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, edseed.DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, edseed.DefaultLogDir, cfg.LogDir)
	require.NoError(t, cfg.Validate())

	schools, err := cfg.SourcesFor("schools")
	require.NoError(t, err)
	require.Len(t, schools, 8)
	assert.Contains(t, schools[0], "Enrollment__Grade")
	assert.Contains(t, schools[7], "Graduation_Rates")

	mcas, err := cfg.SourcesFor("assessments")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(edseed.DefaultDataDir, "mcas_achievement_results", "MCAS_Achievement_Results_20251204.csv"), mcas[0])

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, edseed.DefaultTimeout, timeout)
}

func TestSourcesFor_UnknownDomain(t *testing.T) {
	_, err := Default().SourcesFor("graduation")
	assert.ErrorIs(t, err, edseed.ErrInvalidConfig)
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.BatchSize = -1
	cfg.Timeout = "soon"
	cfg.Connection.AuthMethod = "kerberos"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, edseed.ErrInvalidConfig)
	assert.ErrorIs(t, err, edseed.ErrUnsupportedAuthMethod)
	assert.Contains(t, err.Error(), "batch_size")
	assert.Contains(t, err.Error(), "soon")
}
