package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("PADRON_CONFIG", "")
	t.Setenv("DATABASE_URL", "postgres://padron@localhost:5432/padron")
	t.Setenv("IMPORT_BATCH_SIZE", "250")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 250, cfg.BatchSize)
	require.Equal(t, 100, cfg.ProgressInterval)
	require.EqualValues(t, 60, cfg.BytesPerRow)
	require.Equal(t, "595", cfg.CountryCode)
}

func TestLoadYAMLThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padron.yaml")
	yamlDoc := `
database_url: postgres://file@localhost/padron
port: "9090"
batch_size: 1000
branches:
  "08":
    name: Sucursal Itauguá
    city: Itauguá
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
	t.Setenv("PADRON_CONFIG", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres://file@localhost/padron", cfg.DatabaseURL)
	require.Equal(t, "7070", cfg.Port)
	require.Equal(t, 1000, cfg.BatchSize)

	catalogue := cfg.BranchCatalogue()
	require.Equal(t, "Sucursal Itauguá", catalogue["8"].Name)
	require.Equal(t, "Casa Matriz", catalogue["1"].Name)
	require.Equal(t, 1000, cfg.PipelineConfig().BatchSize)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("PADRON_CONFIG", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("IMPORT_BATCH_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "DatabaseURL"), err.Error())
	require.True(t, strings.Contains(err.Error(), "BatchSize"), err.Error())
}

func TestLoadRejectsMalformedNumber(t *testing.T) {
	t.Setenv("PADRON_CONFIG", "")
	t.Setenv("DATABASE_URL", "postgres://padron@localhost/padron")
	t.Setenv("IMPORT_PROGRESS_INTERVAL", "often")

	_, err := Load()
	require.ErrorContains(t, err, "IMPORT_PROGRESS_INTERVAL")
}

func TestValidateRequiresMongoDatabaseWithURI(t *testing.T) {
	cfg := defaults()
	cfg.DatabaseURL = "postgres://padron@localhost/padron"
	cfg.AuditMongoURI = "mongodb://localhost:27017"
	cfg.AuditMongoDatabase = ""

	require.ErrorContains(t, cfg.Validate(), "AuditMongoDatabase")
}
