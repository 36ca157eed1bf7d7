package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	app "github.com/mohammadpnp/padron-import/internal/application/member"
	"gopkg.in/yaml.v3"
)

// Config holds the service configuration. Values come from defaults, then the optional
// YAML file named by PADRON_CONFIG, then the environment (a .env file is loaded first).
type Config struct {
	// Server
	Port          string `yaml:"port" validate:"required,numeric"`
	MaxUploadSize string `yaml:"max_upload_size" validate:"required"`
	LogLevel      string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Storage
	DatabaseURL string `yaml:"database_url" validate:"required"`
	StorageDir  string `yaml:"storage_dir" validate:"required"`

	// Import
	BatchSize        int    `yaml:"batch_size" validate:"gte=1,lte=10000"`
	ProgressInterval int    `yaml:"progress_interval" validate:"gte=1"`
	BytesPerRow      int64  `yaml:"bytes_per_row" validate:"gte=1"`
	CountryCode      string `yaml:"country_code" validate:"required,numeric"`

	// Audit
	AuditMongoURI      string `yaml:"audit_mongodb_uri" validate:"omitempty,uri"`
	AuditMongoDatabase string `yaml:"audit_mongodb_database" validate:"required_with=AuditMongoURI"`

	Branches map[string]app.BranchInfo `yaml:"branches"`
}

func defaults() Config {
	return Config{
		Port:               "8080",
		MaxUploadSize:      "50M",
		LogLevel:           "info",
		StorageDir:         "./data/uploads",
		BatchSize:          500,
		ProgressInterval:   100,
		BytesPerRow:        60,
		CountryCode:        "595",
		AuditMongoDatabase: "padron",
	}
}

// Load builds the configuration and validates it.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("PADRON_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Port, "PORT")
	setString(&c.MaxUploadSize, "MAX_UPLOAD_SIZE")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.StorageDir, "IMPORT_STORAGE_DIR")
	setString(&c.CountryCode, "PHONE_COUNTRY_CODE")
	setString(&c.AuditMongoURI, "AUDIT_MONGODB_URI")
	setString(&c.AuditMongoDatabase, "AUDIT_MONGODB_DATABASE")

	var errs []error
	errs = append(errs, setInt(&c.BatchSize, "IMPORT_BATCH_SIZE"))
	errs = append(errs, setInt(&c.ProgressInterval, "IMPORT_PROGRESS_INTERVAL"))
	errs = append(errs, setInt64(&c.BytesPerRow, "IMPORT_BYTES_PER_ROW"))
	return errors.Join(errs...)
}

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
}

// BranchCatalogue layers the configured branches over the built-in ones.
func (c *Config) BranchCatalogue() app.BranchCatalogue {
	return app.DefaultBranchCatalogue().Merge(c.Branches)
}

func (c *Config) PipelineConfig() app.PipelineConfig {
	return app.PipelineConfig{
		BatchSize:        c.BatchSize,
		ProgressInterval: c.ProgressInterval,
		BytesPerRow:      c.BytesPerRow,
		CountryCode:      c.CountryCode,
		Branches:         c.BranchCatalogue(),
	}
}

func setString(dst *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*dst = value
	}
}

func setInt(dst *int, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = value
	return nil
}

func setInt64(dst *int64, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = value
	return nil
}
