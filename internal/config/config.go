package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yigit/photoalbum/internal/pkg/helpers"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port      string `yaml:"port" env:"SERVER_PORT"`
		Mode      string `yaml:"mode" env:"SERVER_MODE"`
		UploadDir string `yaml:"upload_dir" env:"SERVER_UPLOAD_DIR"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Media struct {
		Root          string `yaml:"root" env:"MEDIA_ROOT"`
		PhotosDir     string `yaml:"photos_dir" env:"MEDIA_PHOTOS_DIR"`
		MaxPhotoBytes int64  `yaml:"max_photo_bytes" env:"MEDIA_MAX_PHOTO_BYTES"`
	} `yaml:"media"`

	Import struct {
		Encoding         string `yaml:"encoding" env:"IMPORT_ENCODING"`
		DefaultBatch     string `yaml:"default_batch" env:"IMPORT_DEFAULT_BATCH"`
		StateBatchSize   int    `yaml:"state_batch_size" env:"IMPORT_STATE_BATCH_SIZE"`
		SchoolBatchSize  int    `yaml:"school_batch_size" env:"IMPORT_SCHOOL_BATCH_SIZE"`
		StudentBatchSize int    `yaml:"student_batch_size" env:"IMPORT_STUDENT_BATCH_SIZE"`
		MaxBindParams    int    `yaml:"max_bind_params" env:"IMPORT_MAX_BIND_PARAMS"`
		ReportLimit      int    `yaml:"report_limit" env:"IMPORT_REPORT_LIMIT"`
	} `yaml:"import"`

	Scan struct {
		BatchSize          int    `yaml:"batch_size" env:"SCAN_BATCH_SIZE"`
		JobTTL             string `yaml:"job_ttl" env:"SCAN_JOB_TTL"`
		MaxReportedMissing int    `yaml:"max_reported_missing" env:"SCAN_MAX_REPORTED_MISSING"`
	} `yaml:"scan"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.UploadDir = os.TempDir()

	config.Database.Driver = "postgres"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "album_db"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Media.Root = "./media"
	config.Media.PhotosDir = "photos"
	config.Media.MaxPhotoBytes = 10 << 20

	config.Import.Encoding = "latin1"
	config.Import.DefaultBatch = "2025"
	config.Import.StateBatchSize = 1000
	config.Import.SchoolBatchSize = 1000
	config.Import.StudentBatchSize = 1000
	config.Import.MaxBindParams = 65535
	config.Import.ReportLimit = 10

	config.Scan.BatchSize = 5000
	config.Scan.JobTTL = "24h"
	config.Scan.MaxReportedMissing = 1000
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database conn_max_lifetime: %w", err)
	}

	if config.Media.Root == "" {
		return fmt.Errorf("media root is required")
	}

	if config.Media.MaxPhotoBytes <= 0 {
		return fmt.Errorf("media max_photo_bytes must be positive")
	}

	if config.Import.MaxBindParams <= 0 {
		return fmt.Errorf("import max_bind_params must be positive")
	}

	if config.Import.SchoolBatchSize <= 0 || config.Import.StudentBatchSize <= 0 || config.Import.StateBatchSize <= 0 {
		return fmt.Errorf("import batch sizes must be positive")
	}

	if config.Scan.BatchSize <= 0 {
		return fmt.Errorf("scan batch_size must be positive")
	}

	if _, err := time.ParseDuration(config.Scan.JobTTL); err != nil {
		return fmt.Errorf("invalid scan job_ttl: %w", err)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// PhotosPath resolves the photo directory against the media root.
func (c *Config) PhotosPath() string {
	if filepath.IsAbs(c.Media.PhotosDir) {
		return c.Media.PhotosDir
	}
	return filepath.Join(c.Media.Root, c.Media.PhotosDir)
}

// ScanJobTTL returns the parsed retention for finished scan jobs.
func (c *Config) ScanJobTTL() time.Duration {
	return helpers.ParseDuration(c.Scan.JobTTL, 24*time.Hour)
}
