package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Payroll  PayrollConfig
	Storage  StorageConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// PayrollConfig holds calculation and payslip layout settings
type PayrollConfig struct {
	RulesFile      string
	BulkWorkers    int
	CompanyName    string
	CompanyAddress string
	FooterNote     string
}

type StorageConfig struct {
	BasePath string
}

// Load reads configuration from the environment, after loading a .env file when
// one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "payslip-engine"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", DatabaseDriverPostgres)),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "payslip"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: maxConns,
		MinConns: minConns,
	}

	// Payroll configuration
	bulkWorkers, err := getEnvInt("PAYROLL_BULK_WORKERS", 0)
	if err != nil {
		return nil, err
	}

	config.Payroll = PayrollConfig{
		RulesFile:      getEnv("PAYROLL_RULES_FILE", ""),
		BulkWorkers:    bulkWorkers,
		CompanyName:    getEnv("PAYROLL_COMPANY_NAME", ""),
		CompanyAddress: getEnv("PAYROLL_COMPANY_ADDRESS", ""),
		FooterNote:     getEnv("PAYROLL_FOOTER_NOTE", "This is a computer generated payslip and does not require a signature."),
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_PATH", "./storage"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535")
	}
	switch c.Database.Driver {
	case DatabaseDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
		if c.Database.MaxConns <= 0 {
			return fmt.Errorf("DB_MAX_CONNS must be greater than 0")
		}
	case DatabaseDriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", DatabaseDriverPostgres, DatabaseDriverMemory)
	}
	if c.Payroll.BulkWorkers < 0 {
		return fmt.Errorf("PAYROLL_BULK_WORKERS must not be negative")
	}
	if c.Payroll.CompanyName == "" {
		return fmt.Errorf("PAYROLL_COMPANY_NAME is required")
	}
	if c.Storage.BasePath == "" {
		return fmt.Errorf("STORAGE_PATH is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
