package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendSurrealDB = "surrealdb"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	Sheets     SheetsConfig
	Submission SubmissionConfig
	Receiver   ReceiverConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	TrustedProxies []string // IPs or CIDRs allowed to set X-Forwarded-For
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// StorageConfig selects where the form state, archive and markers live
type StorageConfig struct {
	Backend string
	Dir     string
}

// SheetsConfig holds the remote spreadsheet receiver settings
type SheetsConfig struct {
	EndpointURL string
	Timeout     time.Duration // zero means no client timeout
}

// SubmissionConfig holds submit flow settings
type SubmissionConfig struct {
	RequireComplete bool
	MaxArchived     int
}

// ReceiverConfig holds the dev sheet receiver settings
type ReceiverConfig struct {
	Port    string
	Backend string
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			TrustedProxies: getSliceEnv("TRUSTED_PROXIES", nil),
		},
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "pulse"),
			Database:  getEnv("DB_DATABASE", "main"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", BackendFile),
			Dir:     getEnv("STORAGE_DIR", "./data"),
		},
		Sheets: SheetsConfig{
			EndpointURL: getEnv("SHEETS_ENDPOINT_URL", ""),
			Timeout:     getDurationEnv("SHEETS_TIMEOUT", 0),
		},
		Submission: SubmissionConfig{
			RequireComplete: getBoolEnv("SUBMIT_REQUIRE_COMPLETE", false),
			MaxArchived:     getIntEnv("ARCHIVE_MAX_SUBMISSIONS", 1000),
		},
		Receiver: ReceiverConfig{
			Port:    getEnv("RECEIVER_PORT", "8090"),
			Backend: getEnv("RECEIVER_BACKEND", BackendMemory),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// UsesDatabase reports whether any backend needs a SurrealDB connection.
func (c *Config) UsesDatabase() bool {
	return c.Storage.Backend == BackendSurrealDB || c.Receiver.Backend == BackendSurrealDB
}

// TrustedProxyPrefixes returns the parsed TRUSTED_PROXIES entries. Entries
// that do not parse are skipped; Validate reports them.
func (c ServerConfig) TrustedProxyPrefixes() []netip.Prefix {
	var out []netip.Prefix
	for _, entry := range c.TrustedProxies {
		if p, err := parsePrefix(entry); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}
	for _, entry := range c.Server.TrustedProxies {
		if _, err := parsePrefix(entry); err != nil {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entry '%s' is not an IP or CIDR", entry))
		}
	}

	// Storage validation
	switch c.Storage.Backend {
	case BackendMemory, BackendSurrealDB:
	case BackendFile:
		if c.Storage.Dir == "" {
			errs = append(errs, errors.New("STORAGE_DIR is required when STORAGE_BACKEND is file"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be 'memory', 'file', or 'surrealdb', got '%s'", c.Storage.Backend))
	}
	if c.Receiver.Backend != BackendMemory && c.Receiver.Backend != BackendSurrealDB {
		errs = append(errs, fmt.Errorf("RECEIVER_BACKEND must be 'memory' or 'surrealdb', got '%s'", c.Receiver.Backend))
	}

	// Database validation, only when a backend needs it
	if c.UsesDatabase() {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required"))
		}
		if c.Database.Port == "" {
			errs = append(errs, errors.New("DB_PORT is required"))
		}
		if c.Database.Namespace == "" {
			errs = append(errs, errors.New("DB_NAMESPACE is required"))
		}
		if c.Database.Database == "" {
			errs = append(errs, errors.New("DB_DATABASE is required"))
		}
	}

	// Sheets validation
	if c.Sheets.Timeout < 0 {
		errs = append(errs, errors.New("SHEETS_TIMEOUT must not be negative"))
	}
	if c.Sheets.EndpointURL != "" &&
		!strings.HasPrefix(c.Sheets.EndpointURL, "https://") && !strings.HasPrefix(c.Sheets.EndpointURL, "http://") {
		errs = append(errs, fmt.Errorf("SHEETS_ENDPOINT_URL must be an http(s) URL, got '%s'", c.Sheets.EndpointURL))
	}

	if c.Submission.MaxArchived <= 0 {
		errs = append(errs, errors.New("ARCHIVE_MAX_SUBMISSIONS must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// parsePrefix accepts a CIDR or a bare address, which covers one host.
func parsePrefix(entry string) (netip.Prefix, error) {
	if strings.Contains(entry, "/") {
		p, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, err
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
