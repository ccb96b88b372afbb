package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// LedgerConfig is the engine configuration handed to service constructors.
type LedgerConfig struct {
	MaxUploadBytes   int64
	AllowedMimeTypes []string // empty means any type is accepted
}

// MimeTypeAllowed reports whether uploads of mimeType are accepted.
func (c LedgerConfig) MimeTypeAllowed(mimeType string) bool {
	if len(c.AllowedMimeTypes) == 0 {
		return true
	}
	for _, allowed := range c.AllowedMimeTypes {
		if strings.EqualFold(allowed, mimeType) {
			return true
		}
	}
	return false
}

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	StorageBackend string
	MigrationsPath string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	JWTSecret      string
	JWTIssuer      string

	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	CommitEventsChannel string

	RateLimit          string // ulule limiter format, e.g. "100-M"
	CORSAllowedOrigins []string

	Ledger LedgerConfig
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("STORAGE_BACKEND", StoragePostgres)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "shared-ledger-app")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("COMMIT_EVENTS_CHANNEL", "ledger.commits")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	viper.SetDefault("ALLOWED_MIME_TYPES", "")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:         viper.GetString("PGSQL_URL"),
		StorageBackend:      strings.ToLower(viper.GetString("STORAGE_BACKEND")),
		MigrationsPath:      viper.GetString("MIGRATIONS_PATH"),
		Port:                viper.GetString("PORT"),
		IsProduction:        viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:       viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:           viper.GetString("JWT_SECRET"),
		JWTIssuer:           viper.GetString("JWT_ISSUER"),
		RedisAddr:           viper.GetString("REDIS_ADDR"),
		RedisPassword:       viper.GetString("REDIS_PASSWORD"),
		RedisDB:             viper.GetInt("REDIS_DB"),
		CommitEventsChannel: viper.GetString("COMMIT_EVENTS_CHANNEL"),
		RateLimit:           viper.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:  splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		Ledger: LedgerConfig{
			MaxUploadBytes:   viper.GetInt64("MAX_UPLOAD_BYTES"),
			AllowedMimeTypes: splitList(viper.GetString("ALLOWED_MIME_TYPES")),
		},
	}

	if cfg.StorageBackend == StoragePostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.StorageBackend != StoragePostgres && cfg.StorageBackend != StorageMemory {
		log.Printf("Warning: unknown STORAGE_BACKEND %q. Defaulting to %s.\n", cfg.StorageBackend, StoragePostgres)
		cfg.StorageBackend = StoragePostgres
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.Ledger.MaxUploadBytes <= 0 {
		cfg.Ledger.MaxUploadBytes = 10 << 20
		log.Printf("Warning: invalid MAX_UPLOAD_BYTES. Defaulting to %d.\n", cfg.Ledger.MaxUploadBytes)
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
