package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	LogMode string

	DBURL string

	Gemini GeminiConfig
	R2     R2Config
	Server ServerConfig

	RabbitMQURL string
	JWTSecret   string
	// AllowedEmails whitelists users when no database is configured.
	// Entries are "email" or "email=role".
	AllowedEmails []string

	SchemaDir            string
	FormatCacheSize      int
	FormSessionCacheSize int
}

type GeminiConfig struct {
	APIKey        string
	Model         string
	IncludeResume bool
}

type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether every R2 credential is present.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_MODE", "dev")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", 10*time.Second)
	// analysis responses stream for a while
	v.SetDefault("SERVER_WRITE_TIMEOUT", 2*time.Minute)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000")
	v.SetDefault("FORMAT_CACHE_SIZE", 256)
	v.SetDefault("FORM_SESSION_CACHE_SIZE", 1024)
	v.SetDefault("ANALYZE_INCLUDE_RESUME", false)
}

// Load reads configuration from the environment. A .env file, if any, must
// already have been loaded by the caller.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	apiKey := v.GetString("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = v.GetString("GEMINI_API_KEY")
	}

	cfg := &Config{
		LogMode: v.GetString("LOG_MODE"),
		DBURL:   v.GetString("DB_URL"),
		Gemini: GeminiConfig{
			APIKey:        apiKey,
			Model:         v.GetString("GEMINI_MODEL"),
			IncludeResume: v.GetBool("ANALYZE_INCLUDE_RESUME"),
		},
		R2: R2Config{
			AccountID: v.GetString("R2_ACCOUNT_ID"),
			Bucket:    v.GetString("R2_BUCKET"),
			AccessKey: v.GetString("R2_ACCESS_KEY"),
			SecretKey: v.GetString("R2_SECRET_KEY"),
		},
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		},
		RabbitMQURL:          v.GetString("RABBITMQ_URL"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		AllowedEmails:        splitList(v.GetString("ALLOWED_EMAILS")),
		SchemaDir:            v.GetString("SCHEMA_DIR"),
		FormatCacheSize:      v.GetInt("FORMAT_CACHE_SIZE"),
		FormSessionCacheSize: v.GetInt("FORM_SESSION_CACHE_SIZE"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.FormatCacheSize <= 0 {
		return fmt.Errorf("FORMAT_CACHE_SIZE must be positive")
	}
	if c.FormSessionCacheSize <= 0 {
		return fmt.Errorf("FORM_SESSION_CACHE_SIZE must be positive")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	return nil
}

// Whitelist maps the ALLOWED_EMAILS entries to their roles.
func (c *Config) Whitelist() map[string]string {
	out := make(map[string]string, len(c.AllowedEmails))
	for _, entry := range c.AllowedEmails {
		email, role, _ := strings.Cut(entry, "=")
		out[strings.ToLower(strings.TrimSpace(email))] = strings.TrimSpace(role)
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
