package config

import "os"

// Auth schemes the deployment can run under. The scheme decides whether
// approving a user triggers a directory invitation (B2B only).
const (
	AuthSchemeAzureAdB2B = "AzureAdB2B"
	AuthSchemeAzureAdB2C = "AzureAdB2C"
)

// Config carries every runtime setting. It is loaded once in main and
// passed explicitly into constructors; nothing reads the environment
// after startup.
type Config struct {
	Port        string
	DatabaseDSN string
	JWTSecret   []byte
	AuthScheme  string

	RecaptchaEndpoint  string
	RecaptchaServerKey string

	DirectoryEndpoint string
	DirectoryToken    string
	InviteRedirectURL string

	AllowedOrigins []string
}

// UsesB2BAuth reports whether approval side effects (directory
// invitations) are active for this deployment.
func (c Config) UsesB2BAuth() bool {
	return c.AuthScheme == AuthSchemeAzureAdB2B
}

// Load reads the configuration from the environment with development
// defaults for everything except the JWT secret in release mode.
func Load() Config {
	cfg := Config{
		Port:               envOr("PORT", "8080"),
		JWTSecret:          []byte(envOr("JWT_SECRET", "")),
		AuthScheme:         envOr("AUTH_SCHEME", AuthSchemeAzureAdB2C),
		RecaptchaEndpoint:  envOr("RECAPTCHA_ENDPOINT", "https://www.google.com/recaptcha/api/siteverify"),
		RecaptchaServerKey: envOr("RECAPTCHA_SERVER_KEY", ""),
		DirectoryEndpoint:  envOr("DIRECTORY_ENDPOINT", "https://graph.microsoft.com/v1.0"),
		DirectoryToken:     envOr("DIRECTORY_TOKEN", ""),
		InviteRedirectURL:  envOr("INVITE_LANDING_PAGE", ""),
		AllowedOrigins:     []string{envOr("ALLOWED_ORIGIN", "http://localhost:5173")},
	}

	if len(cfg.JWTSecret) == 0 {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		cfg.JWTSecret = []byte("default_super_secret_key") // Development fallback only
	}

	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	user := envOr("DB_USER", "postgres")
	password := envOr("DB_PASSWORD", "postgres")
	name := envOr("DB_NAME", "postgres")
	sslMode := envOr("DB_SSLMODE", "disable")
	cfg.DatabaseDSN = "postgres://" + user + ":" + password + "@" + host + ":" + port + "/" + name + "?sslmode=" + sslMode

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
