package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database drivers understood by DATABASE_DRIVER.
const (
	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
)

// Mail drivers understood by MAIL_DRIVER.
const (
	MailDriverLog      = "log"
	MailDriverMailgun  = "mailgun"
	MailDriverRabbitMQ = "rabbitmq"
)

// Config holds application configuration.
type Config struct {
	AppName       string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Storage
	DatabaseDriver string
	MongoURI       string
	MongoDatabase  string
	DatabaseURL    string
	MigrationsPath string

	// Session tokens
	JWTSecret              string
	JWTExpiryDuration      time.Duration
	JWTIssuer              string
	ResetTokenExpiry       time.Duration
	TokenCookieName        string
	OAuthSessionCookieName string
	OAuthSessionDuration   time.Duration
	CookieDomain           string

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	FrontendBaseURL    string `mapstructure:"FRONTEND_BASE_URL"`
	ResetPasswordURL   string `mapstructure:"RESET_PASSWORD_URL"`

	// Redis backs token revocation and the rate limiter when set.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	LoginRateLimit string

	// Mail
	MailDriver         string
	MailgunDomain      string
	MailgunAPIKey      string
	MailgunSender      string
	RabbitMQURL        string
	RabbitMQEmailQueue string

	// Search
	ElasticsearchAddrs       []string
	ElasticsearchUsername    string
	ElasticsearchPassword    string
	ElasticsearchIndexPrefix string

	// Uploads
	GCSBucket          string
	GCSCredentialsFile string

	PosthogAPIKey      string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("APP_NAME", "inkpress")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("DATABASE_DRIVER", DriverMongo)
	viper.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGODB_DATABASE", "inkpress")
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "inkpress")
	viper.SetDefault("RESET_TOKEN_EXPIRY_DURATION", "15m")
	viper.SetDefault("TOKEN_COOKIE_NAME", "token")
	viper.SetDefault("OAUTH_SESSION_COOKIE_NAME", "session_token")
	viper.SetDefault("OAUTH_SESSION_DURATION", "720h")
	viper.SetDefault("COOKIE_DOMAIN", "")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:8080")
	viper.SetDefault("RESET_PASSWORD_URL", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("MAIL_DRIVER", MailDriverLog)
	viper.SetDefault("RABBITMQ_EMAIL_QUEUE", "inkpress.emails")
	viper.SetDefault("ELASTICSEARCH_INDEX_PREFIX", "inkpress")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{
		AppName:                  viper.GetString("APP_NAME"),
		Port:                     viper.GetString("PORT"),
		IsProduction:             viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:            viper.GetBool("ENABLE_DB_CHECK"),
		DatabaseDriver:           strings.ToLower(viper.GetString("DATABASE_DRIVER")),
		MongoURI:                 viper.GetString("MONGODB_URI"),
		MongoDatabase:            viper.GetString("MONGODB_DATABASE"),
		DatabaseURL:              viper.GetString("PGSQL_URL"),
		MigrationsPath:           viper.GetString("MIGRATIONS_PATH"),
		JWTSecret:                viper.GetString("JWT_SECRET"),
		JWTIssuer:                viper.GetString("JWT_ISSUER"),
		TokenCookieName:          viper.GetString("TOKEN_COOKIE_NAME"),
		OAuthSessionCookieName:   viper.GetString("OAUTH_SESSION_COOKIE_NAME"),
		CookieDomain:             viper.GetString("COOKIE_DOMAIN"),
		GoogleClientID:           viper.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:       viper.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:        viper.GetString("GOOGLE_REDIRECT_URL"),
		FrontendBaseURL:          strings.TrimRight(viper.GetString("FRONTEND_BASE_URL"), "/"),
		ResetPasswordURL:         viper.GetString("RESET_PASSWORD_URL"),
		RedisAddr:                viper.GetString("REDIS_ADDR"),
		RedisPassword:            viper.GetString("REDIS_PASSWORD"),
		RedisDB:                  viper.GetInt("REDIS_DB"),
		LoginRateLimit:           viper.GetString("LOGIN_RATE_LIMIT"),
		MailDriver:               strings.ToLower(viper.GetString("MAIL_DRIVER")),
		MailgunDomain:            viper.GetString("MAILGUN_DOMAIN"),
		MailgunAPIKey:            viper.GetString("MAILGUN_API_KEY"),
		MailgunSender:            viper.GetString("MAILGUN_SENDER"),
		RabbitMQURL:              viper.GetString("RABBITMQ_URL"),
		RabbitMQEmailQueue:       viper.GetString("RABBITMQ_EMAIL_QUEUE"),
		ElasticsearchAddrs:       splitList(viper.GetString("ELASTICSEARCH_ADDRS")),
		ElasticsearchUsername:    viper.GetString("ELASTICSEARCH_USERNAME"),
		ElasticsearchPassword:    viper.GetString("ELASTICSEARCH_PASSWORD"),
		ElasticsearchIndexPrefix: viper.GetString("ELASTICSEARCH_INDEX_PREFIX"),
		GCSBucket:                viper.GetString("GCS_BUCKET"),
		GCSCredentialsFile:       viper.GetString("GCS_CREDENTIALS_FILE"),
		PosthogAPIKey:            viper.GetString("POSTHOG_API_KEY"),
		CORSAllowedOrigins:       splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)
	cfg.ResetTokenExpiry = durationOrDefault("RESET_TOKEN_EXPIRY_DURATION", 15*time.Minute)
	cfg.OAuthSessionDuration = durationOrDefault("OAUTH_SESSION_DURATION", 30*24*time.Hour)

	if cfg.ResetPasswordURL == "" {
		cfg.ResetPasswordURL = cfg.FrontendBaseURL + "/reset-password"
	}

	switch cfg.DatabaseDriver {
	case DriverMongo:
		if cfg.MongoURI == "" {
			log.Println("Warning: MONGODB_URI environment variable not set.")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	default:
		log.Printf("Warning: unknown DATABASE_DRIVER ('%s'). Defaulting to %s.\n", cfg.DatabaseDriver, DriverMongo)
		cfg.DatabaseDriver = DriverMongo
	}

	// Log warnings for missing critical OAuth ENV variables
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		log.Println("Warning: Google OAuth is not fully configured (GOOGLE_CLIENT_ID/SECRET/REDIRECT_URL). Google login will not function.")
	}

	return cfg, nil
}

// GoogleOAuthEnabled reports whether every Google OAuth setting is present.
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
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
