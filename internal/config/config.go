package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	MinIO     MinIOConfig
	Uploads   UploadConfig
	OAuth     OAuthConfig
	Improve   ImproveConfig
	Kafka     KafkaConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	PublicURL    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

type SessionConfig struct {
	CookieName string
	Domain     string
	Secure     bool
	TTL        time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
	// ImproveRPS throttles the AI proxy separately (per author).
	ImproveRPS   float64
	ImproveBurst int
}

type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	PublicBaseURL string
}

type UploadConfig struct {
	MaxBytes   int64
	PresignTTL time.Duration
}

// OAuthProvider is an OIDC-compatible login provider.
type OAuthProvider struct {
	Name         string
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type OAuthConfig struct {
	Providers []OAuthProvider
	// AllowInsecureTokens skips id_token signature checks (integration tests only).
	AllowInsecureTokens bool
}

// Provider returns the named provider.
func (o OAuthConfig) Provider(name string) (OAuthProvider, bool) {
	for _, p := range o.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return OAuthProvider{}, false
}

type ImproveConfig struct {
	URL          string
	APIKey       string
	Model        string
	ResponsePath string
	Timeout      time.Duration
	MaxChars     int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("MONGODB_DATABASE", "newsdesk")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_ISSUER", "newsdesk")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	v.SetDefault("SESSION_COOKIE_NAME", "newsdesk_session")
	v.SetDefault("SESSION_TTL_HOURS", 168)
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("IMPROVE_RPS", 0.2)
	v.SetDefault("IMPROVE_BURST", 3)
	v.SetDefault("MINIO_BUCKET", "newsdesk")
	v.SetDefault("UPLOAD_MAX_BYTES", 5<<20)
	v.SetDefault("UPLOAD_PRESIGN_MINUTES", 60)
	v.SetDefault("IMPROVE_RESPONSE_PATH", "choices.0.message.content")
	v.SetDefault("IMPROVE_TIMEOUT_SECONDS", 30)
	v.SetDefault("IMPROVE_MAX_CHARS", 20000)
	v.SetDefault("KAFKA_TOPIC", "newsdesk.events")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			PublicURL:    strings.TrimRight(v.GetString("PUBLIC_URL"), "/"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			CORSOrigins:  splitList(v.GetString("CORS_ORIGINS")),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:         v.GetString("JWT_SECRET"),
			Issuer:         v.GetString("JWT_ISSUER"),
			AccessTokenTTL: time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
		},
		Session: SessionConfig{
			CookieName: v.GetString("SESSION_COOKIE_NAME"),
			Domain:     v.GetString("SESSION_COOKIE_DOMAIN"),
			Secure:     v.GetBool("SESSION_COOKIE_SECURE"),
			TTL:        time.Duration(v.GetInt("SESSION_TTL_HOURS")) * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			ImproveRPS:    v.GetFloat64("IMPROVE_RPS"),
			ImproveBurst:  v.GetInt("IMPROVE_BURST"),
		},
		MinIO: MinIOConfig{
			Endpoint:      v.GetString("MINIO_ENDPOINT"),
			AccessKey:     v.GetString("MINIO_ACCESS_KEY"),
			SecretKey:     v.GetString("MINIO_SECRET_KEY"),
			UseSSL:        v.GetBool("MINIO_USE_SSL"),
			Bucket:        v.GetString("MINIO_BUCKET"),
			PublicBaseURL: strings.TrimRight(v.GetString("MINIO_PUBLIC_BASE_URL"), "/"),
		},
		Uploads: UploadConfig{
			MaxBytes:   v.GetInt64("UPLOAD_MAX_BYTES"),
			PresignTTL: time.Duration(v.GetInt("UPLOAD_PRESIGN_MINUTES")) * time.Minute,
		},
		OAuth: OAuthConfig{
			Providers:           loadProviders(v),
			AllowInsecureTokens: v.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		Improve: ImproveConfig{
			URL:          v.GetString("IMPROVE_URL"),
			APIKey:       v.GetString("IMPROVE_API_KEY"),
			Model:        v.GetString("IMPROVE_MODEL"),
			ResponsePath: v.GetString("IMPROVE_RESPONSE_PATH"),
			Timeout:      time.Duration(v.GetInt("IMPROVE_TIMEOUT_SECONDS")) * time.Second,
			MaxChars:     v.GetInt("IMPROVE_MAX_CHARS"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
	}

	// Basic validation
	if cfg.JWT.Secret == "" {
		logger.Warnf("JWT_SECRET is not set; set a secure value in production")
	}
	if cfg.MongoDB.URI == "" {
		logger.Warnf("MONGODB_URI is not set; in-memory repositories will be used")
	}

	return cfg, nil
}

// loadProviders reads OAUTH_PROVIDERS=google,github and OAUTH_<NAME>_{ISSUER,CLIENT_ID,CLIENT_SECRET,REDIRECT_URL}.
func loadProviders(v *viper.Viper) []OAuthProvider {
	var out []OAuthProvider
	for _, name := range splitList(v.GetString("OAUTH_PROVIDERS")) {
		prefix := "OAUTH_" + strings.ToUpper(name) + "_"
		p := OAuthProvider{
			Name:         strings.ToLower(name),
			Issuer:       v.GetString(prefix + "ISSUER"),
			ClientID:     v.GetString(prefix + "CLIENT_ID"),
			ClientSecret: v.GetString(prefix + "CLIENT_SECRET"),
			RedirectURL:  v.GetString(prefix + "REDIRECT_URL"),
		}
		if p.Issuer == "" || p.ClientID == "" {
			logger.Warnf("oauth provider %q skipped: issuer and client id are required", name)
			continue
		}
		out = append(out, p)
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
