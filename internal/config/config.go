package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ThanimaVITC/thanima-connect/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	MongoDB   MongoDBConfig
	Storage   storage.Config
	Upload    UploadConfig
	Admin     AdminConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Environment    string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type MongoDBConfig struct {
	URI             string
	Database        string
	Collection      string
	Timeout         time.Duration
	ConnectAttempts int
	// UniqueRegNo rejects a second application with the same regNo.
	UniqueRegNo bool
}

type UploadConfig struct {
	MaxBytes     int64
	AllowedTypes []string
}

type AdminConfig struct {
	Password      string
	SessionSecret string
	SessionTTL    time.Duration
	CookieName    string
	CookieSecure  bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Production reports whether the server runs with production settings.
func (c *Config) Production() bool {
	return c.Server.Environment == "production"
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_REQUEST_TIMEOUT", 30)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("MONGODB_DATABASE", "thanima")
	v.SetDefault("MONGODB_COLLECTION", "submissions")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("MONGODB_CONNECT_ATTEMPTS", 5)
	v.SetDefault("MONGODB_UNIQUE_REG_NO", false)
	v.SetDefault("STORAGE_BACKEND", storage.BackendGridFS)
	v.SetDefault("GRIDFS_BUCKET", "resumes")
	v.SetDefault("MINIO_BUCKET", "resumes")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("ADMIN_SESSION_TTL", 1440)
	v.SetDefault("ADMIN_COOKIE_NAME", "admin-auth")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 1)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			Environment:    strings.ToLower(v.GetString("SERVER_ENVIRONMENT")),
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   2 * time.Minute,
			RequestTimeout: time.Duration(v.GetInt("SERVER_REQUEST_TIMEOUT")) * time.Second,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		MongoDB: MongoDBConfig{
			URI:             v.GetString("MONGODB_URI"),
			Database:        v.GetString("MONGODB_DATABASE"),
			Collection:      v.GetString("MONGODB_COLLECTION"),
			Timeout:         time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
			ConnectAttempts: v.GetInt("MONGODB_CONNECT_ATTEMPTS"),
			UniqueRegNo:     v.GetBool("MONGODB_UNIQUE_REG_NO"),
		},
		Storage: storage.Config{
			Backend:      strings.ToLower(v.GetString("STORAGE_BACKEND")),
			GridFSBucket: v.GetString("GRIDFS_BUCKET"),
			MinIO: storage.MinIOConfig{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: os.Getenv("MINIO_SECRET_KEY"),
				UseSSL:    v.GetBool("MINIO_USE_SSL"),
				Bucket:    v.GetString("MINIO_BUCKET"),
			},
		},
		Upload: UploadConfig{
			MaxBytes:     v.GetInt64("UPLOAD_MAX_BYTES"),
			AllowedTypes: splitList(v.GetString("UPLOAD_ALLOWED_TYPES")),
		},
		Admin: AdminConfig{
			Password:      os.Getenv("ADMIN_PASSWORD"),
			SessionSecret: os.Getenv("ADMIN_SESSION_SECRET"),
			SessionTTL:    time.Duration(v.GetInt("ADMIN_SESSION_TTL")) * time.Minute,
			CookieName:    v.GetString("ADMIN_COOKIE_NAME"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	cfg.Admin.CookieSecure = cfg.Production()
	if v.GetString("ADMIN_COOKIE_SECURE") != "" {
		cfg.Admin.CookieSecure = v.GetBool("ADMIN_COOKIE_SECURE")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case storage.BackendGridFS, storage.BackendMinIO, storage.BackendMemory, storage.BackendNone:
	default:
		return fmt.Errorf("STORAGE_BACKEND %q is not one of gridfs, minio, memory, none", c.Storage.Backend)
	}
	if c.MongoDB.URI == "" {
		inMemory := c.Storage.Backend == storage.BackendMemory || c.Storage.Backend == storage.BackendNone
		if c.Production() || !inMemory {
			return fmt.Errorf("environment variable MONGODB_URI is required")
		}
	}
	if c.Storage.Backend == storage.BackendMinIO && c.Storage.MinIO.Endpoint == "" {
		return fmt.Errorf("STORAGE_BACKEND=minio needs MINIO_ENDPOINT")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("SERVER_REQUEST_TIMEOUT must be positive")
	}
	if c.Production() && c.Admin.SessionSecret == "" {
		return fmt.Errorf("environment variable ADMIN_SESSION_SECRET is required in production")
	}
	return nil
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
