package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port        string `yaml:"port"`
	Env         string `yaml:"env"`
	LogLevel    string `yaml:"logLevel"`
	DatabaseURL string `yaml:"databaseURL"`

	JWTSecret       string `yaml:"jwtSecret"`
	SessionTTLHours int    `yaml:"sessionTTLHours"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	PaymentKeyID     string `yaml:"paymentKeyId"`
	PaymentKeySecret string `yaml:"paymentKeySecret"`

	AnonExpiryHours     int      `yaml:"anonExpiryHours"`
	JanitorIntervalMins int      `yaml:"janitorIntervalMins"`
	LoginRateLimit      int      `yaml:"loginRateLimit"`
	AnonymousRateLimit  int      `yaml:"anonymousRateLimit"`
	RateLimitWindowSecs int      `yaml:"rateLimitWindowSecs"`
	CleanupWorkers      int      `yaml:"cleanupWorkers"`
	TrustedProxies      []string `yaml:"trustedProxies"`
	CORSAllowedOrigins  []string `yaml:"corsAllowedOrigins"`
}

// Production reports whether the runtime mode is production. It gates the
// secure cookie flag and debug-only endpoints.
func (c FileConfig) Production() bool {
	return c.Env == "production"
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SessionTTLHours = n
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v == "true" {
		cfg.MinioUseSSL = true
	}
	if v := os.Getenv("PAYMENT_KEY_ID"); v != "" {
		cfg.PaymentKeyID = v
	}
	if v := os.Getenv("PAYMENT_KEY_SECRET"); v != "" {
		cfg.PaymentKeySecret = v
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.SessionTTLHours <= 0 {
		cfg.SessionTTLHours = 7 * 24
	}
	if cfg.AnonExpiryHours <= 0 {
		cfg.AnonExpiryHours = 24
	}
	if cfg.JanitorIntervalMins <= 0 {
		cfg.JanitorIntervalMins = 10
	}
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}
	if cfg.AnonymousRateLimit <= 0 {
		cfg.AnonymousRateLimit = 20
	}
	if cfg.RateLimitWindowSecs <= 0 {
		cfg.RateLimitWindowSecs = 60
	}
	if cfg.CleanupWorkers <= 0 {
		cfg.CleanupWorkers = 2
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if cfg.JWTSecret == "" {
		return errors.New("config: jwtSecret is required (set in config.yaml or JWT_SECRET)")
	}
	if cfg.PaymentKeySecret == "" {
		return errors.New("config: paymentKeySecret is required (set in config.yaml or PAYMENT_KEY_SECRET)")
	}
	if cfg.RedisAddr == "" {
		return errors.New("config: redisAddr is required (set in config.yaml or REDIS_ADDR)")
	}
	return nil
}
