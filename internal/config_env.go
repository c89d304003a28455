package internal

import (
	"os"
	"strconv"
	"time"
)

// LoadConfigFromEnv builds the config from environment variables. Used for
// container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              envInt("SERVER_PORT", 8080),
			BaseURL:           envString("SERVER_BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    envString("SERVER_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: envDuration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       envDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			IdleTimeout:       envDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      envDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Source:          os.Getenv("DATABASE_SOURCE"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: envDuration("DATABASE_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Security: SecurityConfig{
			JWTSecret: os.Getenv("SECURITY_JWT_SECRET"),
		},
		Mail: MailConfig{
			APIURL:      os.Getenv("MAIL_API_URL"),
			APIKey:      os.Getenv("MAIL_API_KEY"),
			FromAddress: envString("MAIL_FROM_ADDRESS", "no-reply@coparently.app"),
			SendTimeout: envDuration("MAIL_SEND_TIMEOUT", 10*time.Second),
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: envBool("METRICS_ENABLED", true),
				Path:    envString("METRICS_PATH", "/metrics"),
			},
			Logging: LoggingConfig{
				Level:  envString("LOG_LEVEL", "info"),
				Format: envString("LOG_FORMAT", "json"),
			},
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
