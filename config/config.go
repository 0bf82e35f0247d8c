package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port         string        `envconfig:"PORT" default:"8080"`
	Env          string        `envconfig:"ENV" default:"development"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`

	// Database
	MySQLDSN        string        `envconfig:"MYSQL_DSN" default:"roost:roost@tcp(localhost:3306)/roost?charset=utf8mb4&parseTime=True&loc=Local"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`

	// JWT
	JWTSecret    string        `envconfig:"JWT_SECRET" default:"change-me-in-production"`
	JWTExpiry    time.Duration `envconfig:"JWT_EXPIRY" default:"15m"`
	JWTIssuer    string        `envconfig:"JWT_ISSUER" default:"roost"`

	// Payment gateway
	GatewayBaseURL string        `envconfig:"GATEWAY_BASE_URL" default:""`
	GatewayAPIKey  string        `envconfig:"GATEWAY_API_KEY" default:""`
	GatewaySecret  string        `envconfig:"GATEWAY_SECRET" default:""`
	GatewayTimeout time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"15s"`
	CallbackBase   string        `envconfig:"CALLBACK_BASE_URL" default:""`

	// Cron / background work
	CronSecret string `envconfig:"CRON_SECRET" default:""`
	RedisAddr  string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	Currency string `envconfig:"CURRENCY" default:"USD"`
}

func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("ROOST", &c); err != nil {
		return nil, err
	}
	return &c, nil
}
