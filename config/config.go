package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Booking  BookingConfig  `yaml:"booking"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

// GRPCConfig holds the address of the gRPC health endpoint. Empty disables it.
type GRPCConfig struct {
	Address string `yaml:"address"`
}

type LogConfig struct {
	Env   string `yaml:"env"`
	Debug bool   `yaml:"debug"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	OrderTopic         string   `yaml:"order_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	AccessTTLMinutes  int    `yaml:"access_ttl_minutes"`
	BcryptCost        int    `yaml:"bcrypt_cost"`
	BootstrapName     string `yaml:"bootstrap_name"`
	BootstrapEmail    string `yaml:"bootstrap_email"`
	BootstrapPassword string `yaml:"bootstrap_password"`
}

// SMTPConfig configures outgoing mail. An empty Host makes the worker log
// notifications instead of sending them.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type BookingConfig struct {
	HoldTTLMinutes  int `yaml:"hold_ttl_minutes"`
	ConfirmationTTL int `yaml:"confirmation_ttl_minutes"`
}

type CatalogConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int    `yaml:"expiration_sweep_minutes"`
	StatusSweepAt          string `yaml:"status_sweep_at"`
	Timezone               string `yaml:"timezone"`
}

// LoadConfig reads .env (if present), then the YAML file at path, then lets
// secrets from the environment override the file.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret (or JWT_SECRET) is required")
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrideString(&c.Auth.JWTSecret, "JWT_SECRET")
	overrideString(&c.Auth.BootstrapPassword, "ADMIN_PASSWORD")
	overrideString(&c.Database.Password, "DB_PASSWORD")
	overrideString(&c.Redis.Password, "REDIS_PASSWORD")
	overrideString(&c.SMTP.Password, "SMTP_PASSWORD")
	if v := os.Getenv("DB_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Database.Port = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Auth.AccessTTLMinutes <= 0 {
		c.Auth.AccessTTLMinutes = 60
	}
	if c.Auth.BcryptCost <= 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Booking.HoldTTLMinutes <= 0 {
		c.Booking.HoldTTLMinutes = 10
	}
	if c.Booking.ConfirmationTTL <= 0 {
		c.Booking.ConfirmationTTL = c.Booking.HoldTTLMinutes
	}
	if c.Catalog.CacheTTLSeconds <= 0 {
		c.Catalog.CacheTTLSeconds = 60
	}
	if c.Worker.ExpirationSweepMinutes <= 0 {
		c.Worker.ExpirationSweepMinutes = 1
	}
	if c.Worker.StatusSweepAt == "" {
		c.Worker.StatusSweepAt = "00:05"
	}
	if c.Worker.Timezone == "" {
		c.Worker.Timezone = "UTC"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "cinemabooking-worker"
	}
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
