package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Переменные окружения, переопределяющие секреты из файла
const (
	EnvDBPassword = "EXAM_DB_PASSWORD"
	EnvJWTSecret  = "EXAM_JWT_SECRET"
)

var (
	// ErrInvalidConfig возвращается при некорректной конфигурации
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Auth          AuthConfig          `toml:"auth"`
	Collaboration CollaborationConfig `toml:"collaboration"`
	Mailer        MailerConfig        `toml:"mailer"`
	NoShow        NoShowConfig        `toml:"noshow"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// AuthConfig настройки проверки bearer-токенов
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// CollaborationConfig удаленный сервис совместных экзаменов
type CollaborationConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// MailerConfig сервис отправки писем
type MailerConfig struct {
	URL          string `toml:"url"`
	Timeout      int    `toml:"timeout"`       // секунды
	DelaySeconds int    `toml:"delay_seconds"` // задержка перед отправкой уведомления
}

// NoShowConfig фоновая отметка неявок
type NoShowConfig struct {
	Enabled        bool   `toml:"enabled"`
	Schedule       string `toml:"schedule"`
	BatchSize      int    `toml:"batch_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// NotifyDelay задержка уведомлений
func (c MailerConfig) NotifyDelay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

// Load загружает конфигурацию из TOML файла, применяет значения по умолчанию,
// переопределения из окружения и проверяет результат
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "exam-booking-service",
		},
		Collaboration: CollaborationConfig{
			Timeout: 10,
		},
		Mailer: MailerConfig{
			Timeout:      10,
			DelaySeconds: 5,
		},
		NoShow: NoShowConfig{
			Enabled:        true,
			Schedule:       "@every 1h",
			BatchSize:      500,
			TimeoutSeconds: 300,
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, "server.http_port must be in 1..65535")
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		problems = append(problems, "database.host, database.dbname and database.user are required")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret is required (or "+EnvJWTSecret+")")
	}
	if c.Collaboration.Enabled && c.Collaboration.URL == "" {
		problems = append(problems, "collaboration.url is required when collaboration is enabled")
	}
	if c.Mailer.URL == "" {
		problems = append(problems, "mailer.url is required")
	}
	if c.NoShow.Enabled && c.NoShow.Schedule == "" {
		problems = append(problems, "noshow.schedule is required when the sweeper is enabled")
	}
	if c.NoShow.BatchSize < 0 {
		problems = append(problems, "noshow.batch_size must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
