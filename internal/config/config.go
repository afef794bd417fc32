package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type DataScope string

const (
	DataScopeProduction DataScope = "production"
	DataScopeStaging    DataScope = "staging"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
	AdminKey     string
}

type LogConfig struct {
	Level string
	File  string
}

type TargetsConfig struct {
	UndoTTL time.Duration
}

type Config struct {
	Environment string
	DataScope   DataScope
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Log         LogConfig
	Targets     TargetsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		DataScope:   DataScope(strings.ToLower(strings.TrimSpace(v.GetString("DATA_SCOPE")))),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			AdminKey:     v.GetString("ADMIN_ACCESS_KEY"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
		Targets: TargetsConfig{
			UndoTTL: v.GetDuration("TARGET_UNDO_TTL"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.DataScope == "" {
		cfg.DataScope = DataScopeProduction
	}
	if cfg.Targets.UndoTTL <= 0 {
		cfg.Targets.UndoTTL = 24 * time.Hour
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Auth.AdminKey == "" {
		return fmt.Errorf("ADMIN_ACCESS_KEY is required")
	}
	switch cfg.DataScope {
	case DataScopeProduction, DataScopeStaging:
	default:
		return fmt.Errorf("DATA_SCOPE must be %q or %q, got %q", DataScopeProduction, DataScopeStaging, cfg.DataScope)
	}
	return nil
}
