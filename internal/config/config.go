package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	errMissingJWTSigningKey   = errors.New("auth.jwt_signing_key is required")
	errMissingAdminLinkSecret = errors.New("auth.admin_link_secret is required")
	errInvalidInitialState    = errors.New("events.initial_state must be draft or active")
	errInvalidDriver          = errors.New("database.driver must be postgres or sqlite")
	errMissingCORSDomains     = errors.New("api.allowed_cors_domains needs at least one origin")
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Log      *LogConfig      `mapstructure:"log"`
	Auth     *AuthConfig     `mapstructure:"auth"`
	Database *DatabaseConfig `mapstructure:"database"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Events   *EventsConfig   `mapstructure:"events"`
	Sim      *SimConfig      `mapstructure:"sim"`
	Kafka    *KafkaConfig    `mapstructure:"kafka"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type AuthConfig struct {
	JWTSigningKey       string   `mapstructure:"jwt_signing_key"`
	AdminLinkSecret     string   `mapstructure:"admin_link_secret"`
	AdminEmailAllowlist []string `mapstructure:"admin_email_allowlist"`
	LegacyHeaderMode    bool     `mapstructure:"legacy_header_mode"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type PostgresConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"db_name"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN formats the connection string understood by the pgx driver.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type EventsConfig struct {
	InitialState           string `mapstructure:"initial_state"`
	DefaultDurationMinutes int    `mapstructure:"default_duration_minutes"`
}

type SimConfig struct {
	AdminPath string `mapstructure:"admin_path"`
}

type KafkaConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Brokers []string      `mapstructure:"brokers"`
	Topic   string        `mapstructure:"topic"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "")
	v.SetDefault("auth.jwt_signing_key", "")
	v.SetDefault("auth.admin_link_secret", "")
	v.SetDefault("auth.admin_email_allowlist", []string{})
	v.SetDefault("auth.legacy_header_mode", false)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.sqlite_path", "arena.db")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.db_name", "arena")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("events.initial_state", "active")
	v.SetDefault("events.default_duration_minutes", 60)
	v.SetDefault("sim.admin_path", "/admin.html")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "event.ended")
	v.SetDefault("kafka.timeout", "5s")

	return v
}

// Load reads the YAML file at path, applies APP_* environment overrides and validates the result.
// A missing file is not an error: defaults and environment are enough to boot.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
		}
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}

	if err = conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var conf AppConfig
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	// Env overrides arrive as a single comma separated string.
	conf.Auth.AdminEmailAllowlist = splitList(conf.Auth.AdminEmailAllowlist)
	conf.API.AllowedCORSDomains = splitList(conf.API.AllowedCORSDomains)
	conf.Kafka.Brokers = splitList(conf.Kafka.Brokers)

	return &conf, nil
}

func (c *AppConfig) Validate() error {
	if len(c.API.AllowedCORSDomains) == 0 {
		return errMissingCORSDomains
	}
	if c.Auth.JWTSigningKey == "" {
		return errMissingJWTSigningKey
	}
	if c.Auth.AdminLinkSecret == "" {
		return errMissingAdminLinkSecret
	}
	switch c.Events.InitialState {
	case "draft", "active":
	default:
		return errInvalidInitialState
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errInvalidDriver
	}

	return nil
}

// Watch reloads the file at path whenever it changes and hands the new log level to onLevel.
// Everything else in AppConfig is read once at startup and never mutated.
func Watch(path string, onLevel func(level string)) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onLevel(v.GetString("log.level"))
	})
	v.WatchConfig()
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}
