package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // sqlite / postgres
	Path    string `mapstructure:"path"`   // sqlite 文件路径
	DSN     string `mapstructure:"dsn"`    // postgres 连接串
	LogMode bool   `mapstructure:"log_mode"`
}

// StoreConfig selects where sessions, leave days and shares live.
// "database" uses the gorm database; "memory" and "file" use memstore.
type StoreConfig struct {
	Backend  string `mapstructure:"backend"`
	FilePath string `mapstructure:"file_path"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// TimerConfig holds the study windows (hours, [start, end)) and the time zone
// used for both the window check and the date key.
type TimerConfig struct {
	Timezone       string `mapstructure:"timezone"`
	MorningStart   int    `mapstructure:"morning_start"`
	MorningEnd     int    `mapstructure:"morning_end"`
	AfternoonStart int    `mapstructure:"afternoon_start"`
	AfternoonEnd   int    `mapstructure:"afternoon_end"`
	TickSeconds    int    `mapstructure:"tick_seconds"`
}

type ShareConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type AppSubConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Timer    TimerConfig    `mapstructure:"timer"`
	Share    ShareConfig    `mapstructure:"share"`
	App      AppSubConfig   `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		appConfig, err = Read(path)
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Read parses the configuration without touching the global instance.
// A missing file is fine when path is empty: defaults and env still apply.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. STUDY_SERVER_PORT=9000
	v.SetEnvPrefix("STUDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/study.db")
	v.SetDefault("store.backend", "database")
	v.SetDefault("store.file_path", "data/study-store.json")
	v.SetDefault("jwt.issuer", "study-tracker")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("log.level", "info")
	v.SetDefault("timer.timezone", "Local")
	v.SetDefault("timer.morning_start", 8)
	v.SetDefault("timer.morning_end", 12)
	v.SetDefault("timer.afternoon_start", 13)
	v.SetDefault("timer.afternoon_end", 19)
	v.SetDefault("timer.tick_seconds", 1)
	v.SetDefault("app.page_size", 20)
}

// Validate checks values that would otherwise fail deep inside the server.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("config: database.dsn is required for postgres")
	}
	switch c.Store.Backend {
	case "database", "memory", "file":
	default:
		return fmt.Errorf("config: unsupported store.backend %q", c.Store.Backend)
	}
	t := c.Timer
	if !validWindow(t.MorningStart, t.MorningEnd) || !validWindow(t.AfternoonStart, t.AfternoonEnd) {
		return fmt.Errorf("config: timer windows must satisfy 0 <= start < end <= 24")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// RequireSecrets checks the keys the server cannot run without. Other
// commands (migrate, report) do not need them.
func (c *Config) RequireSecrets() error {
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret must be set")
	}
	if c.Security.EncryptionKey == "" {
		return errors.New("config: security.encryption_key must be set")
	}
	return nil
}

// Location resolves timer.timezone ("Local" or an IANA name).
func (c *Config) Location() (*time.Location, error) {
	if c.Timer.Timezone == "" || c.Timer.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timer.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timer.timezone: %w", err)
	}
	return loc, nil
}

// TickInterval is the live elapsed refresh cadence.
func (c *Config) TickInterval() time.Duration {
	if c.Timer.TickSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.Timer.TickSeconds) * time.Second
}

func validWindow(start, end int) bool {
	return start >= 0 && start < end && end <= 24
}
