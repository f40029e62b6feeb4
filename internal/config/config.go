package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	Feeds struct {
		RefreshInterval time.Duration
		FetchTimeout    time.Duration
		Concurrency     int
	}
	Log struct {
		Level  string
		Format string
	}
	Browse          Browse
	SessionLifetime time.Duration
	SecureCookies   bool
}

// Browse holds settings for the terminal reader.
type Browse struct {
	URL               string
	LocalStore        string
	Timeout           time.Duration
	SidebarBreakpoint int
	LogFile           string
}

// Load reads config from environment (READER_ prefix) and optional joe-reader.yaml.
func Load() (*Config, error) {
	return load(viper.New())
}

// LoadWith is Load with a caller-supplied viper instance, so command flags
// can be bound before the values are read.
func LoadWith(v *viper.Viper) (*Config, error) {
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("READER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("joe-reader")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "joe-reader.db")
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("feeds.refresh_interval", "15m")
	v.SetDefault("feeds.fetch_timeout", "15s")
	v.SetDefault("feeds.concurrency", 4)
	v.SetDefault("secure_cookies", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("browse.url", "http://localhost:8080/")
	v.SetDefault("browse.local_store", defaultLocalStore())
	v.SetDefault("browse.timeout", "10s")
	v.SetDefault("browse.sidebar_breakpoint", 100)

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Feeds.Concurrency = v.GetInt("feeds.concurrency")
	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Format = strings.ToLower(v.GetString("log.format"))
	cfg.SecureCookies = v.GetBool("secure_cookies")
	cfg.Browse.URL = v.GetString("browse.url")
	cfg.Browse.LocalStore = v.GetString("browse.local_store")
	cfg.Browse.SidebarBreakpoint = v.GetInt("browse.sidebar_breakpoint")
	cfg.Browse.LogFile = v.GetString("browse.log_file")

	var err error
	if cfg.SessionLifetime, err = duration(v, "session.lifetime"); err != nil {
		return nil, err
	}
	if cfg.Feeds.RefreshInterval, err = duration(v, "feeds.refresh_interval"); err != nil {
		return nil, err
	}
	if cfg.Feeds.FetchTimeout, err = duration(v, "feeds.fetch_timeout"); err != nil {
		return nil, err
	}
	if cfg.Browse.Timeout, err = duration(v, "browse.timeout"); err != nil {
		return nil, err
	}

	switch cfg.DB.Driver {
	case "sqlite3", "mysql", "postgres":
	case "":
		return nil, fmt.Errorf("READER_DB_DRIVER is required (sqlite3, mysql, postgres)")
	default:
		return nil, fmt.Errorf("READER_DB_DRIVER %q is not one of sqlite3, mysql, postgres", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("READER_DB_DSN is required")
	}
	if cfg.Feeds.Concurrency < 1 {
		return nil, fmt.Errorf("READER_FEEDS_CONCURRENCY must be at least 1, got %d", cfg.Feeds.Concurrency)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("READER_LOG_FORMAT must be text or json, got %q", cfg.Log.Format)
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		env := "READER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		return 0, fmt.Errorf("invalid %s: %w", env, err)
	}
	return d, nil
}

func defaultLocalStore() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "joe-reader-local.db"
	}
	return filepath.Join(dir, "joe-reader", "local.db")
}
