// Package config provides configuration management for opengrid.
package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/opengrid/internal/db/driver"
	grid "github.com/randalmurphal/opengrid/internal/errors"
)

const (
	// Dir is the per-workspace configuration directory.
	Dir = ".opengrid"
	// FileName is the configuration file inside Dir.
	FileName = "config.yaml"
	// EnvPrefix prefixes every environment override (OPENGRID_DATABASE_URL, ...).
	EnvPrefix = "OPENGRID"
)

// Config represents the opengrid configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	// Driver is the database type: "sqlite" or "postgres". Ignored when URL is set.
	Driver string `yaml:"driver" mapstructure:"driver"`

	// URL is a full DSN. A postgres:// URL selects PostgreSQL, anything else
	// is treated as a SQLite path.
	URL string `yaml:"url,omitempty" mapstructure:"url"`

	SQLite   SQLiteConfig   `yaml:"sqlite" mapstructure:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
}

// SQLiteConfig defines SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PostgresConfig defines PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Database string `yaml:"database" mapstructure:"database"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password,omitempty" mapstructure:"password"` // Use env OPENGRID_DATABASE_POSTGRES_PASSWORD
	SSLMode  string `yaml:"ssl_mode" mapstructure:"ssl_mode"`
	PoolMax  int    `yaml:"pool_max" mapstructure:"pool_max"`
}

// ServerConfig defines HTTP API settings.
type ServerConfig struct {
	Host        string   `yaml:"host" mapstructure:"host"`
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path: "studio.db",
			},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "opengrid",
				User:     "opengrid",
				SSLMode:  "disable",
				PoolMax:  10,
			},
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Dialect returns the backend the configuration selects.
func (c *Config) Dialect() driver.Dialect {
	if c.Database.URL != "" {
		return driver.DetectDialect(c.Database.URL)
	}
	if d, err := driver.ParseDialect(c.Database.Driver); err == nil {
		return d
	}
	return driver.DialectSQLite
}

// DSN returns the connection string for the selected backend. database.url
// wins when set; otherwise the driver's section is used.
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	if c.Dialect() != driver.DialectPostgres {
		return c.Database.SQLite.Path
	}

	pg := c.Database.Postgres
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(pg.Host, strconv.Itoa(pg.Port)),
		Path:   "/" + pg.Database,
	}
	if pg.User != "" {
		if pg.Password != "" {
			u.User = url.UserPassword(pg.User, pg.Password)
		} else {
			u.User = url.User(pg.User)
		}
	}
	if pg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {pg.SSLMode}}.Encode()
	}
	return u.String()
}

// Validate checks the configuration for values the program cannot use.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		if _, err := driver.ParseDialect(c.Database.Driver); err != nil {
			return grid.ErrConfigInvalid("database.driver", fmt.Sprintf("%q is not sqlite or postgres", c.Database.Driver))
		}
		if c.Dialect() == driver.DialectSQLite && c.Database.SQLite.Path == "" {
			return grid.ErrConfigInvalid("database.sqlite.path", "must not be empty")
		}
	}
	if c.Database.Postgres.PoolMax < 0 {
		return grid.ErrConfigInvalid("database.postgres.pool_max", "must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return grid.ErrConfigInvalid("server.port", fmt.Sprintf("%d is not a valid port", c.Server.Port))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return grid.ErrConfigInvalid("log.level", err.Error())
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return grid.ErrConfigInvalid("log.format", fmt.Sprintf("%q is not text or json", c.Log.Format))
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", l.Level)
	}
	return level, nil
}

// NewLogger builds a slog.Logger writing to w with the configured level and format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	if cp.Database.Postgres.Password != "" {
		cp.Database.Postgres.Password = "********"
	}
	if u, err := url.Parse(cp.Database.URL); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "********")
			cp.Database.URL = u.String()
		}
	}
	return &cp
}

// WriteYAML renders the configuration as YAML with two-space indentation.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return enc.Close()
}

// SaveTo saves the config to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := c.WriteYAML(&buf); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Init writes the default configuration to {root}/.opengrid/config.yaml.
func Init(root string, force bool) (string, error) {
	path := filepath.Join(root, Dir, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("opengrid already initialized at %s (use --force to overwrite)", path)
		}
	}

	if err := Default().SaveTo(path); err != nil {
		return path, err
	}
	return path, nil
}
