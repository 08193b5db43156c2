package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envAliases are extra environment variables accepted for a key on top of
// the automatic OPENGRID_<SECTION>_<KEY> form.
var envAliases = map[string][]string{
	"database.url": {"OPENGRID_DATABASE_URL", "DATABASE_URL"},
	"server.host":  {"OPENGRID_SERVER_HOST", "OPENGRID_HOST"},
	"server.port":  {"OPENGRID_SERVER_PORT", "OPENGRID_PORT"},
}

// NewViper returns a viper instance wired with defaults, the config search
// path and environment overrides. An explicit file wins over the search path.
//
// Load order (later sources override earlier):
//  1. Built-in defaults
//  2. Config file (explicit, or .opengrid/config.yaml, or ~/.opengrid/config.yaml)
//  3. Environment variables (OPENGRID_*)
func NewViper(explicitFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if explicitFile != "" {
		v.SetConfigFile(explicitFile)
	} else {
		v.AddConfigPath(Dir)
		v.AddConfigPath(filepath.Join("$HOME", Dir))
		v.SetConfigType("yaml")
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
	return v
}

// SetDefaults registers every key of Default() so that AutomaticEnv and
// Unmarshal see it even when no config file sets it.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.url", d.Database.URL)
	v.SetDefault("database.sqlite.path", d.Database.SQLite.Path)
	v.SetDefault("database.postgres.host", d.Database.Postgres.Host)
	v.SetDefault("database.postgres.port", d.Database.Postgres.Port)
	v.SetDefault("database.postgres.database", d.Database.Postgres.Database)
	v.SetDefault("database.postgres.user", d.Database.Postgres.User)
	v.SetDefault("database.postgres.password", d.Database.Postgres.Password)
	v.SetDefault("database.postgres.ssl_mode", d.Database.Postgres.SSLMode)
	v.SetDefault("database.postgres.pool_max", d.Database.Postgres.PoolMax)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads the config file (if any) into v and decodes the result.
// A missing file is not an error; a malformed one is.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads defaults, the given file and the environment.
func LoadFile(path string) (*Config, error) {
	return Load(NewViper(path))
}
