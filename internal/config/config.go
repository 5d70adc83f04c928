package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds everything the server needs to run. Values are layered:
// defaults, then an optional YAML file, then MEMODECK_* environment
// variables, then command-line flags.
type Config struct {
	Addr         string        `koanf:"addr" validate:"required"`
	DSN          string        `koanf:"dsn" validate:"required"`
	JWTSecret    string        `koanf:"jwt_secret" validate:"required,min=16"`
	ReposDir     string        `koanf:"repos_dir" validate:"required"`
	SyncInterval time.Duration `koanf:"sync_interval" validate:"min=1m"`
	SettingsTTL  time.Duration `koanf:"settings_ttl" validate:"min=1s"`
}

const envPrefix = "MEMODECK_"

// Flags defines the command-line flags config understands. The flag set
// is registered separately so main can add its own flags before parsing.
func Flags() *pflag.FlagSet {
	f := pflag.NewFlagSet("memodeck", pflag.ContinueOnError)
	f.String("config", "", "path to a YAML config file")
	f.String("addr", ":8080", "address for the HTTP server to listen on")
	f.String("dsn", "memodeck.db", "path to the SQLite database file")
	f.String("jwt-secret", "", "secret for signing and verifying bearer tokens")
	f.String("repos-dir", "repos", "directory for card source checkouts")
	f.Duration("sync-interval", time.Hour, "how often deck sources are re-synced")
	f.Duration("settings-ttl", 5*time.Minute, "how long user settings are cached")
	return f
}

// Load layers all configuration sources and validates the result.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path, _ := f.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	// Flags win; posflag only overrides with flags that were actually set
	// or have defaults not already present.
	if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(pf *pflag.Flag) (string, interface{}) {
		key := strings.ReplaceAll(pf.Name, "-", "_")
		if key == "config" {
			return "", nil
		}
		return key, posflag.FlagVal(f, pf)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
