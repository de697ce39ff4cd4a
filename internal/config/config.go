// Package config loads autoimport settings from defaults, an optional config
// file, AUTOIMPORT_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. AUTOIMPORT_DRY_RUN.
const EnvPrefix = "AUTOIMPORT"

// FileName is the base name searched for in the working directory.
const FileName = ".autoimport"

// CatalogEntry is one catalog line as written in a config file.
type CatalogEntry struct {
	Name      string `mapstructure:"name"`
	From      string `mapstructure:"from"`
	Component bool   `mapstructure:"component"`
}

// LogConfig selects logger output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the resolved configuration.
type Config struct {
	Target             string         `mapstructure:"target"`
	DryRun             bool           `mapstructure:"dry_run"`
	Verbose            bool           `mapstructure:"verbose"`
	Check              bool           `mapstructure:"check"`
	Workers            int            `mapstructure:"workers"`
	TemplateExtensions []string       `mapstructure:"template_extensions"`
	ScriptExtensions   []string       `mapstructure:"script_extensions"`
	Log                LogConfig      `mapstructure:"log"`
	Catalog            []CatalogEntry `mapstructure:"catalog"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// Error reports an invalid setting.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("target", "src")
	v.SetDefault("dry_run", false)
	v.SetDefault("verbose", false)
	v.SetDefault("check", false)
	v.SetDefault("workers", 0)
	v.SetDefault("template_extensions", []string{".vue"})
	v.SetDefault("script_extensions", []string{".ts"})
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"target":  "target",
	"dry-run": "dry_run",
	"verbose": "verbose",
	"check":   "check",
	"workers": "workers",
}

// Load resolves the configuration. path names an explicit config file; when
// empty, .autoimport.{yaml,yml,toml,json} is looked up in dir and a missing
// file is not an error. flags may be nil.
func Load(path, dir string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that cannot be expressed as defaults.
func (c *Config) Validate() error {
	if c.Target == "" {
		return &Error{Field: "target", Message: "must not be empty"}
	}
	if c.Workers < 0 {
		return &Error{Field: "workers", Message: "must not be negative"}
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return &Error{Field: "log.format", Message: fmt.Sprintf("unknown format %q (want console or json)", c.Log.Format)}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return &Error{Field: "log.level", Message: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	for i, e := range c.Catalog {
		if e.Name == "" || e.From == "" {
			return &Error{Field: fmt.Sprintf("catalog[%d]", i), Message: "name and from are required"}
		}
	}
	return nil
}

// DryRunEffective reports whether files must not be written. Check mode
// never writes.
func (c *Config) DryRunEffective() bool {
	return c.DryRun || c.Check
}
