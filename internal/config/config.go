// Package config loads portyp settings from defaults, an optional config
// file, PORTYP_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	m "github.com/mouse-blink/portyp/internal/model"
)

const (
	configName      = ".portyp"
	configType      = "yaml"
	envPrefix       = "PORTYP"
	envKeySeparator = "_"
)

// Defaults.
const (
	DefaultMaxDepth        = 5
	DefaultPackagesDir     = "pckgs"
	DefaultSourceExtension = ".typ"
)

// Config holds the settings for one run.
type Config struct {
	// PackageStore is the root of the local package store. When empty after
	// loading it is derived from the operating system conventions.
	PackageStore    string   `mapstructure:"package_store"`
	PackagesDir     string   `mapstructure:"packages_dir"`
	MaxDepth        int      `mapstructure:"max_depth"`
	Overwrite       bool     `mapstructure:"overwrite"`
	Exclude         []string `mapstructure:"exclude"`
	Verbose         bool     `mapstructure:"verbose"`
	SourceExtension string   `mapstructure:"source_extension"`
}

// LoadOptions are the explicit inputs of Load.
type LoadOptions struct {
	// ConfigFile forces a specific config file. Otherwise .portyp.yaml is
	// looked up in the working directory and then in $HOME.
	ConfigFile string
	// Flags are bound on top of every other source when set.
	Flags *pflag.FlagSet
	// GOOS and Getenv feed PackageStore; they default to the running system.
	GOOS   string
	Getenv func(string) string
}

// flagKeys maps config keys to the CLI flags that override them.
var flagKeys = map[string]string{
	"package_store": "package-store",
	"packages_dir":  "packages-dir",
	"max_depth":     "max-depth",
	"overwrite":     "overwrite",
	"exclude":       "exclude",
	"verbose":       "verbose",
}

// Load builds a validated Config. A missing config file is not an error.
func Load(opts LoadOptions) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator, "-", envKeySeparator))
	viperCfg.AutomaticEnv()

	if opts.ConfigFile != "" {
		viperCfg.SetConfigFile(opts.ConfigFile)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	if err := viperCfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: read config: %w", ErrConfig, err)
		}
	}

	if opts.Flags != nil {
		for key, name := range flagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}

			if err := viperCfg.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("%w: bind flag %s: %w", ErrConfig, name, err)
			}
		}
	}

	var cfg Config
	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config: %w", ErrConfig, err)
	}

	if cfg.PackageStore == "" {
		goos, getenv := opts.GOOS, opts.Getenv
		if goos == "" {
			goos = runtime.GOOS
		}

		if getenv == nil {
			getenv = os.Getenv
		}

		store, err := PackageStore(goos, getenv)
		if err != nil {
			return nil, err
		}

		cfg.PackageStore = string(store)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the settings can drive a run.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth must not be negative, got %d", ErrConfig, c.MaxDepth)
	}

	if c.PackagesDir == "" || c.PackagesDir == "." || c.PackagesDir == ".." || strings.ContainsAny(c.PackagesDir, `/\`) {
		return fmt.Errorf("%w: packages dir must be a single path element, got %q", ErrConfig, c.PackagesDir)
	}

	if !strings.HasPrefix(c.SourceExtension, ".") {
		return fmt.Errorf("%w: source extension must start with a dot, got %q", ErrConfig, c.SourceExtension)
	}

	if c.PackageStore == "" {
		return fmt.Errorf("%w: package store is not set", ErrConfig)
	}

	return nil
}

// Store returns the package store root as a model path.
func (c *Config) Store() m.Path {
	return m.Path(c.PackageStore)
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("package_store", "")
	viperCfg.SetDefault("packages_dir", DefaultPackagesDir)
	viperCfg.SetDefault("max_depth", DefaultMaxDepth)
	viperCfg.SetDefault("overwrite", false)
	viperCfg.SetDefault("exclude", []string{})
	viperCfg.SetDefault("verbose", false)
	viperCfg.SetDefault("source_extension", DefaultSourceExtension)
}
