package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gannonh/kata/internal/errors"
	"github.com/gannonh/kata/internal/paths"
	"github.com/gannonh/kata/internal/transform"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KATA"

// Config is the full configuration.
type Config struct {
	// Namespace is the plugin name resources are prefixed with.
	Namespace string `mapstructure:"namespace"`
	// ConfigRoot is the Claude config directory name.
	ConfigRoot string        `mapstructure:"config_root"`
	Build      BuildConfig   `mapstructure:"build"`
	Install    InstallConfig `mapstructure:"install"`
	Update     UpdateConfig  `mapstructure:"update"`
}

// BuildConfig configures kata build.
type BuildConfig struct {
	SourceDir string `mapstructure:"source_dir"`
	DistDir   string `mapstructure:"dist_dir"`
	// Manifest is the optional overlay file, relative to SourceDir.
	Manifest string `mapstructure:"manifest"`
}

// InstallConfig configures kata install.
type InstallConfig struct {
	// SourceDir is the distribution tree to install. Empty means the tree
	// the kata executable was shipped in.
	SourceDir string `mapstructure:"source_dir"`
}

// UpdateConfig configures the update check.
type UpdateConfig struct {
	Package  string        `mapstructure:"package"`
	Registry string        `mapstructure:"registry"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Naming returns the rewrite naming derived from the config.
func (c *Config) Naming() transform.Naming {
	return transform.Naming{Namespace: c.Namespace, ConfigRoot: c.ConfigRoot}
}

// Init resets Viper and installs defaults, search paths and environment
// bindings. Call it once at startup before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		viper.AddConfigPath(dir)
	}
	viper.AddConfigPath(paths.AppConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("namespace", transform.DefaultNaming.Namespace)
	viper.SetDefault("config_root", transform.DefaultNaming.ConfigRoot)
	viper.SetDefault("build.source_dir", ".")
	viper.SetDefault("build.dist_dir", "dist")
	viper.SetDefault("build.manifest", "kata-build.toml")
	viper.SetDefault("install.source_dir", "")
	viper.SetDefault("update.package", "@gannonh/kata")
	viper.SetDefault("update.registry", "https://registry.npmjs.org")
	viper.SetDefault("update.timeout", 10*time.Second)
}

// Load reads the configuration. If path is non-empty that file must exist;
// otherwise the search paths are tried and a missing file means defaults.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Defaults only.
		case errors.As(err, &notFound):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "validating config")
	}
	return &cfg, nil
}
