package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of the cvorg binary.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Organizer OrganizerConfig `mapstructure:"organizer"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// OrganizerConfig tunes the template organizer.
type OrganizerConfig struct {
	// IndentWidth is the pointer distance, in pixels, of one nesting level.
	IndentWidth float64 `mapstructure:"indent_width"`
	// HiddenGroupName is the display name given to a newly seeded hidden group.
	HiddenGroupName string `mapstructure:"hidden_group_name"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"db":           "database.path",
	"log-level":    "log.level",
	"indent-width": "organizer.indent_width",
}

// RegisterFlags adds the configuration overrides to fs, usually the root
// command's persistent flags.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("db", "", "Database path (overrides database.path)")
	fs.String("log-level", "", "Log level: debug, info, warn or error")
	fs.Float64("indent-width", 0, "Pixel width of one nesting level")
}

// Load reads cvorg.yaml from the working directory, ~/.cvorg and any extra
// paths, then applies CVORG_* environment overrides. A missing file is not
// an error.
func Load(paths ...string) (*Config, error) {
	return LoadWithFlags(nil, paths...)
}

// LoadWithFlags is Load with command-line overrides. Flags from flagKeys
// that were set on the command line take precedence over everything else.
func LoadWithFlags(flags *pflag.FlagSet, paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("cvorg")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".cvorg"))
	}
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	if err := setDefaults(v); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	v.SetEnvPrefix("CVORG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	// CVORG_DB predates the config file and still wins over it.
	if legacy := os.Getenv("CVORG_DB"); legacy != "" && os.Getenv("CVORG_DATABASE_PATH") == "" && !flagChanged(flags, "db") {
		cfg.Database.Path = legacy
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func flagChanged(flags *pflag.FlagSet, name string) bool {
	return flags != nil && flags.Changed(name)
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if !(c.Organizer.IndentWidth > 0) {
		return fmt.Errorf("config: organizer.indent_width must be positive, got %v", c.Organizer.IndentWidth)
	}
	if strings.TrimSpace(c.Organizer.HiddenGroupName) == "" {
		return errors.New("config: organizer.hidden_group_name is required")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("config: database.path is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("finding home directory: %w", err)
	}
	v.SetDefault("database.path", filepath.Join(home, ".cvorg", "cvorg.db"))
	v.SetDefault("log.level", "warn")
	v.SetDefault("organizer.indent_width", 50)
	v.SetDefault("organizer.hidden_group_name", "Hidden")
	return nil
}
