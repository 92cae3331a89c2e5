package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DBDriver   string `mapstructure:"db_driver" yaml:"db_driver"`
	DSN        string `mapstructure:"dsn" yaml:"dsn"`
	Projection string `mapstructure:"projection" yaml:"projection"`
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`
	BatchSize  int    `mapstructure:"batch_size" yaml:"batch_size"`

	// Report layout
	ZipTopN      int `mapstructure:"zip_top_n" yaml:"zip_top_n"`
	CrosstabRows int `mapstructure:"crosstab_rows" yaml:"crosstab_rows"`
	HeatRadius   int `mapstructure:"heat_radius" yaml:"heat_radius"`
	HeatBlur     int `mapstructure:"heat_blur" yaml:"heat_blur"`

	// Logging: "dev" or "prod"
	LogMode string `mapstructure:"log_mode" yaml:"log_mode"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"db_driver", "dsn", "projection", "output_dir", "batch_size",
	"zip_top_n", "crosstab_rows", "heat_radius", "heat_blur", "log_mode",
}

// Dir returns ~/.atmscope.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".atmscope"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.atmscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("ATMSCOPE")
	v.AutomaticEnv()

	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("dsn", "")
	v.SetDefault("projection", "EPSG:2893")
	v.SetDefault("output_dir", ".")
	v.SetDefault("batch_size", 500)
	v.SetDefault("zip_top_n", 15)
	v.SetDefault("crosstab_rows", 10)
	v.SetDefault("heat_radius", 15)
	v.SetDefault("heat_blur", 10)
	v.SetDefault("log_mode", "dev")

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// sqlite database lives next to the config by default
	if c.DSN == "" && c.DBDriver == "sqlite" {
		c.DSN = filepath.Join(dir, "atm.db")
	}
	return &c, nil
}
