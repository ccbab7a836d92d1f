// Package config loads service settings from defaults, an optional YAML file,
// a .env file and METONCOFIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the complete service configuration.
type Config struct {
	DataFile         string `mapstructure:"data_file" yaml:"data_file"`
	DuckDBTable      string `mapstructure:"duckdb_table" yaml:"duckdb_table"`
	ReferenceFeature string `mapstructure:"reference_feature" yaml:"reference_feature"`
	DefaultCancer    string `mapstructure:"default_cancer" yaml:"default_cancer"`
	DefaultTarget    string `mapstructure:"default_target" yaml:"default_target"`
	DefaultGenes     int    `mapstructure:"default_genes" yaml:"default_genes"`
	Port             string `mapstructure:"port" yaml:"port"`
	GinMode          string `mapstructure:"gin_mode" yaml:"gin_mode"`
	LogLevel         string `mapstructure:"log_level" yaml:"log_level"`
}

var keys = []string{
	"data_file", "duckdb_table", "reference_feature", "default_cancer",
	"default_target", "default_genes", "port", "gin_mode", "log_level",
}

// Load reads configuration. Precedence: env > config file > defaults. A .env
// file in the working directory, if any, is applied to the environment first
// without overriding variables that are already set.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("METONCOFIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees env values for keys viper knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("data_file", "data/db.json")
	v.SetDefault("duckdb_table", "predictions")
	v.SetDefault("reference_feature", "NCI-60 gene expression")
	v.SetDefault("default_cancer", "Pan Cancer")
	v.SetDefault("default_target", "Differential Expression")
	v.SetDefault("default_genes", 25)
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return errors.New("config: data_file is required")
	}
	if c.DefaultGenes < 1 {
		return fmt.Errorf("config: default_genes must be at least 1, got %d", c.DefaultGenes)
	}
	if c.Port == "" {
		return errors.New("config: port is required")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: unknown gin_mode %q", c.GinMode)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}
