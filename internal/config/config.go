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
	OutputDir     string  `mapstructure:"output_dir" yaml:"output_dir"`
	Threshold     float64 `mapstructure:"threshold" yaml:"threshold"`
	TopK          int     `mapstructure:"top_k" yaml:"top_k"`
	BucketCount   int     `mapstructure:"bucket_count" yaml:"bucket_count"`
	TopRegions    int     `mapstructure:"top_regions" yaml:"top_regions"`
	TopCategories int     `mapstructure:"top_categories" yaml:"top_categories"`
	DPI           int     `mapstructure:"dpi" yaml:"dpi"`
	Parallel      bool    `mapstructure:"parallel" yaml:"parallel"`
	// Input parsing
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	Sheet     string `mapstructure:"sheet" yaml:"sheet"`
	// Diagnostic log file, rotated; empty logs to stderr only
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{"output_dir", "threshold", "top_k", "bucket_count", "top_regions", "top_categories", "dpi", "parallel", "delimiter", "sheet", "log_file"}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		OutputDir:     ".",
		Threshold:     0.85,
		TopK:          10,
		BucketCount:   30,
		TopRegions:    5,
		TopCategories: 10,
		DPI:           300,
	}
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".fraudlens"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.fraudlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
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
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("FRAUDLENS")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("threshold", d.Threshold)
	v.SetDefault("top_k", d.TopK)
	v.SetDefault("bucket_count", d.BucketCount)
	v.SetDefault("top_regions", d.TopRegions)
	v.SetDefault("top_categories", d.TopCategories)
	v.SetDefault("dpi", d.DPI)
	v.SetDefault("parallel", d.Parallel)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("sheet", d.Sheet)
	v.SetDefault("log_file", d.LogFile)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
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
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values no chart can use.
func (c *Global) Validate() error {
	switch {
	case c.TopK < 0:
		return fmt.Errorf("top_k must be >= 0, got %d", c.TopK)
	case c.BucketCount <= 0:
		return fmt.Errorf("bucket_count must be > 0, got %d", c.BucketCount)
	case c.TopRegions <= 0:
		return fmt.Errorf("top_regions must be > 0, got %d", c.TopRegions)
	case c.TopCategories <= 0:
		return fmt.Errorf("top_categories must be > 0, got %d", c.TopCategories)
	case c.DPI <= 0:
		return fmt.Errorf("dpi must be > 0, got %d", c.DPI)
	case len([]rune(c.Delimiter)) > 1:
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	return nil
}
