package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/meysamhadeli/talos/code_analyzer/models"
	"github.com/meysamhadeli/talos/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = "talos-config"
	envPrefix  = "TALOS"

	// StdoutOutput selects printing the document instead of writing a file.
	StdoutOutput = "-"

	// DefaultOutputFile is written inside the scanned directory when no output is configured.
	DefaultOutputFile = "talos.json"
)

// Config represents the structure of the configuration file
type Config struct {
	Version     string   `mapstructure:"version"`
	Output      string   `mapstructure:"output"`
	TerseOutput bool     `mapstructure:"terse_output"`
	Ext         string   `mapstructure:"ext"`
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
	MaxFileSize int64    `mapstructure:"max_file_size"`
	Workers     int      `mapstructure:"workers"`
	EnableCache bool     `mapstructure:"enable_cache"`
	CacheDir    string   `mapstructure:"cache_dir"`
	Theme       string   `mapstructure:"theme"`
	LogLevel    string   `mapstructure:"log_level"`

	configFile string
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:     "0.1.0",
	Output:      "",
	TerseOutput: false,
	Ext:         models.DefaultExtensions.String(),
	Include:     []string{},
	Exclude:     []string{},
	MaxFileSize: 0,
	Workers:     runtime.NumCPU(),
	EnableCache: true,
	CacheDir:    "",
	Theme:       "dracula",
	LogLevel:    "info",
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs merges defaults, the config file, TALOS_* environment variables
// and CLI flags, in increasing order of precedence.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(cwd)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	bindFlags(v, rootCmd)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	config.configFile = v.ConfigFileUsed()

	return &config, nil
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("output", DefaultConfig.Output)
	v.SetDefault("terse_output", DefaultConfig.TerseOutput)
	v.SetDefault("ext", DefaultConfig.Ext)
	v.SetDefault("include", DefaultConfig.Include)
	v.SetDefault("exclude", DefaultConfig.Exclude)
	v.SetDefault("max_file_size", DefaultConfig.MaxFileSize)
	v.SetDefault("workers", DefaultConfig.Workers)
	v.SetDefault("enable_cache", DefaultConfig.EnableCache)
	v.SetDefault("cache_dir", DefaultConfig.CacheDir)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("log_level", DefaultConfig.LogLevel)
}

// bindEnv binds TALOS_* environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"output", "terse_output", "ext", "include", "exclude", "max_file_size",
		"workers", "enable_cache", "cache_dir", "theme", "log_level",
	} {
		_ = v.BindEnv(key)
	}
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	_ = v.BindPFlag("output", flags.Lookup("output"))
	_ = v.BindPFlag("terse_output", flags.Lookup("terse-output"))
	_ = v.BindPFlag("ext", flags.Lookup("ext"))
	_ = v.BindPFlag("include", flags.Lookup("include"))
	_ = v.BindPFlag("exclude", flags.Lookup("exclude"))
	_ = v.BindPFlag("max_file_size", flags.Lookup("max-file-size"))
	_ = v.BindPFlag("workers", flags.Lookup("workers"))
	_ = v.BindPFlag("enable_cache", flags.Lookup("enable-cache"))
	_ = v.BindPFlag("cache_dir", flags.Lookup("cache-dir"))
	_ = v.BindPFlag("theme", flags.Lookup("theme"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Path to a configuration file (JSON or YAML). Defaults to talos-config.{yml,yaml,json} in the working directory.")

	flags.StringP("output", "o", DefaultConfig.Output, "Output filename; '-' prints to stdout. Defaults to 'talos.json' in the input directory.")
	flags.Bool("terse-output", DefaultConfig.TerseOutput, "Skip files that produced no signatures.")
	flags.String("ext", DefaultConfig.Ext, "Comma-separated list of allowed extensions.")
	flags.StringArray("include", DefaultConfig.Include, "Include glob, relative to the input directory (repeatable).")
	flags.StringArray("exclude", DefaultConfig.Exclude, "Exclude glob, relative to the input directory (repeatable). Excludes win over includes.")
	flags.Int64("max-file-size", DefaultConfig.MaxFileSize, "Skip files larger than this many bytes (0 disables the limit).")
	flags.Int("workers", DefaultConfig.Workers, "Number of files extracted concurrently.")
	flags.Bool("enable-cache", DefaultConfig.EnableCache, "Reuse signatures of unchanged files from the on-disk cache.")
	flags.String("cache-dir", DefaultConfig.CacheDir, "Directory of the signature cache. Defaults to the user cache directory.")
	flags.String("theme", DefaultConfig.Theme, "Chroma style used when printing JSON or diffs to a terminal (e.g., 'dracula', 'monokai').")
	flags.String("log-level", DefaultConfig.LogLevel, "Log level: trace, debug, info, warn, error or disabled.")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// ScanOptions validates the scan settings. Malformed extension lists and
// glob patterns are reported here, before any file is read.
func (c *Config) ScanOptions() (models.ScanOptions, error) {
	extensions, err := models.ParseExtensions(c.Ext)
	if err != nil {
		return models.ScanOptions{}, fmt.Errorf("invalid --ext %q: %w", c.Ext, err)
	}
	if _, err := utils.CompileGlobs(c.Include...); err != nil {
		return models.ScanOptions{}, fmt.Errorf("invalid --include: %w", err)
	}
	if _, err := utils.CompileGlobs(c.Exclude...); err != nil {
		return models.ScanOptions{}, fmt.Errorf("invalid --exclude: %w", err)
	}
	if c.MaxFileSize < 0 {
		return models.ScanOptions{}, fmt.Errorf("invalid --max-file-size %d: must not be negative", c.MaxFileSize)
	}
	if c.Workers < 1 {
		return models.ScanOptions{}, fmt.Errorf("invalid --workers %d: must be at least 1", c.Workers)
	}

	return models.ScanOptions{
		AllowedExtensions: extensions,
		Include:           c.Include,
		Exclude:           c.Exclude,
		MaxFileSize:       c.MaxFileSize,
		TerseOutput:       c.TerseOutput,
		Workers:           c.Workers,
	}, nil
}

// OutputPath resolves where the document for inputDir is written. It returns
// StdoutOutput unchanged; relative paths are taken from the working directory.
func (c *Config) OutputPath(inputDir string) (string, error) {
	switch c.Output {
	case StdoutOutput:
		return StdoutOutput, nil
	case "":
		return filepath.Abs(filepath.Join(inputDir, DefaultOutputFile))
	default:
		return filepath.Abs(c.Output)
	}
}

// ConfigFileUsed returns the configuration file that was read, if any.
func (c *Config) ConfigFileUsed() string {
	return c.configFile
}
