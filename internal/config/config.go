package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/asklog/internal/logfile"
)

// Config holds all configurable asklog settings.
type Config struct {
	LogFile        string `yaml:"log_file"`          // default $HOME/terminal_output.log
	MaxLogFileSize string `yaml:"max_log_file_size"` // human size, e.g. "10MiB"
	MaxLogLines    int    `yaml:"max_log_lines"`
	BinaryPath     string `yaml:"binary_path"` // wrapped ask binary; default <wrapper dir>/../libexec/ask
	Verbose        bool   `yaml:"verbose"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		MaxLogFileSize: humanize.IBytes(uint64(logfile.DefaultMaxBytes)),
		MaxLogLines:    logfile.DefaultMaxLines,
	}
}

// Dir returns ~/.config/asklog for the given home directory.
func Dir(home string) string {
	return filepath.Join(home, ".config", "asklog")
}

// Path returns the config file location for the given home directory.
func Path(home string) string {
	return filepath.Join(Dir(home), "config.yaml")
}

// Load reads ~/.config/asklog/config.yaml and merges it over the defaults.
// A missing file yields the defaults.
func Load(home string) (Config, error) {
	file, err := loadFile(Path(home))
	if err != nil {
		return Defaults(), err
	}
	return Merge(file), nil
}

// loadFile reads and parses a YAML config file at path. It returns nil when
// the file is absent.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if _, err := cfg.maxBytes(); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge lays file values over the defaults. Unset fields keep their default.
func Merge(file *Config) Config {
	result := Defaults()
	if file == nil {
		return result
	}
	if file.LogFile != "" {
		result.LogFile = file.LogFile
	}
	if file.MaxLogFileSize != "" {
		result.MaxLogFileSize = file.MaxLogFileSize
	}
	if file.MaxLogLines != 0 {
		result.MaxLogLines = file.MaxLogLines
	}
	if file.BinaryPath != "" {
		result.BinaryPath = file.BinaryPath
	}
	if file.Verbose {
		result.Verbose = true
	}
	return result
}

// LogPath resolves the log file location, expanding a leading ~/.
func (c Config) LogPath(home string) string {
	if c.LogFile == "" {
		return logfile.DefaultPath(home)
	}
	return expandPath(c.LogFile, home)
}

// BinaryPathFor resolves the configured binary, expanding a leading ~/.
// It returns "" when no binary is configured.
func (c Config) BinaryPathFor(home string) string {
	if c.BinaryPath == "" {
		return ""
	}
	return expandPath(c.BinaryPath, home)
}

// Limits converts the size and line settings into log bounds.
func (c Config) Limits() (logfile.Limits, error) {
	size, err := c.maxBytes()
	if err != nil {
		return logfile.DefaultLimits(), err
	}
	return logfile.Limits{MaxBytes: size, MaxLines: c.MaxLogLines}, nil
}

func (c Config) maxBytes() (int64, error) {
	if strings.TrimSpace(c.MaxLogFileSize) == "" {
		return logfile.DefaultMaxBytes, nil
	}
	n, err := humanize.ParseBytes(c.MaxLogFileSize)
	if err != nil {
		return 0, fmt.Errorf("max_log_file_size: %w", err)
	}
	return int64(n), nil
}

func expandPath(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	if strings.HasPrefix(path, "$HOME/") {
		return filepath.Join(home, path[len("$HOME/"):])
	}
	return filepath.Clean(path)
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
