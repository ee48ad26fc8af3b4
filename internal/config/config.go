package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "filelist.yaml"

// Config holds the settings loaded from filelist.yaml and the environment.
// Command-line flags are applied on top by the caller.
type Config struct {
	BatchSize int    `yaml:"batch_size"`
	LogLevel  string `yaml:"log_level"`
	Dots      int    `yaml:"dots"`
	NoDots    bool   `yaml:"nodots"`
	Profile   string `yaml:"profile"`
	HTTPAddr  string `yaml:"http_addr"`
	Schedule  string `yaml:"schedule"`
}

// applyDefaults fills zero/empty fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Profile == "" {
		c.Profile = "info"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
}

// Load reads the YAML config file at path, then .env and FILELIST_*
// environment overrides. A missing config file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	// An empty file is all defaults.
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

// applyEnv overlays FILELIST_* variables. godotenv never overrides
// variables already present in the process environment.
func (c *Config) applyEnv() error {
	if v := os.Getenv("FILELIST_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("FILELIST_BATCH_SIZE: invalid value %q", v)
		}
		c.BatchSize = n
	}
	if v := os.Getenv("FILELIST_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("FILELIST_HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("FILELIST_PROFILE"); v != "" {
		c.Profile = v
	}
	return nil
}
