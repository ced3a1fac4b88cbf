package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dastanaron/signupsaver/internal/logger"
	"github.com/dastanaron/signupsaver/internal/models"
)

// Store kinds
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// DefaultTargetPattern matches SignUpGenius sign-up links
const DefaultTargetPattern = `^https?://(www\.)?signupgenius\.com/go/\S+$`

const envPrefix = "SIGNUPSAVER_"

// Config holds application configuration
type Config struct {
	DBPath        string        `yaml:"db_path"`
	Store         string        `yaml:"store"` // "sqlite" | "redis" | "memory"
	FolderName    string        `yaml:"folder_name"`
	Strict        bool          `yaml:"strict"` // only SignUpGenius links may be saved
	TargetPattern string        `yaml:"target_pattern"`
	StatusDelay   time.Duration `yaml:"status_delay"` // how long status messages stay visible

	LogLevel  string `yaml:"log_level"`  // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `yaml:"pretty_log"` // true => zap dev (color), false => zap prod (JSON)

	ListenAddr string `yaml:"listen_addr"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	return &Config{
		DBPath:        getDefaultDBPath(),
		Store:         StoreSQLite,
		FolderName:    models.DefaultFolderName,
		Strict:        false,
		TargetPattern: DefaultTargetPattern,
		StatusDelay:   2 * time.Second,
		LogLevel:      "info",
		PrettyLog:     true,
		ListenAddr:    "127.0.0.1:8765",
		RedisAddr:     "localhost:6379",
		RedisPrefix:   "signupsaver:",
	}
}

// Load builds the configuration from defaults, the YAML file at path, a .env file
// in the working directory and SIGNUPSAVER_* environment variables, in that order.
// An empty path falls back to ~/.signupsaver/config.yaml when it exists.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	explicit := path != ""
	if !explicit {
		path = getDefaultConfigPath()
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.DBPath = getenv("DB_PATH", c.DBPath)
	c.Store = getenv("STORE", c.Store)
	c.FolderName = getenv("FOLDER_NAME", c.FolderName)
	c.TargetPattern = getenv("TARGET_PATTERN", c.TargetPattern)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.ListenAddr = getenv("LISTEN_ADDR", c.ListenAddr)
	c.RedisAddr = getenv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getenv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisPrefix = getenv("REDIS_PREFIX", c.RedisPrefix)

	var err error
	if c.Strict, err = getenvBool("STRICT", c.Strict); err != nil {
		return err
	}
	if c.PrettyLog, err = getenvBool("PRETTY_LOG", c.PrettyLog); err != nil {
		return err
	}
	if c.StatusDelay, err = getenvDuration("STATUS_DELAY", c.StatusDelay); err != nil {
		return err
	}
	if c.RedisDB, err = getenvInt("REDIS_DB", c.RedisDB); err != nil {
		return err
	}
	return nil
}

// WithDBPath sets a custom database path
func (c *Config) WithDBPath(path string) *Config {
	c.DBPath = path
	return c
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("db_path is required for the sqlite store")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required for the redis store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q (want sqlite, redis or memory)", c.Store)
	}
	if strings.TrimSpace(c.FolderName) == "" {
		return fmt.Errorf("folder_name must not be empty")
	}
	if _, err := regexp.Compile(c.TargetPattern); err != nil {
		return fmt.Errorf("invalid target_pattern: %w", err)
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log_level %q (want debug, info, warn or error)", c.LogLevel)
	}
	if c.StatusDelay <= 0 {
		return fmt.Errorf("status_delay must be > 0, got %v", c.StatusDelay)
	}
	return nil
}

func getDefaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "signupsaver.db"
	}
	return filepath.Join(homeDir, ".signupsaver", "signupsaver.db")
}

func getDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".signupsaver", "config.yaml")
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return b, nil
}

func getenvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return i, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return d, nil
}
