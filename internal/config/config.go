package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath         = "CONFIG_PATH"
	EnvSubmissionEndpoint = "SUBMISSION_ENDPOINT_URL"
	EnvRosterPath         = "ROSTER_PATH"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Roster     RosterConfig     `yaml:"roster"`
	Submission SubmissionConfig `yaml:"submission"`
	Queue      QueueConfig      `yaml:"queue"`
	Redis      RedisConfig      `yaml:"redis"`
	Storage    StorageConfig    `yaml:"storage"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

// RosterConfig.Path is a local file or s3://bucket/key.
type RosterConfig struct {
	Path string `yaml:"path"`
}

type SubmissionConfig struct {
	EndpointURL string        `yaml:"endpoint_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

// QueueConfig.MaxPending of 0 leaves the queue unbounded.
type QueueConfig struct {
	MaxPending int `yaml:"max_pending"`
}

type RedisConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	PoolSize    int    `yaml:"pool_size"`
	OutcomeList string `yaml:"outcome_list"`
	DLQSuffix   string `yaml:"dlq_suffix"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "fee-desk",
			Version: "dev",
			Env:     "development",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Roster: RosterConfig{
			Path: "students.json",
		},
		Submission: SubmissionConfig{
			Timeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Host:        "localhost",
			Port:        6379,
			PoolSize:    4,
			OutcomeList: "fee-desk:outcomes",
			DLQSuffix:   ":failed",
		},
		RateLimit: RateLimitConfig{
			RPS:   10,
			Burst: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_PATH
// (default config.yaml), then applies environment overrides. A missing YAML
// file is not an error; defaults are used.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configPath := os.Getenv(EnvConfigPath)
	if configPath == "" {
		configPath = "config.yaml"
	}

	return LoadFile(configPath)
}

func LoadFile(configPath string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	config.applyEnv()
	return config, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvSubmissionEndpoint)); v != "" {
		c.Submission.EndpointURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRosterPath)); v != "" {
		c.Roster.Path = v
	}
}

// Validate returns startup diagnostics. None of them are fatal: a missing
// endpoint only means every dispatch will end in error.
func (c *Config) Validate() []string {
	var warnings []string

	if strings.TrimSpace(c.Submission.EndpointURL) == "" {
		warnings = append(warnings, fmt.Sprintf("submission endpoint is not configured; set %s or submission.endpoint_url", EnvSubmissionEndpoint))
	}
	if c.Submission.Timeout <= 0 {
		warnings = append(warnings, "submission.timeout is not positive; a hung request will stall the queue")
	}
	if c.Queue.MaxPending < 0 {
		warnings = append(warnings, "queue.max_pending is negative; treating queue as unbounded")
	}
	if c.Redis.Enabled && c.Redis.OutcomeList == "" {
		warnings = append(warnings, "redis.outcome_list is empty; outcome publishing disabled")
	}

	return warnings
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
