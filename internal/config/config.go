// SPDX-License-Identifier: MIT

// Package config resolves the daemon and worker configuration.
// Precedence is environment over config file over built-in defaults;
// all environment keys carry the BRIDGE_ prefix.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends accepted by BRIDGE_STORE.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreSQLite = "sqlite"
)

// Cache backends accepted by BRIDGE_CACHE.
const (
	CacheOff    = "off"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// AppConfig is the resolved daemon configuration.
type AppConfig struct {
	Listen        string
	MetricsListen string
	DataDir       string

	StoreBackend string

	APIToken       string
	WorkerToken    string
	AllowAnonymous bool

	JobTimeout time.Duration
	LeaseWait  time.Duration

	RateLimit       int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel  string
	LogFormat string

	TracingEnabled   bool
	OTLPEndpoint     string
	OTLPProtocol     string
	TraceSampleRatio float64
}

// defaults returns the built-in daemon configuration.
func defaults() AppConfig {
	return AppConfig{
		Listen:           ":8080",
		MetricsListen:    ":9090",
		DataDir:          "./data",
		StoreBackend:     StoreBadger,
		JobTimeout:       600 * time.Second,
		LeaseWait:        25 * time.Second,
		RateLimit:        60,
		ReadTimeout:      15 * time.Second,
		WriteTimeout:     30 * time.Second,
		ShutdownTimeout:  10 * time.Second,
		CacheBackend:     CacheMemory,
		CacheTTL:         5 * time.Minute,
		RedisDB:          0,
		LogLevel:         "info",
		LogFormat:        "json",
		OTLPProtocol:     "grpc",
		TraceSampleRatio: 0.1,
	}
}

// fileConfig mirrors AppConfig for the optional YAML file. Pointer
// fields distinguish "absent" from zero values.
type fileConfig struct {
	Listen        *string `yaml:"listen"`
	MetricsListen *string `yaml:"metrics_listen"`
	DataDir       *string `yaml:"data_dir"`
	Store         *string `yaml:"store"`

	APIToken       *string `yaml:"api_token"`
	WorkerToken    *string `yaml:"worker_token"`
	AllowAnonymous *bool   `yaml:"allow_anonymous"`

	JobTimeout *string `yaml:"job_timeout"`
	LeaseWait  *string `yaml:"lease_wait"`

	RateLimit       *int    `yaml:"rate_limit"`
	ReadTimeout     *string `yaml:"read_timeout"`
	WriteTimeout    *string `yaml:"write_timeout"`
	ShutdownTimeout *string `yaml:"shutdown_timeout"`

	Cache         *string `yaml:"cache"`
	CacheTTL      *string `yaml:"cache_ttl"`
	RedisAddr     *string `yaml:"redis_addr"`
	RedisPassword *string `yaml:"redis_password"`
	RedisDB       *int    `yaml:"redis_db"`

	LogLevel  *string `yaml:"log_level"`
	LogFormat *string `yaml:"log_format"`

	TracingEnabled   *bool    `yaml:"tracing_enabled"`
	OTLPEndpoint     *string  `yaml:"otlp_endpoint"`
	OTLPProtocol     *string  `yaml:"otlp_protocol"`
	TraceSampleRatio *float64 `yaml:"trace_sample_ratio"`
}

// Load resolves the daemon configuration. filePath may be empty; when
// set (flag or BRIDGE_CONFIG) the YAML file is applied between the
// defaults and the environment.
func Load(filePath string) (*AppConfig, error) {
	cfg := defaults()

	if filePath == "" {
		filePath = os.Getenv("BRIDGE_CONFIG")
	}
	if filePath != "" {
		if err := applyFile(&cfg, filePath); err != nil {
			return nil, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.Listen, fc.Listen)
	setString(&cfg.MetricsListen, fc.MetricsListen)
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.StoreBackend, fc.Store)
	setString(&cfg.APIToken, fc.APIToken)
	setString(&cfg.WorkerToken, fc.WorkerToken)
	if fc.AllowAnonymous != nil {
		cfg.AllowAnonymous = *fc.AllowAnonymous
	}
	if err := setDuration(&cfg.JobTimeout, fc.JobTimeout); err != nil {
		return fmt.Errorf("config file job_timeout: %w", err)
	}
	if err := setDuration(&cfg.LeaseWait, fc.LeaseWait); err != nil {
		return fmt.Errorf("config file lease_wait: %w", err)
	}
	if fc.RateLimit != nil {
		cfg.RateLimit = *fc.RateLimit
	}
	if err := setDuration(&cfg.ReadTimeout, fc.ReadTimeout); err != nil {
		return fmt.Errorf("config file read_timeout: %w", err)
	}
	if err := setDuration(&cfg.WriteTimeout, fc.WriteTimeout); err != nil {
		return fmt.Errorf("config file write_timeout: %w", err)
	}
	if err := setDuration(&cfg.ShutdownTimeout, fc.ShutdownTimeout); err != nil {
		return fmt.Errorf("config file shutdown_timeout: %w", err)
	}
	setString(&cfg.CacheBackend, fc.Cache)
	if err := setDuration(&cfg.CacheTTL, fc.CacheTTL); err != nil {
		return fmt.Errorf("config file cache_ttl: %w", err)
	}
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.RedisPassword, fc.RedisPassword)
	if fc.RedisDB != nil {
		cfg.RedisDB = *fc.RedisDB
	}
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	if fc.TracingEnabled != nil {
		cfg.TracingEnabled = *fc.TracingEnabled
	}
	setString(&cfg.OTLPEndpoint, fc.OTLPEndpoint)
	setString(&cfg.OTLPProtocol, fc.OTLPProtocol)
	if fc.TraceSampleRatio != nil {
		cfg.TraceSampleRatio = *fc.TraceSampleRatio
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func applyEnv(cfg *AppConfig) {
	cfg.Listen = ParseString("BRIDGE_LISTEN", cfg.Listen)
	cfg.MetricsListen = ParseString("BRIDGE_METRICS_LISTEN", cfg.MetricsListen)
	cfg.DataDir = ParseString("BRIDGE_DATA_DIR", cfg.DataDir)
	cfg.StoreBackend = ParseString("BRIDGE_STORE", cfg.StoreBackend)
	cfg.APIToken = ParseString("BRIDGE_API_TOKEN", cfg.APIToken)
	cfg.WorkerToken = ParseString("BRIDGE_WORKER_TOKEN", cfg.WorkerToken)
	cfg.AllowAnonymous = ParseBool("BRIDGE_AUTH_ANONYMOUS", cfg.AllowAnonymous)
	cfg.JobTimeout = ParseDuration("BRIDGE_JOB_TIMEOUT", cfg.JobTimeout)
	cfg.LeaseWait = ParseDuration("BRIDGE_LEASE_WAIT", cfg.LeaseWait)
	cfg.RateLimit = ParseInt("BRIDGE_RATE_LIMIT", cfg.RateLimit)
	cfg.ReadTimeout = ParseDuration("BRIDGE_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = ParseDuration("BRIDGE_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.ShutdownTimeout = ParseDuration("BRIDGE_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.CacheBackend = ParseString("BRIDGE_CACHE", cfg.CacheBackend)
	cfg.CacheTTL = ParseDuration("BRIDGE_CACHE_TTL", cfg.CacheTTL)
	cfg.RedisAddr = ParseString("BRIDGE_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = ParseString("BRIDGE_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = ParseInt("BRIDGE_REDIS_DB", cfg.RedisDB)
	cfg.LogLevel = ParseString("BRIDGE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = ParseString("BRIDGE_LOG_FORMAT", cfg.LogFormat)
	cfg.TracingEnabled = ParseBool("BRIDGE_TRACING_ENABLED", cfg.TracingEnabled)
	cfg.OTLPEndpoint = ParseString("BRIDGE_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.OTLPProtocol = ParseString("BRIDGE_OTLP_PROTOCOL", cfg.OTLPProtocol)
	cfg.TraceSampleRatio = ParseFloat("BRIDGE_TRACE_SAMPLE_RATIO", cfg.TraceSampleRatio)
}

// StorePath resolves the store file location for the configured
// backend under the data dir. Memory stores have no path.
func (c *AppConfig) StorePath() string {
	switch c.StoreBackend {
	case StoreBadger:
		return filepath.Join(c.DataDir, "jobs.badger")
	case StoreSQLite:
		return filepath.Join(c.DataDir, "jobs.sqlite")
	default:
		return ""
	}
}

// Validate aggregates all configuration errors into one message.
func (c *AppConfig) Validate() error {
	var problems []string

	if c.Listen == "" {
		problems = append(problems, "listen address must not be empty")
	}
	if c.DataDir == "" {
		problems = append(problems, "data dir must not be empty")
	}
	switch c.StoreBackend {
	case StoreMemory, StoreBadger, StoreSQLite:
	default:
		problems = append(problems, fmt.Sprintf("unknown store backend %q (memory|badger|sqlite)", c.StoreBackend))
	}
	switch c.CacheBackend {
	case CacheOff, CacheMemory, CacheRedis:
	default:
		problems = append(problems, fmt.Sprintf("unknown cache backend %q (off|memory|redis)", c.CacheBackend))
	}
	if c.CacheBackend == CacheRedis && c.RedisAddr == "" {
		problems = append(problems, "redis cache requires BRIDGE_REDIS_ADDR")
	}
	if c.JobTimeout <= 0 {
		problems = append(problems, "job timeout must be positive")
	}
	if c.LeaseWait <= 0 {
		problems = append(problems, "lease wait must be positive")
	}
	if c.RateLimit < 0 {
		problems = append(problems, "rate limit must not be negative")
	}
	if !c.AllowAnonymous && c.APIToken == "" {
		problems = append(problems, "BRIDGE_API_TOKEN is required unless BRIDGE_AUTH_ANONYMOUS=true")
	}
	if !c.AllowAnonymous && c.WorkerToken == "" {
		problems = append(problems, "BRIDGE_WORKER_TOKEN is required unless BRIDGE_AUTH_ANONYMOUS=true")
	}
	switch c.OTLPProtocol {
	case "grpc", "http":
	default:
		problems = append(problems, fmt.Sprintf("unknown otlp protocol %q (grpc|http)", c.OTLPProtocol))
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		problems = append(problems, "trace sample ratio must be within [0,1]")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
