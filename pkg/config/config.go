// Package config loads replacer configuration from YAML with environment
// overrides.
//
// A missing file is not an error: Load returns DefaultConfig with the
// environment applied on top.
//
// Example:
//
//	cfg, err := config.Load("replacer.yaml")
//	if err != nil {
//		return err
//	}
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orneryd/replacer/pkg/gpu"
)

// Execution backends selectable from configuration.
const (
	BackendHost     = "host"
	BackendParallel = "parallel"
	BackendGPU      = "gpu"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the top-level configuration.
type Config struct {
	Execution ExecutionConfig `yaml:"execution"`
	GPU       GPUConfig       `yaml:"gpu"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ExecutionConfig selects the default system for operations.
type ExecutionConfig struct {
	Backend   string `yaml:"backend"`    // host, parallel, gpu
	Workers   int    `yaml:"workers"`    // 0 = GOMAXPROCS
	GrainSize int    `yaml:"grain_size"` // minimum elements per chunk
}

// GPUConfig configures the accelerator used by the gpu backend.
type GPUConfig struct {
	Enabled          bool   `yaml:"enabled"`
	PreferredBackend string `yaml:"preferred_backend"` // auto, cuda, opencl, metal, vulkan
	FallbackOnError  bool   `yaml:"fallback_on_error"`
}

// StorageConfig locates the sequence store.
type StorageConfig struct {
	DataDir   string `yaml:"data_dir"`
	InMemory  bool   `yaml:"in_memory"`
	CacheSize int    `yaml:"cache_size"` // sequences kept in the read cache, 0 disables it
	CacheTTL  string `yaml:"cache_ttl"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Execution: ExecutionConfig{
			Backend:   BackendParallel,
			Workers:   0,
			GrainSize: 4096,
		},
		GPU: GPUConfig{
			Enabled:          false,
			PreferredBackend: "auto",
			FallbackOnError:  true,
		},
		Storage: StorageConfig{
			DataDir:   "./data",
			CacheSize: 256,
			CacheTTL:  "5m",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
			// defaults
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies REPLACER_* environment variables.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("REPLACER_BACKEND"); v != "" {
		c.Execution.Backend = v
	}
	if v := os.Getenv("REPLACER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REPLACER_WORKERS: %w", err)
		}
		c.Execution.Workers = n
	}
	if v := os.Getenv("REPLACER_GPU_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REPLACER_GPU_ENABLED: %w", err)
		}
		c.GPU.Enabled = b
	}
	if v := os.Getenv("REPLACER_GPU_BACKEND"); v != "" {
		c.GPU.PreferredBackend = v
	}
	if v := os.Getenv("REPLACER_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("REPLACER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks the configuration for values no component accepts.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Execution.Backend) {
	case BackendHost, BackendParallel, BackendGPU:
	default:
		return fmt.Errorf("%w: unknown execution backend %q", ErrInvalidConfig, c.Execution.Backend)
	}
	if c.Execution.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Execution.Workers)
	}
	if c.Execution.GrainSize < 0 {
		return fmt.Errorf("%w: grain_size must be >= 0, got %d", ErrInvalidConfig, c.Execution.GrainSize)
	}
	if _, err := gpu.ParseBackend(c.GPU.PreferredBackend); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Storage.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must be >= 0, got %d", ErrInvalidConfig, c.Storage.CacheSize)
	}
	if c.Storage.CacheTTL != "" {
		ttl, err := time.ParseDuration(c.Storage.CacheTTL)
		if err != nil {
			return fmt.Errorf("%w: cache_ttl: %v", ErrInvalidConfig, err)
		}
		if ttl < 0 {
			return fmt.Errorf("%w: cache_ttl must be >= 0, got %s", ErrInvalidConfig, ttl)
		}
	}
	if !c.Storage.InMemory && c.Storage.DataDir == "" {
		return fmt.Errorf("%w: storage.data_dir is required unless in_memory is set", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// GetCacheTTL returns the storage cache TTL as a duration. An empty or
// unparsable value yields the 5m default; Validate rejects the latter.
func (c *Config) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Storage.CacheTTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// AcceleratorConfig converts the gpu section into an accelerator config.
func (c *Config) AcceleratorConfig() (*gpu.Config, error) {
	backend, err := gpu.ParseBackend(c.GPU.PreferredBackend)
	if err != nil {
		return nil, err
	}
	return &gpu.Config{
		Enabled:          c.GPU.Enabled,
		PreferredBackend: backend,
		FallbackOnError:  c.GPU.FallbackOnError,
		Workers:          c.Execution.Workers,
		GrainSize:        c.Execution.GrainSize,
	}, nil
}
