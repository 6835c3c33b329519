// Package config provides configuration management for colframe operations
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Policy values accepted by Config.
const (
	CastOverflowWrap = "wrap"
	CastOverflowNull = "null"

	DivByZeroNull  = "null"
	DivByZeroError = "error"
)

// Config represents the global configuration for colframe operations
type Config struct {
	// Value semantics
	CastOverflow string `json:"cast_overflow" yaml:"cast_overflow"`     // Integer narrowing overflow: "wrap" or "null"
	IntDivByZero string `json:"int_div_by_zero" yaml:"int_div_by_zero"` // Integer division by zero: "null" or "error"
	JoinSuffix   string `json:"join_suffix" yaml:"join_suffix"`         // Suffix for colliding right-hand join columns ("" = fail)

	// Parallel Processing Configuration
	ParallelThreshold int `json:"parallel_threshold" yaml:"parallel_threshold"` // Minimum rows to trigger partitioned joins
	WorkerPoolSize    int `json:"worker_pool_size" yaml:"worker_pool_size"`     // Number of worker goroutines (0 = auto-detect)
	ChunkSize         int `json:"chunk_size" yaml:"chunk_size"`                 // Rows per partition (0 = auto-calculate)

	// Debugging Configuration
	VerboseLogging bool `json:"verbose_logging" yaml:"verbose_logging"` // Enable debug logging
}

// SystemInfo contains system information for configuration validation
type SystemInfo struct {
	CPUCount     int
	Architecture string
	OSType       string
}

// ConfigValidator validates and provides recommendations for configuration
type ConfigValidator struct {
	systemInfo SystemInfo
}

// Global configuration instance
var (
	globalConfig Config
	globalLogger *slog.Logger
	configMutex  sync.RWMutex
	logOutput    io.Writer = os.Stderr
)

// Default configuration values
const (
	DefaultParallelThreshold = 100_000
	DefaultChunkSize         = 16_384
)

// Initialize global configuration with defaults
func init() {
	SetGlobalConfig(NewConfig())
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		CastOverflow: CastOverflowWrap,
		IntDivByZero: DivByZeroNull,
		JoinSuffix:   "",

		ParallelThreshold: DefaultParallelThreshold,
		WorkerPoolSize:    0, // Auto-detect
		ChunkSize:         DefaultChunkSize,

		VerboseLogging: false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	switch c.CastOverflow {
	case CastOverflowWrap, CastOverflowNull:
	default:
		return fmt.Errorf("CastOverflow must be %q or %q, got %q", CastOverflowWrap, CastOverflowNull, c.CastOverflow)
	}

	switch c.IntDivByZero {
	case DivByZeroNull, DivByZeroError:
	default:
		return fmt.Errorf("IntDivByZero must be %q or %q, got %q", DivByZeroNull, DivByZeroError, c.IntDivByZero)
	}

	if c.ParallelThreshold <= 0 {
		return fmt.Errorf("ParallelThreshold must be positive, got %d", c.ParallelThreshold)
	}

	if c.WorkerPoolSize < 0 {
		return fmt.Errorf("WorkerPoolSize must be non-negative, got %d", c.WorkerPoolSize)
	}

	if c.ChunkSize < 0 {
		return fmt.Errorf("ChunkSize must be non-negative, got %d", c.ChunkSize)
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.CastOverflow == "" {
		c.CastOverflow = defaults.CastOverflow
	}
	if c.IntDivByZero == "" {
		c.IntDivByZero = defaults.IntDivByZero
	}
	if c.ParallelThreshold == 0 {
		c.ParallelThreshold = defaults.ParallelThreshold
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = defaults.ChunkSize
	}

	// Note: JoinSuffix and VerboseLogging keep their zero values, which are
	// also the defaults.

	return c
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
	globalLogger = newLogger(config.VerboseLogging)
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// Logger returns the library logger. It emits debug records only when
// VerboseLogging is set.
func Logger() *slog.Logger {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalLogger
}

// SetLogOutput redirects library logging.
func SetLogOutput(w io.Writer) {
	configMutex.Lock()
	defer configMutex.Unlock()
	logOutput = w
	globalLogger = newLogger(globalConfig.VerboseLogging)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: level})).
		With("component", "colframe")
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a file (supports JSON and YAML)
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() Config {
	config := NewConfig()

	if val := os.Getenv("COLFRAME_CAST_OVERFLOW"); val != "" {
		config.CastOverflow = strings.ToLower(val)
	}

	if val := os.Getenv("COLFRAME_INT_DIV_BY_ZERO"); val != "" {
		config.IntDivByZero = strings.ToLower(val)
	}

	if val, ok := os.LookupEnv("COLFRAME_JOIN_SUFFIX"); ok {
		config.JoinSuffix = val
	}

	if val := os.Getenv("COLFRAME_PARALLEL_THRESHOLD"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.ParallelThreshold = parsed
		}
	}

	if val := os.Getenv("COLFRAME_WORKER_POOL_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.WorkerPoolSize = parsed
		}
	}

	if val := os.Getenv("COLFRAME_CHUNK_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.ChunkSize = parsed
		}
	}

	if val := os.Getenv("COLFRAME_VERBOSE_LOGGING"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.VerboseLogging = parsed
		}
	}

	return config
}

// GetSystemInfo returns system information for configuration validation
func GetSystemInfo() SystemInfo {
	return SystemInfo{
		CPUCount:     runtime.NumCPU(),
		Architecture: runtime.GOARCH,
		OSType:       runtime.GOOS,
	}
}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		systemInfo: GetSystemInfo(),
	}
}

// Validate validates a configuration and provides recommendations
func (cv *ConfigValidator) Validate(config Config) (Config, []string, error) {
	var warnings []string
	validated := config

	if err := config.Validate(); err != nil {
		return Config{}, warnings, err
	}

	if config.WorkerPoolSize > cv.systemInfo.CPUCount*2 {
		warnings = append(warnings,
			fmt.Sprintf("Worker pool size (%d) exceeds 2x CPU count (%d), may cause contention",
				config.WorkerPoolSize, cv.systemInfo.CPUCount))
	}

	if config.WorkerPoolSize == 0 {
		validated.WorkerPoolSize = cv.systemInfo.CPUCount
		warnings = append(warnings,
			fmt.Sprintf("Auto-setting worker pool size to %d (CPU count)",
				validated.WorkerPoolSize))
	}

	return validated, warnings, nil
}
