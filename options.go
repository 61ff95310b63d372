package openpgp

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/joho/godotenv"
)

const (
	defaultWorkerQueueSize = 16

	// EnvZeroCopy names the environment variable read by LoadConfig for the
	// zero-copy flag.
	EnvZeroCopy = "OPENPGP_ZERO_COPY"
	// EnvWorkerQueueSize names the environment variable read by LoadConfig
	// for the worker request queue size.
	EnvWorkerQueueSize = "OPENPGP_WORKER_QUEUE_SIZE"
)

// Config is the library configuration. The zero-copy flag may be flipped
// at any time with SetZeroCopy; everything else is fixed at construction.
// A nil *Config behaves like the defaults.
type Config struct {
	zeroCopy        atomic.Bool
	logger          *slog.Logger
	workerQueueSize int
}

// Option configures a Config.
type Option func(*Config)

// WithZeroCopy enables handing byte buffers to the worker without copying.
// Default: false
func WithZeroCopy(enabled bool) Option {
	return func(c *Config) {
		c.zeroCopy.Store(enabled)
	}
}

// WithLogger sets the logger used by the worker. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithWorkerQueueSize sets how many requests may wait for the worker.
// Values below 1 keep the default of 16.
func WithWorkerQueueSize(n int) Option {
	return func(c *Config) {
		c.workerQueueSize = n
	}
}

// NewConfig builds a Config from options.
func NewConfig(opts ...Option) *Config {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.workerQueueSize < 1 {
		c.workerQueueSize = defaultWorkerQueueSize
	}
	return c
}

// ZeroCopy reports whether buffers are transferred instead of copied.
func (c *Config) ZeroCopy() bool {
	return c != nil && c.zeroCopy.Load()
}

// SetZeroCopy changes the zero-copy flag. Calls already in progress keep the
// value they read when they started.
func (c *Config) SetZeroCopy(enabled bool) {
	c.zeroCopy.Store(enabled)
}

// Logger returns the configured logger.
func (c *Config) Logger() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// WorkerQueueSize returns the worker request queue size.
func (c *Config) WorkerQueueSize() int {
	if c == nil || c.workerQueueSize < 1 {
		return defaultWorkerQueueSize
	}
	return c.workerQueueSize
}

// LoadConfig builds a Config from dotenv files and the process environment.
// Files are read without modifying the environment; real environment
// variables override values from files. Additional options are applied last.
func LoadConfig(envFiles []string, opts ...Option) (*Config, error) {
	values := map[string]string{}
	if len(envFiles) > 0 {
		fileValues, err := godotenv.Read(envFiles...)
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("read env files: %w", err)}
		}
		values = fileValues
	}
	for _, key := range []string{EnvZeroCopy, EnvWorkerQueueSize} {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	var loaded []Option
	if v, ok := values[EnvZeroCopy]; ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, &ConfigError{Key: EnvZeroCopy, Value: v, Err: err}
		}
		loaded = append(loaded, WithZeroCopy(enabled))
	}
	if v, ok := values[EnvWorkerQueueSize]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ConfigError{Key: EnvWorkerQueueSize, Value: v, Err: err}
		}
		if n < 1 {
			return nil, &ConfigError{Key: EnvWorkerQueueSize, Value: v, Err: fmt.Errorf("must be at least 1")}
		}
		loaded = append(loaded, WithWorkerQueueSize(n))
	}

	return NewConfig(append(loaded, opts...)...), nil
}
