package openpgp

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConstants(t *testing.T) {
	if defaultWorkerQueueSize != 16 {
		t.Errorf("defaultWorkerQueueSize = %d, want 16", defaultWorkerQueueSize)
	}
	if EnvZeroCopy != "OPENPGP_ZERO_COPY" {
		t.Errorf("EnvZeroCopy = %s", EnvZeroCopy)
	}
	if EnvWorkerQueueSize != "OPENPGP_WORKER_QUEUE_SIZE" {
		t.Errorf("EnvWorkerQueueSize = %s", EnvWorkerQueueSize)
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	if cfg.ZeroCopy() {
		t.Error("ZeroCopy() = true, want false")
	}
	if cfg.WorkerQueueSize() != defaultWorkerQueueSize {
		t.Errorf("WorkerQueueSize() = %d, want %d", cfg.WorkerQueueSize(), defaultWorkerQueueSize)
	}
	if cfg.Logger() == nil {
		t.Error("Logger() = nil")
	}
}

func TestNilConfig(t *testing.T) {
	var cfg *Config
	if cfg.ZeroCopy() {
		t.Error("nil Config ZeroCopy() = true")
	}
	if cfg.WorkerQueueSize() != defaultWorkerQueueSize {
		t.Errorf("nil Config WorkerQueueSize() = %d", cfg.WorkerQueueSize())
	}
	if cfg.Logger() == nil {
		t.Error("nil Config Logger() = nil")
	}
}

func TestWithZeroCopy(t *testing.T) {
	cfg := NewConfig(WithZeroCopy(true))
	if !cfg.ZeroCopy() {
		t.Error("ZeroCopy() = false, want true")
	}
	cfg.SetZeroCopy(false)
	if cfg.ZeroCopy() {
		t.Error("ZeroCopy() = true after SetZeroCopy(false)")
	}
}

func TestWithLogger(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	cfg := NewConfig(WithLogger(logger))
	if cfg.Logger() != logger {
		t.Error("logger was not set")
	}
}

func TestWithWorkerQueueSize(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"positive", 4, 4},
		{"one", 1, 1},
		{"zero keeps default", 0, defaultWorkerQueueSize},
		{"negative keeps default", -3, defaultWorkerQueueSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithWorkerQueueSize(tt.n))
			if cfg.WorkerQueueSize() != tt.want {
				t.Errorf("WorkerQueueSize() = %d, want %d", cfg.WorkerQueueSize(), tt.want)
			}
		})
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openpgp.env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

// clearEnv unsets the config variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvZeroCopy, EnvWorkerQueueSize} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfig_Files(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "OPENPGP_ZERO_COPY=true\nOPENPGP_WORKER_QUEUE_SIZE=3\n")

	cfg, err := LoadConfig([]string{path})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.ZeroCopy() {
		t.Error("ZeroCopy() = false, want true")
	}
	if cfg.WorkerQueueSize() != 3 {
		t.Errorf("WorkerQueueSize() = %d, want 3", cfg.WorkerQueueSize())
	}
	if _, ok := os.LookupEnv(EnvZeroCopy); ok {
		t.Error("LoadConfig should not modify the environment")
	}
}

func TestLoadConfig_EnvOverridesFiles(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "OPENPGP_ZERO_COPY=true\n")
	t.Setenv(EnvZeroCopy, "false")

	cfg, err := LoadConfig([]string{path})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ZeroCopy() {
		t.Error("environment should override env file")
	}
}

func TestLoadConfig_OptionsApplyLast(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWorkerQueueSize, "8")

	cfg, err := LoadConfig(nil, WithWorkerQueueSize(2))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.WorkerQueueSize() != 2 {
		t.Errorf("WorkerQueueSize() = %d, want 2", cfg.WorkerQueueSize())
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		files   []string
		wantKey string
	}{
		{"bad bool", map[string]string{EnvZeroCopy: "maybe"}, nil, EnvZeroCopy},
		{"bad int", map[string]string{EnvWorkerQueueSize: "many"}, nil, EnvWorkerQueueSize},
		{"zero queue", map[string]string{EnvWorkerQueueSize: "0"}, nil, EnvWorkerQueueSize},
		{"missing file", nil, []string{filepath.Join(os.TempDir(), "does-not-exist.env")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig(tt.files)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", cfgErr.Key, tt.wantKey)
			}
			if tt.wantKey == "" && !strings.Contains(err.Error(), "read env files") {
				t.Errorf("Error() = %s", err.Error())
			}
		})
	}
}
