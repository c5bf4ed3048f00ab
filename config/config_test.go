package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestBaseConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := BaseConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != EnvDevelopment {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := BaseConfig{Name: "svc", Environment: EnvProduction}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestBaseConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     BaseConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", BaseConfig{Name: "svc", Environment: "development"}, false, ""},
		{"valid staging", BaseConfig{Name: "svc", Environment: "staging"}, false, ""},
		{"valid production", BaseConfig{Name: "svc", Environment: "production"}, false, ""},
		{"missing name", BaseConfig{Environment: "production"}, true, "name: is required"},
		{"invalid environment", BaseConfig{Name: "svc", Environment: "invalid"}, true, "environment: must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestServiceConfigDefaultsPropagateToLogging(t *testing.T) {
	cfg := ServiceConfig{BaseConfig: BaseConfig{Name: "rxdemo"}}
	cfg.ApplyDefaults()
	if cfg.Logging.ServiceName != "rxdemo" {
		t.Errorf("expected logging service name 'rxdemo', got %q", cfg.Logging.ServiceName)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug logging in development, got %q", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestServiceConfigValidateLogging(t *testing.T) {
	cfg := ServiceConfig{BaseConfig: BaseConfig{Name: "svc"}}
	cfg.ApplyDefaults()
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "config.logging") {
		t.Errorf("expected logging validation error, got %v", err)
	}
}

type testPoolConfig struct {
	Workers  int           `mapstructure:"workers"`
	MaxWait  time.Duration `mapstructure:"max_wait"`
	Disabled bool          `mapstructure:"disabled"`
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Pool          testPoolConfig `mapstructure:"pool"`
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: test-service
environment: staging
version: "1.0.0"
logging:
  level: warn
pool:
  workers: 3
  max_wait: 250ms
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg testConfig
	if err := LoadConfig("test-service", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "test-service" {
		t.Errorf("expected name 'test-service', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected logging level 'warn', got %q", cfg.Logging.Level)
	}
	if cfg.Pool.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Pool.Workers)
	}
	if cfg.Pool.MaxWait != 250*time.Millisecond {
		t.Errorf("expected max_wait 250ms, got %v", cfg.Pool.MaxWait)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte("pool:\n  workers: 3\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("RX_POOL_WORKERS", "7")
	t.Setenv("RX_NAME", "from-env")

	var cfg testConfig
	if err := LoadConfig("svc", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Pool.Workers != 7 {
		t.Errorf("expected env override 7, got %d", cfg.Pool.Workers)
	}
	if cfg.Name != "from-env" {
		t.Errorf("expected name from env, got %q", cfg.Name)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("RX_TESTENVFILE_POOL_DISABLED=true\n"), 0644); err != nil {
		t.Fatalf("failed to write env: %v", err)
	}
	defer os.Unsetenv("RX_TESTENVFILE_POOL_DISABLED")

	var cfg testConfig
	err := LoadConfig("svc", &cfg,
		WithConfigFile(filepath.Join(dir, "missing.yml")),
		WithEnvFile(envPath),
		WithEnvPrefix("RX_TESTENVFILE"),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.Pool.Disabled {
		t.Error("expected pool.disabled from .env file")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/my-svc/config.yml": true,
		"./.env":                  true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("my-svc", LoaderConfig{})
	if files.ConfigFile != "./cmd/my-svc/config.yml" {
		t.Errorf("expected config file at ./cmd/my-svc/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected env file ./.env, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPathsWin(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{files: map[string]bool{"./config.yml": true}}}
	files := resolver.ResolveFiles("svc", LoaderConfig{ConfigFile: "/etc/rx.yml", EnvFile: "/etc/rx.env"})
	if files.ConfigFile != "/etc/rx.yml" || files.EnvFile != "/etc/rx.env" {
		t.Errorf("expected explicit paths, got %+v", files)
	}
}

func TestStructKeys(t *testing.T) {
	keys := structKeys(reflect.TypeOf(&testConfig{}), "")
	want := map[string]bool{
		"name":              false,
		"environment":       false,
		"logging.level":     false,
		"pool.workers":      false,
		"pool.max_wait":     false,
		"logging.no_color":  false,
		"logging.timestamp": false,
	}
	for _, k := range keys {
		if _, ok := want[k]; ok {
			want[k] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("expected key %q in %v", k, keys)
		}
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("APP")(&lc)
	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
	if lc.EnvPrefix != "APP" {
		t.Errorf("expected prefix APP, got %q", lc.EnvPrefix)
	}
}
