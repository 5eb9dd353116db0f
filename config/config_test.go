package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "negative parallelism",
			mutate: func(cfg *Config) {
				cfg.Parallelism = -1
			},
			wantErr: "parallelism",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "unsupported scheme",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "ftp://example.com"
			},
			wantErr: "scheme",
		},
		{
			name: "relative list path",
			mutate: func(cfg *Config) {
				cfg.ListPath = "api/product/list"
			},
			wantErr: "list path",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "default page size not offered",
			mutate: func(cfg *Config) {
				cfg.DefaultPageSize = 25
			},
			wantErr: "default page size",
		},
		{
			name: "zero page size",
			mutate: func(cfg *Config) {
				cfg.PageSizes = []int{0, 10}
			},
			wantErr: "page sizes",
		},
		{
			name: "negative cache size",
			mutate: func(cfg *Config) {
				cfg.CacheSize = -5
			},
			wantErr: "cache size",
		},
		{
			name: "unknown output format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
		{
			name: "unknown log encoding",
			mutate: func(cfg *Config) {
				cfg.LogEncoding = "logfmt"
			},
			wantErr: "log encoding",
		},
		{
			name: "zero max pages",
			mutate: func(cfg *Config) {
				cfg.MaxPages = 0
			},
			wantErr: "max pages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestEndpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "https://shop.example.com/store/"

	endpoint, err := cfg.Endpoint()
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	if got := endpoint.String(); got != "https://shop.example.com/api/product/list" {
		t.Fatalf("endpoint = %s", got)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CATALOG_BASE_URL", "https://api.example.com")
	t.Setenv("CATALOG_PAGE_SIZES", "12, 24,48")
	t.Setenv("CATALOG_PAGE_SIZE", "24")
	t.Setenv("CATALOG_TIMEOUT", "3s")
	t.Setenv("CATALOG_CACHE_SIZE", "32")
	t.Setenv("CATALOG_VERBOSE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://api.example.com" {
		t.Errorf("base url = %s", cfg.BaseURL)
	}
	if len(cfg.PageSizes) != 3 || cfg.PageSizes[2] != 48 {
		t.Errorf("page sizes = %v", cfg.PageSizes)
	}
	if cfg.DefaultPageSize != 24 || cfg.CacheSize != 32 || !cfg.Verbose {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config should validate: %v", err)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CATALOG_TEST_DOTENV_LIST_PATH=/v2/products\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("CATALOG_TEST_DOTENV_LIST_PATH") })

	if _, err := Load(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, ok := EnvString("CATALOG_TEST_DOTENV_LIST_PATH"); !ok || got != "/v2/products" {
		t.Fatalf("dotenv value = %q (set=%v)", got, ok)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("CATALOG_PARALLEL", "many")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "CATALOG_PARALLEL") {
		t.Fatalf("expected CATALOG_PARALLEL error, got %v", err)
	}
}
