package config

import (
	"os"
	"testing"
	"time"

	"sitewatch/internal/model"
)

func TestGetEnv(t *testing.T) {
	_ = os.Setenv("TEST_KEY", "test_value")
	defer func() { _ = os.Unsetenv("TEST_KEY") }()

	val := getEnv("TEST_KEY", "fallback")
	if val != "test_value" {
		t.Errorf("Expected test_value, got %s", val)
	}

	val = getEnv("NON_EXISTENT", "fallback")
	if val != "fallback" {
		t.Errorf("Expected fallback, got %s", val)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		key      string
		val      string
		fallback bool
		expected bool
	}{
		{"TEST_BOOL_TRUE", "true", false, true},
		{"TEST_BOOL_1", "1", false, true},
		{"TEST_BOOL_FALSE", "false", true, false},
		{"TEST_BOOL_0", "0", true, false},
		{"NON_EXISTENT", "", true, true},
		{"NON_EXISTENT", "", false, false},
	}

	for _, tt := range tests {
		if tt.val != "" {
			_ = os.Setenv(tt.key, tt.val)
		}
		res := getEnvBool(tt.key, tt.fallback)
		if res != tt.expected {
			t.Errorf("For %s=%s (fallback %v), expected %v, got %v", tt.key, tt.val, tt.fallback, tt.expected, res)
		}
		_ = os.Unsetenv(tt.key)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "90s")
	if d := getEnvDuration("TEST_DUR", time.Second); d != 90*time.Second {
		t.Errorf("expected 90s, got %v", d)
	}
	t.Setenv("TEST_DUR", "15")
	if d := getEnvDuration("TEST_DUR", time.Second); d != 15*time.Second {
		t.Errorf("expected 15s, got %v", d)
	}
	t.Setenv("TEST_DUR", "soon")
	if d := getEnvDuration("TEST_DUR", time.Second); d != time.Second {
		t.Errorf("expected fallback, got %v", d)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Port != "5000" { // Default
		t.Errorf("Expected default port 5000, got %s", cfg.Port)
	}
	if cfg.Policy != model.PolicyAppend {
		t.Errorf("Expected append policy by default, got %s", cfg.Policy)
	}
	if cfg.Backend != BackendRedis {
		t.Errorf("Expected redis backend by default, got %s", cfg.Backend)
	}
	if len(cfg.Resolvers()) != 2 {
		t.Errorf("Expected two default resolvers, got %v", cfg.Resolvers())
	}
}

func TestLoadConfig_ClampsTimeouts(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "30s")
	t.Setenv("TLS_TIMEOUT", "2s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTP timeout should clamp to 10s, got %v", cfg.HTTPTimeout)
	}
	if cfg.TLSTimeout != 2*time.Second {
		t.Errorf("TLS timeout should stay 2s, got %v", cfg.TLSTimeout)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("HISTORY_POLICY", "merge")
	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for unknown policy")
	}

	t.Setenv("HISTORY_POLICY", "upsert")
	t.Setenv("STORE_BACKEND", "sheets")
	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for unknown backend")
	}

	t.Setenv("STORE_BACKEND", "SQLite")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Backend != BackendSQLite || cfg.Policy != model.PolicyUpsert {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestResolvers_Empty(t *testing.T) {
	cfg := &Config{DNSResolvers: " , "}
	if r := cfg.Resolvers(); len(r) != 0 {
		t.Errorf("expected no resolvers, got %v", r)
	}
}
