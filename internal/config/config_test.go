package config

import (
	"strings"
	"testing"
	"time"
)

func envMap(kv map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := kv[key]
		return v, ok
	}
}

func TestLoad_ReadsProcessEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("LIST_MAX_LIMIT", "70")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/test" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.List.MaxLimit != 70 {
		t.Errorf("List.MaxLimit = %d, want 70", cfg.List.MaxLimit)
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{"DATABASE_URL": "postgres://localhost/test"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 3000)
	}
	if cfg.Upload.MaxFileSize != 5<<20 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 5<<20)
	}
	if cfg.Upload.FieldName != "csvFile" {
		t.Errorf("Upload.FieldName = %q, want %q", cfg.Upload.FieldName, "csvFile")
	}
	if cfg.Upload.Timeout != 2*time.Minute {
		t.Errorf("Upload.Timeout = %v, want 2m", cfg.Upload.Timeout)
	}
	if cfg.List.DefaultLimit != 10 || cfg.List.MaxLimit != 50 {
		t.Errorf("List = %+v, want 10/50", cfg.List)
	}
	if !cfg.Database.AutoSchema {
		t.Error("Database.AutoSchema should default to true")
	}
	if got := cfg.Security.CORSAllowedOrigins; len(got) != 1 || got[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v, want [*]", got)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"DATABASE_URL":          "postgres://localhost/test",
		"SERVER_PORT":           "9090",
		"UPLOAD_MAX_CONCURRENT": "10",
		"UPLOAD_MAX_WAIT_TIME":  "5s",
		"LIST_MAX_LIMIT":        "100",
		"LOG_LEVEL":             "debug",
		"TRUSTED_PROXIES":       " 10.0.0.0/8 , ,192.168.0.0/16",
		"DB_AUTO_SCHEMA":        "false",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Upload.MaxConcurrent != 10 {
		t.Errorf("Upload.MaxConcurrent = %d, want 10", cfg.Upload.MaxConcurrent)
	}
	if cfg.Upload.MaxWaitTime != 5*time.Second {
		t.Errorf("Upload.MaxWaitTime = %v, want 5s", cfg.Upload.MaxWaitTime)
	}
	if cfg.List.MaxLimit != 100 {
		t.Errorf("List.MaxLimit = %d, want 100", cfg.List.MaxLimit)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if got := cfg.Security.TrustedProxies; len(got) != 2 || got[0] != "10.0.0.0/8" || got[1] != "192.168.0.0/16" {
		t.Errorf("TrustedProxies = %v", got)
	}
	if cfg.Database.AutoSchema {
		t.Error("Database.AutoSchema should be false")
	}
}

func TestLoadFrom_AltEnvVars(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"DB_URL": "postgres://localhost/alttest",
		"PORT":   "4000",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/alttest" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
}

func TestLoadFrom_PrimaryWinsOverAlt(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"DATABASE_URL": "postgres://primary",
		"DB_URL":       "postgres://alt",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Database.URL != "postgres://primary" {
		t.Errorf("Database.URL = %q, want primary", cfg.Database.URL)
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantSub string
	}{
		{
			name:    "missing required",
			env:     map[string]string{},
			wantSub: "DATABASE_URL",
		},
		{
			name:    "bad integer",
			env:     map[string]string{"DATABASE_URL": "x", "SERVER_PORT": "abc"},
			wantSub: "SERVER_PORT",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"DATABASE_URL": "x", "UPLOAD_TIMEOUT": "soon"},
			wantSub: "invalid duration",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"DATABASE_URL": "x", "SERVER_PORT": "70000"},
			wantSub: "SERVER_PORT (70000)",
		},
		{
			name:    "list default above max",
			env:     map[string]string{"DATABASE_URL": "x", "LIST_DEFAULT_LIMIT": "80"},
			wantSub: "LIST_MAX_LIMIT",
		},
		{
			name:    "bad log format",
			env:     map[string]string{"DATABASE_URL": "x", "LOG_FORMAT": "xml"},
			wantSub: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(envMap(tt.env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Upload.MaxConcurrent = 0
	cfg.Server.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"DATABASE_URL", "UPLOAD_MAX_CONCURRENT", "SERVER_PORT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Database.URL != "" {
		t.Errorf("Defaults should not set DATABASE_URL, got %q", cfg.Database.URL)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}

	cfg.Database.URL = "postgres://x"
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults plus URL should validate: %v", err)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 3000, "0.0.0.0:3000"},
		{"", 8080, ":8080"},
		{"::1", 3000, "[::1]:3000"},
	}
	for _, tt := range tests {
		c := ServerConfig{Host: tt.host, Port: tt.port}
		if got := c.Addr(); got != tt.want {
			t.Errorf("Addr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestString_MasksDatabaseURL(t *testing.T) {
	cfg := Defaults()
	cfg.Database.URL = "postgres://user:secret@db/feedback"
	s := cfg.String()
	if strings.Contains(s, "secret") {
		t.Errorf("String() leaks the database URL: %s", s)
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() should mask the URL: %s", s)
	}
}
