package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected listen addr :8080, got %q", cfg.ListenAddr)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "inkwell.db" {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled without url")
	}
	if len(cfg.CrossPost.Platforms) != 3 {
		t.Fatalf("expected 3 default platforms, got %v", cfg.CrossPost.Platforms)
	}
	if cfg.CrossPost.Timeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %s", cfg.CrossPost.Timeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", "data/blog.db")
	t.Setenv("SITE_BASE_URL", "https://blog.example.com/")
	t.Setenv("DATABASE_REPLICAS", "replica-a.db, replica-b.db")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.ListenAddr)
	}
	if cfg.Database.Path != "data/blog.db" {
		t.Fatalf("expected env database path, got %q", cfg.Database.Path)
	}
	if cfg.Site.BaseURL != "https://blog.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Site.BaseURL)
	}
	if len(cfg.Database.Replicas) != 2 || cfg.Database.Replicas[1] != "replica-b.db" {
		t.Fatalf("unexpected replicas %v", cfg.Database.Replicas)
	}
	if !cfg.Redis.Enabled() {
		t.Fatalf("redis should be enabled")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inkwell.yaml")
	content := "site_name: 测试博客\ncrosspost_platforms:\n  - facebook\n  - linkedin\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Site.Name != "测试博客" {
		t.Fatalf("expected site name from file, got %q", cfg.Site.Name)
	}
	if len(cfg.CrossPost.Platforms) != 2 || cfg.CrossPost.Platforms[1] != "linkedin" {
		t.Fatalf("unexpected platforms %v", cfg.CrossPost.Platforms)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "ok", mutate: func(*AppConfig) {}},
		{name: "unknown driver", mutate: func(c *AppConfig) { c.Database.Driver = "oracle" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *AppConfig) { c.Database.Driver = "postgres" }, wantErr: true},
		{name: "empty secret", mutate: func(c *AppConfig) { c.SessionSecret = "" }, wantErr: true},
		{name: "unknown gin mode", mutate: func(c *AppConfig) { c.GinMode = "verbose" }, wantErr: true},
		{name: "crosspost without brokers", mutate: func(c *AppConfig) { c.CrossPost.Enabled = true }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{
				SessionSecret: "secret",
				Database:      DatabaseConfig{Driver: "sqlite", Path: "x.db"},
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
