package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHECKUP_AUTH_JWTSECRET", "s3cret")
	t.Setenv("CHECKUP_SERVER_ADDR", "127.0.0.1:9090")
	t.Setenv("CHECKUP_AUTH_ADMIN_EMPLOYEENO", "A001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("expected env addr, got %s", cfg.Server.Addr)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "data/checkup.db" {
		t.Errorf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Auth.TokenTTLMinutes != 60 {
		t.Errorf("expected ttl 60, got %d", cfg.Auth.TokenTTLMinutes)
	}
	if cfg.Auth.Admin.EmployeeNo != "A001" || cfg.Auth.Admin.Name != "Administrator" {
		t.Errorf("unexpected admin config: %+v", cfg.Auth.Admin)
	}
	if !cfg.Metrics.Enabled {
		t.Error("expected metrics enabled by default")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	env := "CHECKUP_AUTH_JWTSECRET=from-dotenv\nCHECKUP_STORAGE_BUCKET='rosters'\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("CHECKUP_AUTH_JWTSECRET")
		os.Unsetenv("CHECKUP_STORAGE_BUCKET")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-dotenv" {
		t.Errorf("expected secret from .env, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Storage.Bucket != "rosters" {
		t.Errorf("expected bucket from .env, got %q", cfg.Storage.Bucket)
	}
}

func TestLoadValidation(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("CHECKUP_AUTH_JWTSECRET", "")
	if _, err := Load(); err == nil {
		t.Error("expected error without jwt secret")
	}

	t.Setenv("CHECKUP_AUTH_JWTSECRET", "s3cret")
	t.Setenv("CHECKUP_DATABASE_DRIVER", "postgres")
	if _, err := Load(); err == nil {
		t.Error("expected error for postgres without url")
	}

	t.Setenv("CHECKUP_DATABASE_DRIVER", "mysql")
	if _, err := Load(); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
