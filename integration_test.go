package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"todo-manager/backend/internal/auth"
	"todo-manager/backend/internal/config"
)

func TestApplicationStartup(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", ":memory:")

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	pool, err := openDatabase(cfg)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer pool.Close()

	if err := pool.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := pool.Health(); err != nil {
		t.Fatalf("Database should be healthy: %v", err)
	}
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "integration-secret")
	t.Setenv("JWT_ISSUER", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--user", "alice", "--ttl", "1h"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("token command failed: %v", err)
	}

	userID, err := auth.NewTokenVerifier("integration-secret", "").Verify(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("minted token should verify: %v", err)
	}
	if userID != "alice" {
		t.Errorf("Expected subject alice, got %s", userID)
	}
}

func TestTokenCommand_RequiresUser(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"token"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("Expected error without --user")
	}
}

func TestConnectRedis_Unreachable(t *testing.T) {
	t.Setenv("REDIS_HOST", "127.0.0.1")
	t.Setenv("REDIS_PORT", "1")
	t.Setenv("REDIS_DIAL_TIMEOUT", "200ms")
	t.Setenv("REDIS_MAX_RETRIES", "0")

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	client, err := connectRedis(context.Background(), cfg)
	if client != nil {
		defer client.Close()
	}
	if err == nil {
		t.Fatal("Expected error for unreachable redis")
	}
}
