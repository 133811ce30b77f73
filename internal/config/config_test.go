package config

import (
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("jwt ttl = %v, want 24h", cfg.JWTTTL)
	}
	if cfg.ResetTokenTTL != time.Hour {
		t.Errorf("reset token ttl = %v, want 1h", cfg.ResetTokenTTL)
	}
}

func TestNewConfigReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL_HOURS", "12")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Port)
	}
	if cfg.JWTTTL != 12*time.Hour {
		t.Errorf("jwt ttl = %v, want 12h", cfg.JWTTTL)
	}
}

func TestNewConfigRejectsBadTTL(t *testing.T) {
	t.Setenv("JWT_TTL_HOURS", "soon")
	if _, err := NewConfig(); err == nil {
		t.Error("NewConfig accepted a non-numeric JWT_TTL_HOURS")
	}
}
