package config

import "testing"

func TestLoadPlatformIdentity(t *testing.T) {
	t.Setenv("PLATFORM_LEGAL_NAME", "MishMeshMosh Platform LLC")
	t.Setenv("PLATFORM_INN", "7701234567")
	t.Setenv("PLATFORM_ADDRESS", "10 Harbor Way, Springfield")

	cfg := Load()

	if cfg.PlatformLegalName != "MishMeshMosh Platform LLC" {
		t.Errorf("PlatformLegalName = %q", cfg.PlatformLegalName)
	}
	if cfg.PlatformINN != "7701234567" {
		t.Errorf("PlatformINN = %q", cfg.PlatformINN)
	}
	// Every identity field read here lands in the platform block of deed
	// documents; an unread env var would serialize as an empty string.
	if cfg.PlatformAddress != "10 Harbor Way, Springfield" {
		t.Errorf("PlatformAddress = %q", cfg.PlatformAddress)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.WeedFeeBPS != 300 {
		t.Errorf("WeedFeeBPS default = %d, want 300", cfg.WeedFeeBPS)
	}
	if cfg.JWTExpiration.Hours() != 24 {
		t.Errorf("JWTExpiration default = %v, want 24h", cfg.JWTExpiration)
	}
}
