package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr() != "0.0.0.0:50051" {
		t.Fatalf("GRPCAddr = %q", cfg.GRPCAddr())
	}
	if cfg.SeatsPerRegistration != 1 {
		t.Fatalf("SeatsPerRegistration = %d", cfg.SeatsPerRegistration)
	}
	if cfg.MinSeatDuration != 15*time.Minute {
		t.Fatalf("MinSeatDuration = %v", cfg.MinSeatDuration)
	}
	if cfg.CacheBackend != "local" {
		t.Fatalf("CacheBackend = %q", cfg.CacheBackend)
	}
	if cfg.AMQPURL != "" {
		t.Fatalf("AMQPURL = %q, want disabled by default", cfg.AMQPURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ROOMBOOK_GRPC_ADDR", "127.0.0.1:6000")
	t.Setenv("ROOMBOOK_FACILITY_TIMEZONE", "Asia/Ho_Chi_Minh")
	t.Setenv("ROOMBOOK_BOOKING_SEATS_PER_REGISTRATION", "2")
	t.Setenv("ROOMBOOK_BOOKING_MIN_SEAT_MINUTES", "30")
	t.Setenv("ROOMBOOK_CACHE_BACKEND", "Redis")
	t.Setenv("ROOMBOOK_CACHE_TTL", "1m")
	t.Setenv("ROOMBOOK_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr() != "127.0.0.1:6000" {
		t.Fatalf("GRPCAddr = %q", cfg.GRPCAddr())
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Asia/Ho_Chi_Minh" {
		t.Fatalf("Location = %v, %v", loc, err)
	}
	if cfg.SeatsPerRegistration != 2 || cfg.MinSeatDuration != 30*time.Minute {
		t.Fatalf("booking = %d / %v", cfg.SeatsPerRegistration, cfg.MinSeatDuration)
	}
	if cfg.CacheBackend != "redis" || cfg.CacheTTL != time.Minute {
		t.Fatalf("cache = %q / %v", cfg.CacheBackend, cfg.CacheTTL)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"bad duration":   {"ROOMBOOK_SHUTDOWN_TIMEOUT", "soon"},
		"bad timezone":   {"ROOMBOOK_FACILITY_TIMEZONE", "Mars/Olympus"},
		"bad backend":    {"ROOMBOOK_CACHE_BACKEND", "memcached"},
		"zero seat cost": {"ROOMBOOK_BOOKING_SEATS_PER_REGISTRATION", "0"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(env[0], env[1])
			if _, err := Load(); err == nil {
				t.Fatalf("Load accepted %s=%s", env[0], env[1])
			}
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory for the duration of the test and restores it after.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore Chdir: %v", err)
		}
	})
}
