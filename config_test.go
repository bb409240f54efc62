package blocks

import (
	"errors"
	"testing"

	berrors "github.com/wippyai/blocks/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.PanicPolicy != PanicPropagate {
		t.Errorf("PanicPolicy = %v, want propagate", cfg.PanicPolicy)
	}
	if cfg.GuestMemoryBytes() != 65536 {
		t.Errorf("GuestMemoryBytes = %d", cfg.GuestMemoryBytes())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown policy", func(c *Config) { c.PanicPolicy = 7 }},
		{"small chunk", func(c *Config) { c.ArenaChunkSize = 1024 }},
		{"odd chunk", func(c *Config) { c.ArenaChunkSize = 5000 }},
		{"zero pages", func(c *Config) { c.GuestMemoryPages = 0 }},
		{"limit below initial", func(c *Config) { c.GuestMemoryPages = 4; c.GuestMemoryLimitPages = 2 }},
		{"limit too large", func(c *Config) { c.GuestMemoryLimitPages = 70000 }},
	}

	want := &berrors.Error{Phase: berrors.PhaseConfig, Kind: berrors.KindInvalidInput}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, want) {
				t.Errorf("error %v is not a config error", err)
			}
		})
	}
}

func TestParsePanicPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    PanicPolicy
		wantErr bool
	}{
		{"", PanicPropagate, false},
		{"propagate", PanicPropagate, false},
		{" Abort ", PanicAbort, false},
		{"ignore", PanicPropagate, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePanicPolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("BLOCKS_PANIC", "abort")
	t.Setenv("BLOCKS_DEBUG", "true")
	t.Setenv("BLOCKS_ARENA_CHUNK", "131072")
	t.Setenv("BLOCKS_GUEST_PAGES", "2")
	t.Setenv("BLOCKS_GUEST_MAX_PAGES", "8")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.PanicPolicy != PanicAbort {
		t.Errorf("PanicPolicy = %v", cfg.PanicPolicy)
	}
	if !cfg.Debug {
		t.Error("Debug should be set")
	}
	if cfg.ArenaChunkSize != 131072 {
		t.Errorf("ArenaChunkSize = %d", cfg.ArenaChunkSize)
	}
	if cfg.GuestMemoryPages != 2 || cfg.GuestMemoryLimitPages != 8 {
		t.Errorf("guest pages = %d/%d", cfg.GuestMemoryPages, cfg.GuestMemoryLimitPages)
	}
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	t.Setenv("BLOCKS_PANIC", "explode")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error for unknown panic policy")
	}
}

func TestConfigFromEnv_Reloads(t *testing.T) {
	t.Setenv("BLOCKS_GUEST_MAX_PAGES", "8")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GuestMemoryLimitPages != 8 {
		t.Fatalf("GuestMemoryLimitPages = %d, want 8", cfg.GuestMemoryLimitPages)
	}

	t.Setenv("BLOCKS_GUEST_MAX_PAGES", "16")
	cfg, err = ConfigFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GuestMemoryLimitPages != 16 {
		t.Errorf("GuestMemoryLimitPages = %d, want 16", cfg.GuestMemoryLimitPages)
	}

	t.Setenv("BLOCKS_PANIC", "explode")
	if _, err := ConfigFromEnv(); err == nil {
		t.Error("changed BLOCKS_PANIC should be seen")
	}
}
