package blocks

import (
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/wippyai/blocks/errors"
)

// PanicPolicy selects what a thunk does when the wrapped closure panics.
type PanicPolicy int

const (
	// PanicPropagate lets the panic unwind through the foreign frame.
	PanicPropagate PanicPolicy = iota
	// PanicAbort logs the recovered value at fatal level and exits the process.
	PanicAbort
)

func (p PanicPolicy) String() string {
	switch p {
	case PanicPropagate:
		return "propagate"
	case PanicAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// ParsePanicPolicy maps "propagate" or "abort" to a PanicPolicy.
func ParsePanicPolicy(s string) (PanicPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "propagate":
		return PanicPropagate, nil
	case "abort":
		return PanicAbort, nil
	}
	return PanicPropagate, errors.InvalidConfig("BLOCKS_PANIC", s, "expected propagate or abort")
}

const (
	// DefaultArenaChunkSize is the size of one off-heap slab mapping.
	DefaultArenaChunkSize = 64 << 10
	// DefaultGuestMemoryPages is the initial wasm32 linear memory size in 64 KiB pages.
	DefaultGuestMemoryPages = 1
	// DefaultGuestMemoryLimitPages caps guest memory growth (16 MiB).
	DefaultGuestMemoryLimitPages = 256

	wasmPageSize = 64 << 10
)

// Config holds settings shared by the emulated and wasm32 runtimes.
type Config struct {
	PanicPolicy           PanicPolicy
	Debug                 bool
	ArenaChunkSize        int
	GuestMemoryPages      uint32
	GuestMemoryLimitPages uint32
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		PanicPolicy:           PanicPropagate,
		ArenaChunkSize:        DefaultArenaChunkSize,
		GuestMemoryPages:      DefaultGuestMemoryPages,
		GuestMemoryLimitPages: DefaultGuestMemoryLimitPages,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies BLOCKS_* environment
// variables. The environment is re-read on every call. The result is
// validated.
func ConfigFromEnv() (*Config, error) {
	env.Load()
	cfg := DefaultConfig()

	policy, err := ParsePanicPolicy(env.Str("BLOCKS_PANIC", cfg.PanicPolicy.String()))
	if err != nil {
		return nil, err
	}
	cfg.PanicPolicy = policy
	cfg.Debug = env.Bool("BLOCKS_DEBUG")
	cfg.ArenaChunkSize = env.Int("BLOCKS_ARENA_CHUNK", cfg.ArenaChunkSize)
	cfg.GuestMemoryPages = uint32(env.Int("BLOCKS_GUEST_PAGES", int(cfg.GuestMemoryPages)))
	cfg.GuestMemoryLimitPages = uint32(env.Int("BLOCKS_GUEST_MAX_PAGES", int(cfg.GuestMemoryLimitPages)))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all settings are usable.
func (c *Config) Validate() error {
	switch c.PanicPolicy {
	case PanicPropagate, PanicAbort:
	default:
		return errors.InvalidConfig("PanicPolicy", int(c.PanicPolicy), "unknown policy")
	}
	if c.ArenaChunkSize < 4096 || c.ArenaChunkSize&(c.ArenaChunkSize-1) != 0 {
		return errors.InvalidConfig("ArenaChunkSize", c.ArenaChunkSize, "must be a power of two of at least 4096")
	}
	if c.GuestMemoryPages == 0 {
		return errors.InvalidConfig("GuestMemoryPages", c.GuestMemoryPages, "must be positive")
	}
	if c.GuestMemoryLimitPages < c.GuestMemoryPages {
		return errors.InvalidConfig("GuestMemoryLimitPages", c.GuestMemoryLimitPages, "below initial pages")
	}
	if c.GuestMemoryLimitPages > 65536 {
		return errors.InvalidConfig("GuestMemoryLimitPages", c.GuestMemoryLimitPages, "exceeds the wasm32 address space")
	}
	return nil
}

// GuestMemoryBytes returns the initial guest memory size in bytes.
func (c *Config) GuestMemoryBytes() uint64 {
	return uint64(c.GuestMemoryPages) * wasmPageSize
}
