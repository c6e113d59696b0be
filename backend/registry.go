package backend

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// ID names a backend implementation.
type ID string

// Curve names a pairing-friendly curve.
type Curve string

const (
	// Gnark is the consensys/gnark-crypto implementation.
	Gnark ID = "gnark"
	// Blst is the supranational/blst implementation. It is part of the
	// configuration vocabulary but no blst instantiation is compiled in;
	// selecting it is a configuration error, not a runtime panic.
	Blst ID = "blst"

	BN254    Curve = "bn254"
	BLS12381 Curve = "bls12-381"
)

// Config selects a (backend, curve) pair.
type Config struct {
	Backend ID    `json:"backend"`
	Curve   Curve `json:"curve"`
}

// Validate checks the pair against the registry of compiled-in
// capabilities. It is deterministic and runs before any cryptography.
func (c Config) Validate() error {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if _, ok := registry.ctors[c]; !ok {
		return errors.Wrapf(ErrUnsupportedBackend,
			"backend %q with curve %q is not compiled in (available: %v)",
			c.Backend, c.Curve, registeredLocked())
	}
	return nil
}

var registry = struct {
	mu    sync.RWMutex
	ctors map[Config]func() Backend
}{ctors: make(map[Config]func() Backend)}

// Register makes a backend constructor available to New. Curve packages
// call it from init; registering the same pair twice panics, mirroring
// database/sql driver registration.
func Register(id ID, curve Curve, ctor func() Backend) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	cfg := Config{Backend: id, Curve: curve}
	if _, dup := registry.ctors[cfg]; dup {
		panic("backend: duplicate registration for " + string(id) + "/" + string(curve))
	}
	registry.ctors[cfg] = ctor
}

// New resolves a configuration to a backend instance.
func New(cfg Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registry.mu.RLock()
	ctor := registry.ctors[cfg]
	registry.mu.RUnlock()
	return ctor(), nil
}

// Registered lists the compiled-in (backend, curve) pairs.
func Registered() []Config {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registeredLocked()
}

func registeredLocked() []Config {
	out := make([]Config, 0, len(registry.ctors))
	for cfg := range registry.ctors {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Backend != out[j].Backend {
			return out[i].Backend < out[j].Backend
		}
		return out[i].Curve < out[j].Curve
	})
	return out
}
