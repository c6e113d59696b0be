package threshold

import (
	"github.com/tesslib/tess/backend"
)

// Parameters fixes one protocol instance. A value is immutable once
// validated; every operation that takes Parameters calls Validate first,
// so misconfiguration always surfaces as a configuration error before
// any group arithmetic runs.
type Parameters struct {
	// Parties is the number of participants. It must be a power of two of
	// at least 2 so the evaluation domain is radix-2.
	Parties int
	// Threshold t: any t+1 distinct partial decryptions recover the
	// payload, t or fewer reveal nothing. 1 <= t <= Parties.
	Threshold int
	// ChunkSize is the largest payload, in bytes, a single ciphertext
	// carries.
	ChunkSize int
	// Backend selects the pairing implementation and curve.
	Backend backend.Config
	// SRSSecret, when set, seeds the reference-string trapdoor so that
	// independent parties derive an identical SRS. When empty the
	// trapdoor is sampled from the keygen randomness source.
	SRSSecret []byte
}

// Validate checks the parameter set. All failures are marked
// ErrInvalidConfig or ErrUnsupportedBackend.
func (p Parameters) Validate() error {
	if p.Parties < 2 {
		return backend.ConfigErrorf("parties must be at least 2, got %d", p.Parties)
	}
	if p.Parties&(p.Parties-1) != 0 {
		return backend.ConfigErrorf("parties must be a power of two, got %d", p.Parties)
	}
	if p.Threshold < 1 || p.Threshold > p.Parties {
		return backend.ConfigErrorf("threshold must be in [1, %d], got %d", p.Parties, p.Threshold)
	}
	if p.ChunkSize < 1 {
		return backend.ConfigErrorf("chunk size must be at least 1, got %d", p.ChunkSize)
	}
	return p.Backend.Validate()
}
