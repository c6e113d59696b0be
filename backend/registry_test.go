package backend_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/tesslib/tess/backend"
	_ "github.com/tesslib/tess/backend/bls12381"
	_ "github.com/tesslib/tess/backend/bn254"
)

func TestRegisteredBackends(t *testing.T) {
	c := qt.New(t)
	got := backend.Registered()
	c.Assert(got, qt.DeepEquals, []backend.Config{
		{Backend: backend.Gnark, Curve: backend.BLS12381},
		{Backend: backend.Gnark, Curve: backend.BN254},
	})
}

func TestNewResolvesCompiledIn(t *testing.T) {
	c := qt.New(t)
	for _, curve := range []backend.Curve{backend.BN254, backend.BLS12381} {
		b, err := backend.New(backend.Config{Backend: backend.Gnark, Curve: curve})
		c.Assert(err, qt.IsNil)
		c.Assert(b.ID(), qt.Equals, backend.Gnark)
		c.Assert(b.Curve(), qt.Equals, curve)
	}
}

func TestNewRejectsUnregistered(t *testing.T) {
	c := qt.New(t)
	_, err := backend.New(backend.Config{Backend: backend.Blst, Curve: backend.BLS12381})
	c.Assert(err, qt.ErrorIs, backend.ErrUnsupportedBackend)
	_, err = backend.New(backend.Config{Backend: "openssl", Curve: backend.BN254})
	c.Assert(err, qt.ErrorIs, backend.ErrUnsupportedBackend)
}
