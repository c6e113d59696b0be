package bn254

import (
	"crypto/rand"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/tesslib/tess/backend"
)

func testBackend(c *qt.C) backend.Backend {
	b, err := backend.New(backend.Config{Backend: backend.Gnark, Curve: backend.BN254})
	c.Assert(err, qt.IsNil)
	return b
}

func TestFieldArithmetic(t *testing.T) {
	c := qt.New(t)
	f := testBackend(c).Field()

	a, err := f.Random(rand.Reader)
	c.Assert(err, qt.IsNil)
	inv, err := a.Inverse()
	c.Assert(err, qt.IsNil)
	c.Assert(a.Mul(inv).Equal(f.One()), qt.IsTrue)
	c.Assert(a.Sub(a).IsZero(), qt.IsTrue)
	c.Assert(a.Add(a.Neg()).IsZero(), qt.IsTrue)

	_, err = f.Zero().Inverse()
	c.Assert(err, qt.ErrorIs, backend.ErrZeroInversion)
}

func TestBatchInvert(t *testing.T) {
	c := qt.New(t)
	f := testBackend(c).Field()

	s := []backend.Scalar{f.FromUint64(2), f.FromUint64(3), f.FromUint64(7)}
	orig := []backend.Scalar{f.FromUint64(2), f.FromUint64(3), f.FromUint64(7)}
	c.Assert(f.BatchInvert(s), qt.IsNil)
	for i := range s {
		c.Assert(s[i].Mul(orig[i]).Equal(f.One()), qt.IsTrue)
	}

	withZero := []backend.Scalar{f.One(), f.Zero()}
	c.Assert(f.BatchInvert(withZero), qt.ErrorIs, backend.ErrZeroInversion)
	// input left untouched on failure
	c.Assert(withZero[0].Equal(f.One()), qt.IsTrue)
}

func TestRootOfUnity(t *testing.T) {
	c := qt.New(t)
	f := testBackend(c).Field()

	omega, err := f.RootOfUnity(8)
	c.Assert(err, qt.IsNil)
	acc := f.One()
	for i := 0; i < 8; i++ {
		c.Assert(acc.Equal(f.One()) && i > 0, qt.IsFalse, qt.Commentf("order divides %d", i))
		acc = acc.Mul(omega)
	}
	c.Assert(acc.Equal(f.One()), qt.IsTrue)

	_, err = f.RootOfUnity(6)
	c.Assert(err, qt.ErrorIs, backend.ErrEmptyDomain)
	_, err = f.RootOfUnity(1 << 30)
	c.Assert(err, qt.ErrorIs, backend.ErrEmptyDomain)
}

func TestGroupOps(t *testing.T) {
	c := qt.New(t)
	b := testBackend(c)
	f := b.Field()
	g1 := b.G1()

	g := g1.Generator()
	c.Assert(g.Sub(g).IsIdentity(), qt.IsTrue)
	c.Assert(g.Add(g.Neg()).IsIdentity(), qt.IsTrue)

	two := f.FromUint64(2)
	c.Assert(g.ScalarMul(two).Equal(g.Add(g)), qt.IsTrue)
}

func TestMSMAgainstNaive(t *testing.T) {
	c := qt.New(t)
	b := testBackend(c)
	f := b.Field()
	g1 := b.G1()
	g := g1.Generator()

	scalars := make([]backend.Scalar, 5)
	points := make([]backend.Point, 5)
	naive := g1.Identity()
	for i := range scalars {
		s, err := f.Random(rand.Reader)
		c.Assert(err, qt.IsNil)
		scalars[i] = s
		points[i] = g.ScalarMul(f.FromUint64(uint64(i + 1)))
		naive = naive.Add(points[i].ScalarMul(s))
	}
	got, err := g1.MSM(points, scalars)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Equal(naive), qt.IsTrue)

	empty, err := g1.MSM(nil, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(empty.IsIdentity(), qt.IsTrue)
}

func TestBatchScalarMul(t *testing.T) {
	c := qt.New(t)
	b := testBackend(c)
	f := b.Field()
	g1 := b.G1()
	g := g1.Generator()

	scalars := []backend.Scalar{f.FromUint64(1), f.FromUint64(5), f.FromUint64(9)}
	pts := g1.BatchScalarMul(g, scalars)
	c.Assert(pts, qt.HasLen, 3)
	for i, s := range scalars {
		c.Assert(pts[i].Equal(g.ScalarMul(s)), qt.IsTrue)
	}
}

func TestPairingBilinearity(t *testing.T) {
	c := qt.New(t)
	b := testBackend(c)
	f := b.Field()

	a, err := f.Random(rand.Reader)
	c.Assert(err, qt.IsNil)
	g := b.G1().Generator()
	h := b.G2().Generator()

	// e(a*g, h) == e(g, a*h) == e(g, h)^a
	left, err := b.Pair(g.ScalarMul(a), h)
	c.Assert(err, qt.IsNil)
	right, err := b.Pair(g, h.ScalarMul(a))
	c.Assert(err, qt.IsNil)
	base, err := b.Pair(g, h)
	c.Assert(err, qt.IsNil)
	c.Assert(left.Equal(right), qt.IsTrue)
	c.Assert(left.Equal(base.Exp(a)), qt.IsTrue)

	ok, err := b.PairingCheck(
		[]backend.Point{g.ScalarMul(a), g.Neg()},
		[]backend.Point{h, h.ScalarMul(a)})
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
}
