// Package bls12381 instantiates the algebraic capability set on the BLS12-381
// curve from consensys/gnark-crypto. Importing the package registers the
// (gnark, bls12-381) pair in the backend registry.
package bls12381

import (
	"io"
	"math/big"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"

	"github.com/consensys/gnark-crypto/ecc"

	"github.com/tesslib/tess/backend"
)

func init() {
	backend.Register(backend.Gnark, backend.BLS12381, func() backend.Backend { return Backend{} })
}

// twoAdicity of the BLS12-381 scalar field.
const twoAdicity = 32

// Backend implements backend.Backend for BLS12-381.
type Backend struct{}

func (Backend) ID() backend.ID       { return backend.Gnark }
func (Backend) Curve() backend.Curve { return backend.BLS12381 }
func (Backend) Field() backend.Field { return field{} }
func (Backend) G1() backend.Group    { return g1Group{} }
func (Backend) G2() backend.Group    { return g2Group{} }

func (Backend) Pair(p, q backend.Point) (backend.Target, error) {
	gt, err := curve.Pair([]curve.G1Affine{p.(g1Point).p}, []curve.G2Affine{q.(g2Point).p})
	if err != nil {
		return nil, backend.MathErrorf("bls12-381 pairing: %v", err)
	}
	return target{gt}, nil
}

func (Backend) MultiPair(ps, qs []backend.Point) (backend.Target, error) {
	if len(ps) != len(qs) {
		return nil, backend.MathErrorf("multipair: %d G1 points against %d G2 points", len(ps), len(qs))
	}
	g1s := make([]curve.G1Affine, len(ps))
	g2s := make([]curve.G2Affine, len(qs))
	for i := range ps {
		g1s[i] = ps[i].(g1Point).p
		g2s[i] = qs[i].(g2Point).p
	}
	gt, err := curve.Pair(g1s, g2s)
	if err != nil {
		return nil, backend.MathErrorf("bls12-381 multipair: %v", err)
	}
	return target{gt}, nil
}

func (Backend) PairingCheck(ps, qs []backend.Point) (bool, error) {
	if len(ps) != len(qs) {
		return false, backend.MathErrorf("pairing check: %d G1 points against %d G2 points", len(ps), len(qs))
	}
	g1s := make([]curve.G1Affine, len(ps))
	g2s := make([]curve.G2Affine, len(qs))
	for i := range ps {
		g1s[i] = ps[i].(g1Point).p
		g2s[i] = qs[i].(g2Point).p
	}
	ok, err := curve.PairingCheck(g1s, g2s)
	if err != nil {
		return false, backend.MathErrorf("bls12-381 pairing check: %v", err)
	}
	return ok, nil
}

func (Backend) TargetOne() backend.Target {
	var gt curve.GT
	gt.SetOne()
	return target{gt}
}

type scalar struct{ v fr.Element }

// ref gives gnark's pointer-receiver API a stable address; the value
// receiver is a local copy, so the pointer never aliases the operand.
func (s scalar) ref() *fr.Element { return &s.v }

func (s scalar) Add(o backend.Scalar) backend.Scalar {
	var r fr.Element
	r.Add(&s.v, o.(scalar).ref())
	return scalar{r}
}

func (s scalar) Sub(o backend.Scalar) backend.Scalar {
	var r fr.Element
	r.Sub(&s.v, o.(scalar).ref())
	return scalar{r}
}

func (s scalar) Mul(o backend.Scalar) backend.Scalar {
	var r fr.Element
	r.Mul(&s.v, o.(scalar).ref())
	return scalar{r}
}

func (s scalar) Neg() backend.Scalar {
	var r fr.Element
	r.Neg(&s.v)
	return scalar{r}
}

func (s scalar) Inverse() (backend.Scalar, error) {
	if s.v.IsZero() {
		return nil, backend.ErrZeroInversion
	}
	var r fr.Element
	r.Inverse(&s.v)
	return scalar{r}, nil
}

func (s scalar) IsZero() bool                { return s.v.IsZero() }
func (s scalar) Equal(o backend.Scalar) bool { return s.v.Equal(o.(scalar).ref()) }

func (s scalar) Bytes() []byte {
	b := s.v.Bytes()
	return b[:]
}

type field struct{}

func (field) Zero() backend.Scalar { return scalar{} }

func (field) One() backend.Scalar {
	var v fr.Element
	v.SetOne()
	return scalar{v}
}

func (field) FromUint64(u uint64) backend.Scalar {
	var v fr.Element
	v.SetUint64(u)
	return scalar{v}
}

func (field) FromBytes(b []byte) backend.Scalar {
	var v fr.Element
	v.SetBytes(b)
	return scalar{v}
}

func (field) Random(rng io.Reader) (backend.Scalar, error) {
	// 64 uniform bytes reduced mod r keep the bias negligible.
	var buf [64]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return nil, backend.MathErrorf("sampling scalar: %v", err)
	}
	var v fr.Element
	v.SetBytes(buf[:])
	return scalar{v}, nil
}

func (field) BatchInvert(s []backend.Scalar) error {
	elems := make([]fr.Element, len(s))
	for i := range s {
		e := s[i].(scalar)
		if e.v.IsZero() {
			return backend.ErrZeroInversion
		}
		elems[i] = e.v
	}
	inv := fr.BatchInvert(elems)
	for i := range s {
		s[i] = scalar{inv[i]}
	}
	return nil
}

func (field) RootOfUnity(n uint64) (backend.Scalar, error) {
	if n == 0 || n&(n-1) != 0 {
		return nil, backend.DomainErrorf("domain size %d is not a power of two", n)
	}
	if n > 1<<twoAdicity {
		return nil, backend.DomainErrorf("domain size %d exceeds the bls12-381 two-adicity", n)
	}
	return scalar{fft.NewDomain(n).Generator}, nil
}

type g1Point struct{ p curve.G1Affine }

func (a g1Point) ref() *curve.G1Affine { return &a.p }

func (a g1Point) Add(b backend.Point) backend.Point {
	var j, jb curve.G1Jac
	j.FromAffine(&a.p)
	jb.FromAffine(b.(g1Point).ref())
	j.AddAssign(&jb)
	var r curve.G1Affine
	r.FromJacobian(&j)
	return g1Point{r}
}

func (a g1Point) Sub(b backend.Point) backend.Point {
	var j, jb curve.G1Jac
	j.FromAffine(&a.p)
	jb.FromAffine(b.(g1Point).ref())
	jb.Neg(&jb)
	j.AddAssign(&jb)
	var r curve.G1Affine
	r.FromJacobian(&j)
	return g1Point{r}
}

func (a g1Point) ScalarMul(s backend.Scalar) backend.Point {
	var r curve.G1Affine
	k := s.(scalar).ref().BigInt(new(big.Int))
	r.ScalarMultiplication(&a.p, k)
	return g1Point{r}
}

func (a g1Point) Neg() backend.Point {
	var r curve.G1Affine
	r.Neg(&a.p)
	return g1Point{r}
}

func (a g1Point) IsIdentity() bool           { return a.p.IsInfinity() }
func (a g1Point) Equal(b backend.Point) bool { return a.p.Equal(b.(g1Point).ref()) }

func (a g1Point) Bytes() []byte {
	b := a.p.Bytes()
	return b[:]
}

type g1Group struct{}

func (g1Group) Identity() backend.Point { return g1Point{} }

func (g1Group) Generator() backend.Point {
	_, _, g, _ := curve.Generators()
	return g1Point{g}
}

func (g1Group) MSM(points []backend.Point, scalars []backend.Scalar) (backend.Point, error) {
	if len(points) != len(scalars) {
		return nil, backend.MathErrorf("msm: %d points against %d scalars", len(points), len(scalars))
	}
	if len(points) == 0 {
		return g1Point{}, nil
	}
	ps := make([]curve.G1Affine, len(points))
	ss := make([]fr.Element, len(scalars))
	for i := range points {
		ps[i] = points[i].(g1Point).p
		ss[i] = scalars[i].(scalar).v
	}
	var r curve.G1Affine
	if _, err := r.MultiExp(ps, ss, ecc.MultiExpConfig{}); err != nil {
		return nil, backend.MathErrorf("bls12-381 g1 msm: %v", err)
	}
	return g1Point{r}, nil
}

func (g1Group) BatchScalarMul(base backend.Point, scalars []backend.Scalar) []backend.Point {
	if len(scalars) == 0 {
		return nil
	}
	ss := make([]fr.Element, len(scalars))
	for i := range scalars {
		ss[i] = scalars[i].(scalar).v
	}
	b := base.(g1Point).p
	points := curve.BatchScalarMultiplicationG1(&b, ss)
	out := make([]backend.Point, len(points))
	for i := range points {
		out[i] = g1Point{points[i]}
	}
	return out
}

type g2Point struct{ p curve.G2Affine }

func (a g2Point) ref() *curve.G2Affine { return &a.p }

func (a g2Point) Add(b backend.Point) backend.Point {
	var j, jb curve.G2Jac
	j.FromAffine(&a.p)
	jb.FromAffine(b.(g2Point).ref())
	j.AddAssign(&jb)
	var r curve.G2Affine
	r.FromJacobian(&j)
	return g2Point{r}
}

func (a g2Point) Sub(b backend.Point) backend.Point {
	var j, jb curve.G2Jac
	j.FromAffine(&a.p)
	jb.FromAffine(b.(g2Point).ref())
	jb.Neg(&jb)
	j.AddAssign(&jb)
	var r curve.G2Affine
	r.FromJacobian(&j)
	return g2Point{r}
}

func (a g2Point) ScalarMul(s backend.Scalar) backend.Point {
	var r curve.G2Affine
	k := s.(scalar).ref().BigInt(new(big.Int))
	r.ScalarMultiplication(&a.p, k)
	return g2Point{r}
}

func (a g2Point) Neg() backend.Point {
	var r curve.G2Affine
	r.Neg(&a.p)
	return g2Point{r}
}

func (a g2Point) IsIdentity() bool           { return a.p.IsInfinity() }
func (a g2Point) Equal(b backend.Point) bool { return a.p.Equal(b.(g2Point).ref()) }

func (a g2Point) Bytes() []byte {
	b := a.p.Bytes()
	return b[:]
}

type g2Group struct{}

func (g2Group) Identity() backend.Point { return g2Point{} }

func (g2Group) Generator() backend.Point {
	_, _, _, h := curve.Generators()
	return g2Point{h}
}

func (g2Group) MSM(points []backend.Point, scalars []backend.Scalar) (backend.Point, error) {
	if len(points) != len(scalars) {
		return nil, backend.MathErrorf("msm: %d points against %d scalars", len(points), len(scalars))
	}
	if len(points) == 0 {
		return g2Point{}, nil
	}
	ps := make([]curve.G2Affine, len(points))
	ss := make([]fr.Element, len(scalars))
	for i := range points {
		ps[i] = points[i].(g2Point).p
		ss[i] = scalars[i].(scalar).v
	}
	var r curve.G2Affine
	if _, err := r.MultiExp(ps, ss, ecc.MultiExpConfig{}); err != nil {
		return nil, backend.MathErrorf("bls12-381 g2 msm: %v", err)
	}
	return g2Point{r}, nil
}

func (g2Group) BatchScalarMul(base backend.Point, scalars []backend.Scalar) []backend.Point {
	if len(scalars) == 0 {
		return nil
	}
	ss := make([]fr.Element, len(scalars))
	for i := range scalars {
		ss[i] = scalars[i].(scalar).v
	}
	b := base.(g2Point).p
	points := curve.BatchScalarMultiplicationG2(&b, ss)
	out := make([]backend.Point, len(points))
	for i := range points {
		out[i] = g2Point{points[i]}
	}
	return out
}

type target struct{ v curve.GT }

func (t target) ref() *curve.GT { return &t.v }

func (t target) Mul(o backend.Target) backend.Target {
	var r curve.GT
	r.Mul(&t.v, o.(target).ref())
	return target{r}
}

func (t target) Inverse() backend.Target {
	var r curve.GT
	r.Inverse(&t.v)
	return target{r}
}

func (t target) Exp(s backend.Scalar) backend.Target {
	var r curve.GT
	k := s.(scalar).ref().BigInt(new(big.Int))
	r.Exp(t.v, k)
	return target{r}
}

func (t target) Equal(o backend.Target) bool { return t.v.Equal(o.(target).ref()) }

func (t target) IsOne() bool {
	var one curve.GT
	one.SetOne()
	return t.v.Equal(&one)
}

func (t target) Bytes() []byte { return t.v.Marshal() }
