// Package backend defines the algebraic capability set the threshold
// encryption protocol is written against: a scalar field, two additive
// groups G1 and G2, a multiplicative pairing-target group and the pairing
// itself. Concrete curve instantiations live in subpackages and register
// themselves at init time; the protocol, the KZG engine and the Lagrange
// machinery only ever see these interfaces, so swapping the curve or the
// arithmetic library underneath never touches protocol code.
//
// Elements from different backends must not be mixed; implementations are
// free to panic on foreign operands, the same way kyber-style group
// abstractions do.
package backend

import "io"

// Scalar is an immutable element of the curve's scalar field. Every
// operation returns a fresh value and leaves the receiver untouched.
type Scalar interface {
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Neg() Scalar
	// Inverse fails with a math error on the zero element.
	Inverse() (Scalar, error)
	IsZero() bool
	Equal(Scalar) bool
	// Bytes returns the canonical fixed-width big-endian encoding.
	Bytes() []byte
}

// Field creates and batch-processes scalars.
type Field interface {
	Zero() Scalar
	One() Scalar
	FromUint64(uint64) Scalar
	// FromBytes interprets the input as a big-endian integer reduced
	// modulo the field order.
	FromBytes([]byte) Scalar
	// Random samples a uniform scalar from the given source.
	Random(io.Reader) (Scalar, error)
	// BatchInvert replaces every element of s with its inverse using a
	// single field inversion. A zero entry is a math error and leaves s
	// unmodified.
	BatchInvert(s []Scalar) error
	// RootOfUnity returns a generator of the order-n multiplicative
	// subgroup. n must be a power of two within the field's two-adicity.
	RootOfUnity(n uint64) (Scalar, error)
}

// Point is an immutable element of one of the two source groups, written
// additively.
type Point interface {
	Add(Point) Point
	Sub(Point) Point
	ScalarMul(Scalar) Point
	Neg() Point
	IsIdentity() bool
	Equal(Point) bool
	// Bytes returns the canonical compressed encoding.
	Bytes() []byte
}

// Group exposes the constructors and the accelerated batch routines of a
// source group. MSM and BatchScalarMul are consumed as opaque, pure
// functions; their failures surface as backend errors.
type Group interface {
	Identity() Point
	Generator() Point
	// MSM computes the multi-scalar multiplication sum(scalars[i] *
	// points[i]). Empty inputs yield the identity.
	MSM(points []Point, scalars []Scalar) (Point, error)
	// BatchScalarMul multiplies a fixed base by every scalar.
	BatchScalarMul(base Point, scalars []Scalar) []Point
}

// Target is an element of the pairing-target group, written
// multiplicatively. It is only ever combined, compared and serialized;
// the protocol performs no other arithmetic on it.
type Target interface {
	Mul(Target) Target
	Inverse() Target
	Exp(Scalar) Target
	Equal(Target) bool
	IsOne() bool
	// Bytes returns the canonical encoding, used for key derivation.
	Bytes() []byte
}

// Backend bundles the full capability set for one (implementation, curve)
// pair.
type Backend interface {
	ID() ID
	Curve() Curve
	Field() Field
	G1() Group
	G2() Group
	// Pair computes e(p, q) for p in G1 and q in G2.
	Pair(p, q Point) (Target, error)
	// MultiPair computes the product of e(ps[i], qs[i]).
	MultiPair(ps, qs []Point) (Target, error)
	// PairingCheck reports whether the product of e(ps[i], qs[i]) is the
	// identity of the target group.
	PairingCheck(ps, qs []Point) (bool, error)
	TargetOne() Target
}
