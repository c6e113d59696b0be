// Package lagrange builds and evaluates Lagrange basis polynomials over a
// radix-2 evaluation domain (the n-th roots of unity for a power-of-two
// n). It depends on the scalar field capability only; every function here
// is pure and byte-deterministic for a given field.
package lagrange

import (
	"github.com/tesslib/tess/backend"
)

// Domain is a radix-2 evaluation domain of size n: the points omega^0 ..
// omega^(n-1) for a primitive n-th root of unity omega. Read-only once
// constructed.
type Domain struct {
	F      backend.Field
	N      int
	Omega  backend.Scalar
	// Points holds omega^i for i in [0, n).
	Points []backend.Scalar
	// NInv is 1/n in the field.
	NInv backend.Scalar
}

// NewDomain builds the size-n domain. n must be a positive power of two
// within the field's two-adicity.
func NewDomain(f backend.Field, n int) (*Domain, error) {
	if n < 1 || n&(n-1) != 0 {
		return nil, backend.DomainErrorf("domain size %d is not a positive power of two", n)
	}
	omega, err := f.RootOfUnity(uint64(n))
	if err != nil {
		return nil, err
	}
	points := make([]backend.Scalar, n)
	cur := f.One()
	for i := 0; i < n; i++ {
		points[i] = cur
		cur = cur.Mul(omega)
	}
	nInv, err := f.FromUint64(uint64(n)).Inverse()
	if err != nil {
		return nil, err
	}
	return &Domain{F: f, N: n, Omega: omega, Points: points, NInv: nInv}, nil
}

// LagrangePoly returns the unique degree-(n-1) polynomial that is 1 at
// omega^index and 0 at every other domain point, interpolated from its
// evaluation vector with a radix-2 inverse FFT.
func (d *Domain) LagrangePoly(index int) (Poly, error) {
	if index < 0 || index >= d.N {
		return nil, backend.MathErrorf("lagrange index %d out of range [0, %d)", index, d.N)
	}
	evals := make([]backend.Scalar, d.N)
	for i := range evals {
		evals[i] = d.F.Zero()
	}
	evals[index] = d.F.One()
	return d.Interpolate(evals)
}

// Interpolate returns the polynomial of degree < n matching the given
// evaluations over the domain.
func (d *Domain) Interpolate(evals []backend.Scalar) (Poly, error) {
	if len(evals) != d.N {
		return nil, backend.MathErrorf("expected %d evaluations, got %d", d.N, len(evals))
	}
	omegaInv, err := d.Omega.Inverse()
	if err != nil {
		return nil, err
	}
	coeffs := fftRecurse(d.F, evals, omegaInv)
	out := make(Poly, d.N)
	for i := range coeffs {
		out[i] = coeffs[i].Mul(d.NInv)
	}
	return out, nil
}

// fftRecurse computes the discrete Fourier transform of a at the powers
// of root, len(a) a power of two.
func fftRecurse(f backend.Field, a []backend.Scalar, root backend.Scalar) []backend.Scalar {
	n := len(a)
	if n == 1 {
		return []backend.Scalar{a[0]}
	}
	even := make([]backend.Scalar, n/2)
	odd := make([]backend.Scalar, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = a[2*i]
		odd[i] = a[2*i+1]
	}
	root2 := root.Mul(root)
	e := fftRecurse(f, even, root2)
	o := fftRecurse(f, odd, root2)
	out := make([]backend.Scalar, n)
	w := f.One()
	for i := 0; i < n/2; i++ {
		t := w.Mul(o[i])
		out[i] = e[i].Add(t)
		out[i+n/2] = e[i].Sub(t)
		w = w.Mul(root)
	}
	return out
}

// LagrangePolys computes every basis polynomial of the domain at once.
// The coefficient of X^k in L_i is omega^(-ik)/n; the per-index
// denominators n*omega^(-i) are inverted with a single batched field
// inversion, keeping the whole construction at O(n) inversions.
func (d *Domain) LagrangePolys() ([]Poly, error) {
	n := d.N
	omegaInv, err := d.Omega.Inverse()
	if err != nil {
		return nil, err
	}
	omegaInvPows := make([]backend.Scalar, n)
	cur := d.F.One()
	for i := 0; i < n; i++ {
		omegaInvPows[i] = cur
		cur = cur.Mul(omegaInv)
	}
	nScalar := d.F.FromUint64(uint64(n))
	denoms := make([]backend.Scalar, n)
	for i := 0; i < n; i++ {
		denoms[i] = omegaInvPows[i].Mul(nScalar)
	}
	if err := d.F.BatchInvert(denoms); err != nil {
		return nil, err
	}
	polys := make([]Poly, n)
	for i := 0; i < n; i++ {
		coeffs := make(Poly, n)
		power := omegaInvPows[i]
		for k := 0; k < n; k++ {
			coeffs[k] = power.Mul(denoms[i])
			power = power.Mul(omegaInvPows[i])
		}
		polys[i] = coeffs
	}
	return polys, nil
}

// InterpMostlyZero constructs the polynomial equal to eval at points[0]
// and 0 at every other point of points: the product of the (X - p)
// factors over points[1:], rescaled with a single inversion so that its
// value at points[0] is eval. An empty point list yields the constant
// polynomial 1.
func InterpMostlyZero(f backend.Field, eval backend.Scalar, points []backend.Scalar) (Poly, error) {
	if len(points) == 0 {
		return Poly{f.One()}, nil
	}
	coeffs := Poly{f.One()}
	for _, p := range points[1:] {
		next := make(Poly, len(coeffs)+1)
		negP := p.Neg()
		next[len(coeffs)] = coeffs[len(coeffs)-1]
		for i := len(coeffs) - 1; i >= 1; i-- {
			next[i] = coeffs[i-1].Add(coeffs[i].Mul(negP))
		}
		next[0] = coeffs[0].Mul(negP)
		coeffs = next
	}
	scale := coeffs.Eval(f, points[0])
	scaleInv, err := scale.Inverse()
	if err != nil {
		return nil, backend.MathErrorf("interpolation scale is zero: points[0] collides with a root")
	}
	c := eval.Mul(scaleInv)
	for i := range coeffs {
		coeffs[i] = coeffs[i].Mul(c)
	}
	return coeffs, nil
}

// AtZeroCoefficients returns the Lagrange interpolation coefficients at
// the field's zero point restricted to the given (distinct) domain
// indices: weights c_i such that sum c_i * f(omega^i) = p(0) for the
// lowest-degree polynomial p matching f on those points. All denominators
// are inverted with one batched inversion.
func (d *Domain) AtZeroCoefficients(indices []int) ([]backend.Scalar, error) {
	m := len(indices)
	if m == 0 {
		return nil, backend.MathErrorf("empty index subset")
	}
	seen := make(map[int]struct{}, m)
	xs := make([]backend.Scalar, m)
	for i, idx := range indices {
		if idx < 0 || idx >= d.N {
			return nil, backend.MathErrorf("index %d out of range [0, %d)", idx, d.N)
		}
		if _, dup := seen[idx]; dup {
			return nil, backend.MathErrorf("duplicate index %d in subset", idx)
		}
		seen[idx] = struct{}{}
		xs[i] = d.Points[idx]
	}
	nums := make([]backend.Scalar, m)
	denoms := make([]backend.Scalar, m)
	for i := 0; i < m; i++ {
		num := d.F.One()
		den := d.F.One()
		for j := 0; j < m; j++ {
			if j == i {
				continue
			}
			num = num.Mul(xs[j].Neg())
			den = den.Mul(xs[i].Sub(xs[j]))
		}
		nums[i] = num
		denoms[i] = den
	}
	if err := d.F.BatchInvert(denoms); err != nil {
		return nil, err
	}
	out := make([]backend.Scalar, m)
	for i := 0; i < m; i++ {
		out[i] = nums[i].Mul(denoms[i])
	}
	return out, nil
}
