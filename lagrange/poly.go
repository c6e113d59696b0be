package lagrange

import "github.com/tesslib/tess/backend"

// Poly is a univariate polynomial over the scalar field, coefficients in
// ascending degree order.
type Poly []backend.Scalar

// Degree returns the degree after ignoring trailing zero coefficients.
// The zero polynomial has degree 0.
func (p Poly) Degree() int {
	for i := len(p) - 1; i > 0; i-- {
		if !p[i].IsZero() {
			return i
		}
	}
	return 0
}

// Eval evaluates p at x by Horner's rule.
func (p Poly) Eval(f backend.Field, x backend.Scalar) backend.Scalar {
	acc := f.Zero()
	for i := len(p) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(p[i])
	}
	return acc
}

// Add returns p + q.
func (p Poly) Add(f backend.Field, q Poly) Poly {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make(Poly, n)
	for i := range out {
		c := f.Zero()
		if i < len(p) {
			c = c.Add(p[i])
		}
		if i < len(q) {
			c = c.Add(q[i])
		}
		out[i] = c
	}
	return out
}

// Scale returns c * p.
func (p Poly) Scale(c backend.Scalar) Poly {
	out := make(Poly, len(p))
	for i := range p {
		out[i] = p[i].Mul(c)
	}
	return out
}

// MulByX returns X * p.
func (p Poly) MulByX(f backend.Field) Poly {
	out := make(Poly, len(p)+1)
	out[0] = f.Zero()
	copy(out[1:], p)
	return out
}

// DivByLinear divides p by (X - a). The division must be exact, i.e.
// p(a) = 0; a non-zero remainder is a math error.
func DivByLinear(f backend.Field, p Poly, a backend.Scalar) (Poly, error) {
	if len(p) == 0 {
		return Poly{f.Zero()}, nil
	}
	q := make(Poly, len(p)-1)
	carry := f.Zero()
	for i := len(p) - 1; i >= 1; i-- {
		carry = p[i].Add(carry.Mul(a))
		q[i-1] = carry
	}
	rem := p[0].Add(carry.Mul(a))
	if !rem.IsZero() {
		return nil, backend.MathErrorf("division by (X - a) leaves a non-zero remainder")
	}
	if len(q) == 0 {
		q = Poly{f.Zero()}
	}
	return q, nil
}
