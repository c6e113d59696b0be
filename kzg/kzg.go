// Package kzg implements the structured reference string and the
// commitment operation of the KZG polynomial commitment scheme, in both
// source groups. Setup takes the trapdoor scalar explicitly: the
// reference string is reproducible from a seed, which is what lets every
// party of the silent-setup protocol derive the same SRS without a
// ceremony.
package kzg

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tesslib/tess/backend"
	"github.com/tesslib/tess/lagrange"
)

// SRS is the reference string for polynomials of degree at most
// MaxDegree. All slices are indexed by the power of the trapdoor they
// commit to; the struct is read-only after Setup.
type SRS struct {
	B         backend.Backend
	MaxDegree int

	// PowersG1[k] = tau^k * g, k in [0, MaxDegree].
	PowersG1 []backend.Point
	// PowersG2[k] = tau^k * h, k in [0, MaxDegree].
	PowersG2 []backend.Point
	// LagrangeG1[i] = L_i(tau) * g over the size-MaxDegree radix-2
	// domain. Nil when MaxDegree is not a power of two.
	LagrangeG1 []backend.Point
	// VanishingG1 = (tau^MaxDegree - 1) * g and its G2 counterpart,
	// commitments to the domain's vanishing polynomial.
	VanishingG1 backend.Point
	VanishingG2 backend.Point
	// EGH = e(g, h).
	EGH backend.Target
}

// Setup derives the full reference string from the trapdoor tau. The
// caller owns tau's lifecycle; nothing in the returned SRS reveals it
// beyond what the group elements themselves leak.
func Setup(b backend.Backend, maxDegree int, tau backend.Scalar) (*SRS, error) {
	if maxDegree < 1 {
		return nil, backend.MathErrorf("srs max degree %d must be at least 1", maxDegree)
	}
	f := b.Field()
	powers := make([]backend.Scalar, maxDegree+1)
	cur := f.One()
	for k := range powers {
		powers[k] = cur
		cur = cur.Mul(tau)
	}

	var srs SRS
	srs.B = b
	srs.MaxDegree = maxDegree
	srs.PowersG1 = make([]backend.Point, maxDegree+1)
	srs.PowersG2 = make([]backend.Point, maxDegree+1)

	g := b.G1().Generator()
	h := b.G2().Generator()

	// Both power tables are independent per chunk; fan out and merge by
	// index so the result is byte-identical regardless of parallelism.
	var eg errgroup.Group
	chunk := chunkSize(maxDegree + 1)
	for start := 0; start <= maxDegree; start += chunk {
		start := start
		end := start + chunk
		if end > maxDegree+1 {
			end = maxDegree + 1
		}
		eg.Go(func() error {
			pts := b.G1().BatchScalarMul(g, powers[start:end])
			copy(srs.PowersG1[start:end], pts)
			return nil
		})
		eg.Go(func() error {
			pts := b.G2().BatchScalarMul(h, powers[start:end])
			copy(srs.PowersG2[start:end], pts)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	srs.VanishingG1 = srs.PowersG1[maxDegree].Sub(srs.PowersG1[0])
	srs.VanishingG2 = srs.PowersG2[maxDegree].Sub(srs.PowersG2[0])

	egh, err := b.Pair(g, h)
	if err != nil {
		return nil, err
	}
	srs.EGH = egh

	if maxDegree&(maxDegree-1) == 0 {
		lag, err := lagrangeCommitments(b, maxDegree, tau)
		if err != nil {
			return nil, err
		}
		srs.LagrangeG1 = lag
	}
	return &srs, nil
}

// lagrangeCommitments evaluates every basis polynomial of the size-n
// domain directly at tau, using the closed form
// L_i(tau) = (omega^i / n) * (tau^n - 1) / (tau - omega^i),
// then multiplies the G1 generator by the n evaluations in one batch.
// This stays O(n) field inversions in total instead of n full MSMs.
func lagrangeCommitments(b backend.Backend, n int, tau backend.Scalar) ([]backend.Point, error) {
	f := b.Field()
	dom, err := lagrange.NewDomain(f, n)
	if err != nil {
		return nil, err
	}

	tauN := tau
	for k := n; k > 1; k >>= 1 {
		tauN = tauN.Mul(tauN)
	}
	zTau := tauN.Sub(f.One())

	evals := make([]backend.Scalar, n)
	if zTau.IsZero() {
		// tau lands on the domain itself; L_i(tau) collapses to a unit
		// vector at the matching point.
		for i := 0; i < n; i++ {
			if tau.Equal(dom.Points[i]) {
				evals[i] = f.One()
			} else {
				evals[i] = f.Zero()
			}
		}
	} else {
		denoms := make([]backend.Scalar, n)
		for i := 0; i < n; i++ {
			denoms[i] = tau.Sub(dom.Points[i])
		}
		if err := f.BatchInvert(denoms); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			evals[i] = dom.Points[i].Mul(dom.NInv).Mul(zTau).Mul(denoms[i])
		}
	}
	return b.G1().BatchScalarMul(b.G1().Generator(), evals), nil
}

func chunkSize(total int) int {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	c := (total + workers - 1) / workers
	if c < 64 {
		c = 64
	}
	return c
}

// CommitG1 commits to the coefficient vector in G1: the MSM of coeffs
// against the G1 power table. The zero polynomial commits to the group
// identity.
func (s *SRS) CommitG1(coeffs []backend.Scalar) (backend.Point, error) {
	if len(coeffs) > s.MaxDegree+1 {
		return nil, backend.DegreeErrorf("polynomial degree %d exceeds srs bound %d", len(coeffs)-1, s.MaxDegree)
	}
	return s.B.G1().MSM(s.PowersG1[:len(coeffs)], coeffs)
}

// CommitG2 is CommitG1 in the second source group.
func (s *SRS) CommitG2(coeffs []backend.Scalar) (backend.Point, error) {
	if len(coeffs) > s.MaxDegree+1 {
		return nil, backend.DegreeErrorf("polynomial degree %d exceeds srs bound %d", len(coeffs)-1, s.MaxDegree)
	}
	return s.B.G2().MSM(s.PowersG2[:len(coeffs)], coeffs)
}
