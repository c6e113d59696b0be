// Package threshold implements a threshold encryption scheme with
// silent setup: every participant generates its key pair independently,
// the encryption key is a deterministic aggregate of the published
// public keys, and any t+1 partial decryptions recover the payload
// without the parties ever talking to each other.
package threshold

import (
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tesslib/tess/backend"
	// Compiled-in curve backends register themselves for config
	// resolution.
	_ "github.com/tesslib/tess/backend/bls12381"
	_ "github.com/tesslib/tess/backend/bn254"
	"github.com/tesslib/tess/kzg"
	"github.com/tesslib/tess/lagrange"
	"github.com/tesslib/tess/symenc"
)

// Scheme binds the protocol operations to one resolved backend. Safe
// for concurrent use.
type Scheme struct {
	b backend.Backend
}

// New resolves the backend configuration and returns a scheme instance.
func New(cfg backend.Config) (*Scheme, error) {
	b, err := backend.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Scheme{b: b}, nil
}

// Backend exposes the resolved backend, mostly for tests and callers
// that need to serialize elements.
func (s *Scheme) Backend() backend.Backend { return s.b }

// Keygen produces the full key material for one protocol instance: the
// reference string, every participant's secret and public key, and the
// aggregate encryption key. Participants are independent, so the
// per-party work fans out across cores; the output is ordered by
// participant ID and deterministic for a fixed rng stream and SRS seed.
func (s *Scheme) Keygen(rng io.Reader, params Parameters) (*KeyMaterial, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Backend != configOf(s.b) {
		return nil, backend.ConfigErrorf("parameters select %v/%v but scheme runs %v/%v",
			params.Backend.Backend, params.Backend.Curve, s.b.ID(), s.b.Curve())
	}
	n := params.Parties
	f := s.b.Field()

	tau, err := s.trapdoor(rng, params)
	if err != nil {
		return nil, err
	}
	srs, err := kzg.Setup(s.b, n, tau)
	if err != nil {
		return nil, err
	}
	dom, err := lagrange.NewDomain(f, n)
	if err != nil {
		return nil, err
	}
	basis, err := dom.LagrangePolys()
	if err != nil {
		return nil, err
	}

	// Secret scalars are drawn sequentially so a deterministic rng yields
	// reproducible key material; everything after this point is a pure
	// function of the scalars.
	secrets := make([]backend.Scalar, n)
	for i := 0; i < n; i++ {
		sk, err := f.Random(rng)
		if err != nil {
			return nil, err
		}
		secrets[i] = sk
	}

	hints, err := s.basisHints(srs, dom, basis)
	if err != nil {
		return nil, err
	}

	secretKeys := make([]SecretKey, n)
	publicKeys := make([]PublicKey, n)
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			pk, err := s.derivePublicKey(i, secrets[i], srs, dom, hints)
			if err != nil {
				return err
			}
			secretKeys[i] = SecretKey{ParticipantID: i, Scalar: secrets[i]}
			publicKeys[i] = *pk
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	agg, err := aggregateFromKeys(s.b, srs, publicKeys)
	if err != nil {
		return nil, err
	}
	return &KeyMaterial{
		SecretKeys:   secretKeys,
		PublicKeys:   publicKeys,
		AggregateKey: agg,
		SRS:          srs,
	}, nil
}

// AggregatePublicKey recomputes the aggregate encryption key from a
// complete, ID-ordered public key list and the shared SRS. The result is
// byte-identical to the aggregate embedded in Keygen's output for the
// same inputs.
func (s *Scheme) AggregatePublicKey(params Parameters, srs *kzg.SRS, keys []PublicKey) (*AggregateKey, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(keys) != params.Parties {
		return nil, backend.ConfigErrorf("got %d public keys for %d parties", len(keys), params.Parties)
	}
	return aggregateFromKeys(s.b, srs, keys)
}

// srsTag domain-separates trapdoor expansion from the payload
// keystream.
const srsTag = "tess/threshold/srs/v1"

// trapdoor derives the SRS trapdoor: expanded from the shared seed when
// one is configured, sampled otherwise.
func (s *Scheme) trapdoor(rng io.Reader, params Parameters) (backend.Scalar, error) {
	f := s.b.Field()
	if len(params.SRSSecret) > 0 {
		wide := symenc.Derive(srsTag, params.SRSSecret, 64)
		tau := f.FromBytes(wide)
		if tau.IsZero() {
			return nil, backend.MathErrorf("srs seed expands to the zero trapdoor")
		}
		return tau, nil
	}
	return f.Random(rng)
}

// basisHints holds the secret-independent commitments every participant
// scales by its own key: [X*L_i]_1 and [(L_i - 1)/(X - omega^i)]_1.
type basisHints struct {
	xCommit    []backend.Point
	diagCommit []backend.Point
	// gOverN = (1/n) * g = [L_i(0)]_1 for every i.
	gOverN backend.Point
}

func (s *Scheme) basisHints(srs *kzg.SRS, dom *lagrange.Domain, basis []lagrange.Poly) (*basisHints, error) {
	n := dom.N
	f := dom.F
	h := &basisHints{
		xCommit:    make([]backend.Point, n),
		diagCommit: make([]backend.Point, n),
		gOverN:     s.b.G1().Generator().ScalarMul(dom.NInv),
	}
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			xc, err := srs.CommitG1(basis[i].MulByX(f))
			if err != nil {
				return err
			}
			h.xCommit[i] = xc

			// (L_i - 1) vanishes at omega^i, so the division is exact.
			shifted := make(lagrange.Poly, len(basis[i]))
			copy(shifted, basis[i])
			shifted[0] = shifted[0].Sub(f.One())
			q, err := lagrange.DivByLinear(f, shifted, dom.Points[i])
			if err != nil {
				return err
			}
			dc, err := srs.CommitG1(q)
			if err != nil {
				return err
			}
			h.diagCommit[i] = dc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return h, nil
}

// derivePublicKey builds participant i's public key from its secret.
// The quotient hints use the closed forms
//
//	i != j: [L_i*L_j/Z]_1 = (omega^i-omega^j)^-1 *
//	        ((omega^j/n)*[L_i]_1 - (omega^i/n)*[L_j]_1)
//	i == j: [(L_i^2-L_i)/Z]_1 = (omega^i/n)*[(L_i-1)/(X-omega^i)]_1
//
// so each hint costs two scalar multiplications instead of a full MSM.
func (s *Scheme) derivePublicKey(i int, sk backend.Scalar, srs *kzg.SRS, dom *lagrange.Domain, hints *basisHints) (*PublicKey, error) {
	n := dom.N
	f := dom.F
	g := s.b.G1().Generator()

	pk := &PublicKey{
		ParticipantID:    i,
		BLSKey:           g.ScalarMul(sk),
		LagrangeLi:       srs.LagrangeG1[i].ScalarMul(sk),
		LagrangeLiMinus0: srs.LagrangeG1[i].Sub(hints.gOverN).ScalarMul(sk),
		LagrangeLiX:      hints.xCommit[i].ScalarMul(sk),
		LagrangeLiLjZ:    make([]backend.Point, n),
	}

	// Pairwise denominators omega^i - omega^j, inverted in one batch; the
	// diagonal slot gets a placeholder that is never read.
	denoms := make([]backend.Scalar, n)
	for j := 0; j < n; j++ {
		if j == i {
			denoms[j] = f.One()
			continue
		}
		denoms[j] = dom.Points[i].Sub(dom.Points[j])
	}
	if err := f.BatchInvert(denoms); err != nil {
		return nil, err
	}

	skOverN := sk.Mul(dom.NInv)
	for j := 0; j < n; j++ {
		if j == i {
			pk.LagrangeLiLjZ[i] = hints.diagCommit[i].ScalarMul(skOverN.Mul(dom.Points[i]))
			continue
		}
		a := skOverN.Mul(denoms[j]).Mul(dom.Points[j])
		c := skOverN.Mul(denoms[j]).Mul(dom.Points[i]).Neg()
		pk.LagrangeLiLjZ[j] = srs.LagrangeG1[i].ScalarMul(a).Add(srs.LagrangeG1[j].ScalarMul(c))
	}
	return pk, nil
}

func configOf(b backend.Backend) backend.Config {
	return backend.Config{Backend: b.ID(), Curve: b.Curve()}
}
