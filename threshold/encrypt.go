package threshold

import (
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tesslib/tess/backend"
	"github.com/tesslib/tess/symenc"
)

// Ciphertext carries one encrypted payload chunk together with the
// pairing material decryptors combine their shares against.
type Ciphertext struct {
	// GammaG2 = gamma * h for the per-message scalar gamma.
	GammaG2 backend.Point
	// ProofG1 = {gamma * g, gamma * [Z(tau)]_1}.
	ProofG1 []backend.Point
	// ProofG2[k] = gamma * [tau^k]_2 for k < Parties - Threshold, then a
	// final gamma * [Z(tau)]_2 entry. The power sequence stops at
	// Parties - Threshold - 1: reconstructing with Threshold or fewer
	// shares requires a power that was never published, which is what
	// binds the ciphertext to its threshold.
	ProofG2 []backend.Point
	// SharedSecret = e(ASK, h)^gamma, the value decryption re-derives.
	// Carrying it in the ciphertext keeps decryption testable against
	// the encryptor's view; it is not part of what a deployment would
	// put on the wire.
	SharedSecret backend.Target
	Threshold    int
	Payload      []byte
}

// Encrypt seals payload against the aggregate key so that any
// Threshold+1 partial decryptions recover it. payload must fit the
// configured chunk size. The only randomness consumed is one scalar.
func (s *Scheme) Encrypt(rng io.Reader, aggKey *AggregateKey, params Parameters, payload []byte) (*Ciphertext, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(payload) > params.ChunkSize {
		return nil, backend.ConfigErrorf("payload of %d bytes exceeds chunk size %d", len(payload), params.ChunkSize)
	}
	n := params.Parties
	if len(aggKey.PublicKeys) != n {
		return nil, backend.ConfigErrorf("aggregate key covers %d parties, parameters say %d", len(aggKey.PublicKeys), n)
	}
	srs := aggKey.SRS
	if srs == nil || srs.MaxDegree != n {
		return nil, backend.ConfigErrorf("aggregate key is missing a degree-%d reference string", n)
	}

	gamma, err := s.b.Field().Random(rng)
	if err != nil {
		return nil, err
	}

	powers := n - params.Threshold
	proofG2 := make([]backend.Point, powers+1)
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for k := 0; k < powers; k++ {
		k := k
		eg.Go(func() error {
			proofG2[k] = srs.PowersG2[k].ScalarMul(gamma)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	proofG2[powers] = srs.VanishingG2.ScalarMul(gamma)

	proofG1 := []backend.Point{
		s.b.G1().Generator().ScalarMul(gamma),
		srs.VanishingG1.ScalarMul(gamma),
	}

	shared := aggKey.PrecomputedPairing.Exp(gamma)
	return &Ciphertext{
		GammaG2:      s.b.G2().Generator().ScalarMul(gamma),
		ProofG1:      proofG1,
		ProofG2:      proofG2,
		SharedSecret: shared,
		Threshold:    params.Threshold,
		Payload:      symenc.EncryptPayload(shared.Bytes(), payload),
	}, nil
}
