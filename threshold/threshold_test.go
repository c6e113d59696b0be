package threshold

import (
	"bytes"
	"crypto/rand"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/tesslib/tess/backend"
)

func gnarkBN254() backend.Config {
	return backend.Config{Backend: backend.Gnark, Curve: backend.BN254}
}

func gnarkBLS12381() backend.Config {
	return backend.Config{Backend: backend.Gnark, Curve: backend.BLS12381}
}

func testParams(cfg backend.Config, parties, threshold, chunk int) Parameters {
	return Parameters{
		Parties:   parties,
		Threshold: threshold,
		ChunkSize: chunk,
		Backend:   cfg,
		SRSSecret: []byte("test reference string seed"),
	}
}

// decryptWith runs partial decryption for the given participants and
// aggregates the shares.
func decryptWith(c *qt.C, s *Scheme, km *KeyMaterial, ct *Ciphertext, signers []int, opts ...DecryptOption) (*DecryptionResult, error) {
	selector := make([]bool, len(km.SecretKeys))
	partials := make([]PartialDecryption, 0, len(signers))
	for _, i := range signers {
		selector[i] = true
		pd, err := s.PartialDecrypt(km.SecretKeys[i], ct)
		c.Assert(err, qt.IsNil)
		partials = append(partials, *pd)
	}
	return s.AggregateDecrypt(ct, partials, selector, km.AggregateKey, opts...)
}

func TestParametersValidate(t *testing.T) {
	c := qt.New(t)
	cases := []struct {
		name string
		p    Parameters
		want error
	}{
		{"one party", testParams(gnarkBN254(), 1, 1, 32), backend.ErrInvalidConfig},
		{"non power of two", testParams(gnarkBN254(), 15, 3, 32), backend.ErrInvalidConfig},
		{"zero threshold", testParams(gnarkBN254(), 16, 0, 32), backend.ErrInvalidConfig},
		{"threshold above parties", testParams(gnarkBN254(), 16, 17, 32), backend.ErrInvalidConfig},
		{"zero chunk", testParams(gnarkBN254(), 16, 3, 0), backend.ErrInvalidConfig},
		{"unregistered backend", testParams(backend.Config{Backend: backend.Blst, Curve: backend.BLS12381}, 16, 3, 32), backend.ErrUnsupportedBackend},
	}
	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(tc.p.Validate(), qt.ErrorIs, tc.want)
		})
	}
	c.Assert(testParams(gnarkBN254(), 16, 3, 32).Validate(), qt.IsNil)
}

func TestNewRejectsUnregistered(t *testing.T) {
	c := qt.New(t)
	_, err := New(backend.Config{Backend: backend.Blst, Curve: backend.BN254})
	c.Assert(err, qt.ErrorIs, backend.ErrUnsupportedBackend)
}

func TestKeygenRejectsMismatchedBackend(t *testing.T) {
	c := qt.New(t)
	s, err := New(gnarkBN254())
	c.Assert(err, qt.IsNil)
	_, err = s.Keygen(rand.Reader, testParams(gnarkBLS12381(), 4, 1, 32))
	c.Assert(err, qt.ErrorIs, backend.ErrInvalidConfig)
}

func TestRoundTrip(t *testing.T) {
	c := qt.New(t)
	params := testParams(gnarkBN254(), 16, 3, 1024)
	s, err := New(params.Backend)
	c.Assert(err, qt.IsNil)
	km, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)

	signers := []int{1, 5, 8, 15}
	for _, size := range []int{0, 1, 31, 32, 33, 1024} {
		payload := make([]byte, size)
		_, err := rand.Read(payload)
		c.Assert(err, qt.IsNil)

		ct, err := s.Encrypt(rand.Reader, km.AggregateKey, params, payload)
		c.Assert(err, qt.IsNil)
		res, err := decryptWith(c, s, km, ct, signers)
		c.Assert(err, qt.IsNil, qt.Commentf("size=%d", size))
		c.Assert(res.Plaintext, qt.DeepEquals, payload)
		c.Assert(res.SharedSecret.Equal(ct.SharedSecret), qt.IsTrue)
	}
}

func TestRoundTripBLS12381(t *testing.T) {
	c := qt.New(t)
	params := testParams(gnarkBLS12381(), 8, 2, 64)
	s, err := New(params.Backend)
	c.Assert(err, qt.IsNil)
	km, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)

	payload := []byte("cross-curve payload")
	ct, err := s.Encrypt(rand.Reader, km.AggregateKey, params, payload)
	c.Assert(err, qt.IsNil)
	res, err := decryptWith(c, s, km, ct, []int{0, 3, 6})
	c.Assert(err, qt.IsNil)
	c.Assert(res.Plaintext, qt.DeepEquals, payload)
}

func TestRoundTripAllSigners(t *testing.T) {
	c := qt.New(t)
	params := testParams(gnarkBN254(), 4, 2, 64)
	s, err := New(params.Backend)
	c.Assert(err, qt.IsNil)
	km, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)

	payload := []byte("everyone signs")
	ct, err := s.Encrypt(rand.Reader, km.AggregateKey, params, payload)
	c.Assert(err, qt.IsNil)
	res, err := decryptWith(c, s, km, ct, []int{0, 1, 2, 3})
	c.Assert(err, qt.IsNil)
	c.Assert(res.Plaintext, qt.DeepEquals, payload)
}

func TestAggregatePublicKeyMatchesKeygen(t *testing.T) {
	c := qt.New(t)
	params := testParams(gnarkBN254(), 8, 2, 64)
	s, err := New(params.Backend)
	c.Assert(err, qt.IsNil)
	km, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)

	agg, err := s.AggregatePublicKey(params, km.SRS, km.PublicKeys)
	c.Assert(err, qt.IsNil)
	c.Assert(agg.ASK.Equal(km.AggregateKey.ASK), qt.IsTrue)
	c.Assert(agg.VanishingG2.Equal(km.AggregateKey.VanishingG2), qt.IsTrue)
	c.Assert(agg.PrecomputedPairing.Equal(km.AggregateKey.PrecomputedPairing), qt.IsTrue)
	c.Assert(agg.RowSums, qt.HasLen, len(km.AggregateKey.RowSums))
	for j := range agg.RowSums {
		c.Assert(agg.RowSums[j].Equal(km.AggregateKey.RowSums[j]), qt.IsTrue, qt.Commentf("row %d", j))
	}
}

func TestExactlyThresholdSharesFails(t *testing.T) {
	c := qt.New(t)
	params := testParams(gnarkBN254(), 8, 3, 64)
	s, err := New(params.Backend)
	c.Assert(err, qt.IsNil)
	km, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)

	ct, err := s.Encrypt(rand.Reader, km.AggregateKey, params, []byte("boundary"))
	c.Assert(err, qt.IsNil)

	// exactly threshold shares is one short
	_, err = decryptWith(c, s, km, ct, []int{0, 2, 5})
	c.Assert(err, qt.ErrorIs, ErrInsufficientShares)

	// one more succeeds
	res, err := decryptWith(c, s, km, ct, []int{0, 2, 5, 7})
	c.Assert(err, qt.IsNil)
	c.Assert(res.Plaintext, qt.DeepEquals, []byte("boundary"))
}

func TestForgedShareRejected(t *testing.T) {
	c := qt.New(t)
	params := testParams(gnarkBN254(), 8, 2, 64)
	s, err := New(params.Backend)
	c.Assert(err, qt.IsNil)
	km, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)

	ct, err := s.Encrypt(rand.Reader, km.AggregateKey, params, []byte("payload"))
	c.Assert(err, qt.IsNil)

	signers := []int{1, 3, 4}
	selector := make([]bool, params.Parties)
	partials := make([]PartialDecryption, 0, len(signers))
	for _, i := range signers {
		selector[i] = true
		pd, err := s.PartialDecrypt(km.SecretKeys[i], ct)
		c.Assert(err, qt.IsNil)
		partials = append(partials, *pd)
	}
	// forge participant 3's response
	partials[1].Response = ct.GammaG2
	_, err = s.AggregateDecrypt(ct, partials, selector, km.AggregateKey)
	c.Assert(err, qt.ErrorIs, ErrVerification)
}

func TestInconsistentShares(t *testing.T) {
	c := qt.New(t)
	params := testParams(gnarkBN254(), 8, 2, 64)
	s, err := New(params.Backend)
	c.Assert(err, qt.IsNil)
	km, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)

	ct, err := s.Encrypt(rand.Reader, km.AggregateKey, params, []byte("payload"))
	c.Assert(err, qt.IsNil)

	selector := make([]bool, params.Parties)
	for _, i := range []int{0, 1, 2} {
		selector[i] = true
	}
	share := func(i int) PartialDecryption {
		pd, err := s.PartialDecrypt(km.SecretKeys[i], ct)
		c.Assert(err, qt.IsNil)
		return *pd
	}

	// duplicate participant
	_, err = s.AggregateDecrypt(ct, []PartialDecryption{share(0), share(1), share(1)}, selector, km.AggregateKey)
	c.Assert(err, qt.ErrorIs, ErrInconsistentShares)

	// share from an unselected participant
	_, err = s.AggregateDecrypt(ct, []PartialDecryption{share(0), share(1), share(5)}, selector, km.AggregateKey)
	c.Assert(err, qt.ErrorIs, ErrInconsistentShares)

	// wrong selector length
	_, err = s.AggregateDecrypt(ct, []PartialDecryption{share(0), share(1), share(2)}, selector[:4], km.AggregateKey)
	c.Assert(err, qt.ErrorIs, ErrInconsistentShares)
}

func TestEncryptRandomized(t *testing.T) {
	c := qt.New(t)
	params := testParams(gnarkBN254(), 8, 2, 64)
	s, err := New(params.Backend)
	c.Assert(err, qt.IsNil)
	km, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)

	payload := []byte("same payload, fresh randomness")
	ct1, err := s.Encrypt(rand.Reader, km.AggregateKey, params, payload)
	c.Assert(err, qt.IsNil)
	ct2, err := s.Encrypt(rand.Reader, km.AggregateKey, params, payload)
	c.Assert(err, qt.IsNil)

	c.Assert(ct1.GammaG2.Equal(ct2.GammaG2), qt.IsFalse)
	c.Assert(bytes.Equal(ct1.Payload, ct2.Payload), qt.IsFalse)

	// independent signer subsets both recover the payload
	res1, err := decryptWith(c, s, km, ct1, []int{0, 1, 2})
	c.Assert(err, qt.IsNil)
	c.Assert(res1.Plaintext, qt.DeepEquals, payload)
	res2, err := decryptWith(c, s, km, ct2, []int{4, 6, 7})
	c.Assert(err, qt.IsNil)
	c.Assert(res2.Plaintext, qt.DeepEquals, payload)
}

func TestEncryptRejectsOversizedPayload(t *testing.T) {
	c := qt.New(t)
	params := testParams(gnarkBN254(), 4, 1, 16)
	s, err := New(params.Backend)
	c.Assert(err, qt.IsNil)
	km, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)
	_, err = s.Encrypt(rand.Reader, km.AggregateKey, params, make([]byte, 17))
	c.Assert(err, qt.ErrorIs, backend.ErrInvalidConfig)
}

func TestOpeningProof(t *testing.T) {
	c := qt.New(t)
	params := testParams(gnarkBN254(), 8, 2, 64)
	s, err := New(params.Backend)
	c.Assert(err, qt.IsNil)
	km, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)

	ct, err := s.Encrypt(rand.Reader, km.AggregateKey, params, []byte("payload"))
	c.Assert(err, qt.IsNil)

	plain, err := decryptWith(c, s, km, ct, []int{0, 1, 2})
	c.Assert(err, qt.IsNil)
	c.Assert(plain.OpeningProof, qt.HasLen, 0)

	withProof, err := decryptWith(c, s, km, ct, []int{0, 1, 2}, WithOpeningProof())
	c.Assert(err, qt.IsNil)
	c.Assert(len(withProof.OpeningProof) > 0, qt.IsTrue)
}

func TestSharedSRSSeedYieldsSameReferenceString(t *testing.T) {
	c := qt.New(t)
	params := testParams(gnarkBN254(), 4, 1, 32)
	s, err := New(params.Backend)
	c.Assert(err, qt.IsNil)

	km1, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)
	km2, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)

	// keys differ, the reference string does not
	for k := range km1.SRS.PowersG1 {
		c.Assert(km1.SRS.PowersG1[k].Equal(km2.SRS.PowersG1[k]), qt.IsTrue)
	}
	c.Assert(km1.PublicKeys[0].BLSKey.Equal(km2.PublicKeys[0].BLSKey), qt.IsFalse)
}

func TestEndToEndLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 2048-party end-to-end test in short mode")
	}
	c := qt.New(t)
	params := testParams(gnarkBN254(), 2048, 3, 32)
	s, err := New(params.Backend)
	c.Assert(err, qt.IsNil)
	km, err := s.Keygen(rand.Reader, params)
	c.Assert(err, qt.IsNil)

	payload := make([]byte, 32)
	ct, err := s.Encrypt(rand.Reader, km.AggregateKey, params, payload)
	c.Assert(err, qt.IsNil)
	res, err := decryptWith(c, s, km, ct, []int{17, 256, 1023, 2047})
	c.Assert(err, qt.IsNil)
	c.Assert(res.Plaintext, qt.DeepEquals, payload)
}
