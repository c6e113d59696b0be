package threshold

import (
	"github.com/tesslib/tess/backend"
	"github.com/tesslib/tess/kzg"
)

// SecretKey is one participant's share. It never leaves the party that
// generated it; everything else in the protocol is public.
type SecretKey struct {
	ParticipantID int
	Scalar        backend.Scalar
}

// PublicKey carries a participant's verification key together with the
// auxiliary commitments that make non-interactive aggregation possible:
// the party commits to its secret against its own Lagrange basis slot
// and publishes the cross-term quotient hints for every other slot.
type PublicKey struct {
	ParticipantID int
	// BLSKey = sk * g, the plain verification key.
	BLSKey backend.Point
	// LagrangeLi = sk * [L_i(tau)]_1.
	LagrangeLi backend.Point
	// LagrangeLiMinus0 = sk * [L_i(tau) - L_i(0)]_1.
	LagrangeLiMinus0 backend.Point
	// LagrangeLiX = sk * [X * L_i(tau)]_1.
	LagrangeLiX backend.Point
	// LagrangeLiLjZ[j] = [sk * (L_i*L_j - delta_ij*L_i) / Z]_1, the
	// quotient hints consumed column-wise by aggregation.
	LagrangeLiLjZ []backend.Point
}

// AggregateKey is the single encryption key derived from all published
// public keys. It is a pure function of the key list and the SRS;
// recomputing it from the same inputs is byte-identical.
type AggregateKey struct {
	PublicKeys []PublicKey
	// ASK = sum_i LagrangeLi_i = [SK(tau)]_1 for SK = sum_i sk_i * L_i.
	ASK backend.Point
	// VanishingG2 = [Z(tau)]_2, copied from the SRS for direct access.
	VanishingG2 backend.Point
	// RowSums[j] = sum_i LagrangeLiLjZ_i[j] = [(SK*L_j - sk_j*L_j)/Z]_1.
	RowSums []backend.Point
	// PrecomputedPairing = e(ASK, h); encryptors exponentiate it instead
	// of pairing per message.
	PrecomputedPairing backend.Target
	SRS                *kzg.SRS
}

// KeyMaterial bundles everything keygen produces for one protocol
// instance. Secret keys are included because this library performs no
// key distribution; callers split the bundle across parties themselves.
type KeyMaterial struct {
	SecretKeys   []SecretKey
	PublicKeys   []PublicKey
	AggregateKey *AggregateKey
	SRS          *kzg.SRS
}

// aggregateFromKeys derives the aggregate key from a complete key list.
// keys must be ordered by participant ID, one per domain slot.
func aggregateFromKeys(b backend.Backend, srs *kzg.SRS, keys []PublicKey) (*AggregateKey, error) {
	n := len(keys)
	if n == 0 {
		return nil, backend.ConfigErrorf("empty public key list")
	}
	if srs.LagrangeG1 == nil || len(srs.LagrangeG1) != n {
		return nil, backend.ConfigErrorf("srs domain size does not match %d public keys", n)
	}
	for i, pk := range keys {
		if pk.ParticipantID != i {
			return nil, backend.ConfigErrorf("public key at position %d has participant id %d", i, pk.ParticipantID)
		}
		if len(pk.LagrangeLiLjZ) != n {
			return nil, backend.ConfigErrorf("participant %d published %d quotient hints, want %d", i, len(pk.LagrangeLiLjZ), n)
		}
	}

	ask := b.G1().Identity()
	for _, pk := range keys {
		ask = ask.Add(pk.LagrangeLi)
	}
	rowSums := make([]backend.Point, n)
	for j := 0; j < n; j++ {
		sum := b.G1().Identity()
		for i := 0; i < n; i++ {
			sum = sum.Add(keys[i].LagrangeLiLjZ[j])
		}
		rowSums[j] = sum
	}
	pre, err := b.Pair(ask, b.G2().Generator())
	if err != nil {
		return nil, err
	}
	return &AggregateKey{
		PublicKeys:         keys,
		ASK:                ask,
		VanishingG2:        srs.VanishingG2,
		RowSums:            rowSums,
		PrecomputedPairing: pre,
		SRS:                srs,
	}, nil
}
