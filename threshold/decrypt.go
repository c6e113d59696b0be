package threshold

import (
	"crypto/rand"

	"github.com/tesslib/tess/backend"
	"github.com/tesslib/tess/lagrange"
	"github.com/tesslib/tess/symenc"
)

// PartialDecryption is one participant's decryption share.
type PartialDecryption struct {
	ParticipantID int
	// Response = sk * GammaG2.
	Response backend.Point
}

// DecryptionResult is the output of a successful aggregate decryption.
type DecryptionResult struct {
	Plaintext []byte
	// SharedSecret is the re-derived pairing value the keystream was
	// keyed with.
	SharedSecret backend.Target
	// OpeningProof holds the serialized quotient commitment and
	// correction aggregate, populated only when requested.
	OpeningProof []byte
}

// DecryptOption tweaks AggregateDecrypt.
type DecryptOption func(*decryptOptions)

type decryptOptions struct {
	openingProof bool
}

// WithOpeningProof asks for the intermediate commitment material to be
// serialized into the result.
func WithOpeningProof() DecryptOption {
	return func(o *decryptOptions) { o.openingProof = true }
}

// PartialDecrypt produces a participant's share for the ciphertext. It
// is stateless and safe to run concurrently with any other operation.
func (s *Scheme) PartialDecrypt(sk SecretKey, ct *Ciphertext) (*PartialDecryption, error) {
	if ct == nil || ct.GammaG2 == nil {
		return nil, backend.ConfigErrorf("nil ciphertext")
	}
	return &PartialDecryption{
		ParticipantID: sk.ParticipantID,
		Response:      ct.GammaG2.ScalarMul(sk.Scalar),
	}, nil
}

// AggregateDecrypt combines the partial decryptions named by selector
// into the plaintext. selector has one entry per participant; partials
// must cover the selected set exactly. Strictly more than ct.Threshold
// parties must be selected. Every proof element and every share is
// verified with pairing checks before any of them influences the
// output, so a forged share surfaces as ErrVerification rather than as
// garbage plaintext.
func (s *Scheme) AggregateDecrypt(ct *Ciphertext, partials []PartialDecryption, selector []bool, aggKey *AggregateKey, opts ...DecryptOption) (*DecryptionResult, error) {
	var o decryptOptions
	for _, opt := range opts {
		opt(&o)
	}

	n := len(aggKey.PublicKeys)
	if len(selector) != n {
		return nil, inconsistentf("selector has %d entries for %d participants", len(selector), n)
	}
	selected := make([]int, 0, len(partials))
	for i, on := range selector {
		if on {
			selected = append(selected, i)
		}
	}
	if len(selected) < ct.Threshold+1 {
		return nil, insufficientf("%d shares selected, need at least %d", len(selected), ct.Threshold+1)
	}
	responses, err := matchPartials(selected, partials, selector)
	if err != nil {
		return nil, err
	}
	if err := s.verifyCiphertext(ct, aggKey); err != nil {
		return nil, err
	}
	if err := s.verifyShares(ct, aggKey, selected, responses); err != nil {
		return nil, err
	}

	f := s.b.Field()
	srs := aggKey.SRS
	dom, err := lagrange.NewDomain(f, n)
	if err != nil {
		return nil, err
	}

	// Weights b_i = n * c_i for the at-zero interpolation coefficients
	// c_i; equivalently the selector polynomial b with b(0) = 1 and
	// roots at every unselected domain point, evaluated at omega^i.
	coeffs, err := dom.AtZeroCoefficients(selected)
	if err != nil {
		return nil, err
	}
	nScalar := f.FromUint64(uint64(n))
	weights := make([]backend.Scalar, len(coeffs))
	for i := range coeffs {
		weights[i] = coeffs[i].Mul(nScalar)
	}

	// D1 = prod e([L_i(tau)]_1, b_i * response_i) = e(g,h)^(gamma*N(tau))
	// for N = sum_selected sk_i * b_i * L_i.
	lagG1 := make([]backend.Point, len(selected))
	weighted := make([]backend.Point, len(selected))
	for k, i := range selected {
		lagG1[k] = srs.LagrangeG1[i]
		weighted[k] = responses[k].ScalarMul(weights[k])
	}
	d1, err := s.b.MultiPair(lagG1, weighted)
	if err != nil {
		return nil, err
	}

	// D2 = e(sum b_j * RowSums[j], gamma*[Z(tau)]_2)
	//    = e(g,h)^(gamma*Z(tau)*Q(tau)) for the quotient Q of SK*b.
	rows := make([]backend.Point, len(selected))
	for k, i := range selected {
		rows[k] = aggKey.RowSums[i]
	}
	qc, err := s.b.G1().MSM(rows, weights)
	if err != nil {
		return nil, err
	}
	d2, err := s.b.Pair(qc, ct.ProofG2[len(ct.ProofG2)-1])
	if err != nil {
		return nil, err
	}

	// The selector polynomial satisfies b(tau) = 1 + tau*bhat(tau); the
	// correction strips the bhat part so D1*D2/C collapses to
	// e(g,h)^(gamma*SK(tau)).
	correction, corrPoint, err := s.correctionTerm(ct, aggKey, dom, selected)
	if err != nil {
		return nil, err
	}

	derived := d1.Mul(d2).Mul(correction.Inverse())
	expected, err := s.b.Pair(aggKey.ASK, ct.GammaG2)
	if err != nil {
		return nil, err
	}
	if !derived.Equal(expected) {
		return nil, verificationf("reconstructed secret does not match the aggregate key")
	}

	res := &DecryptionResult{
		Plaintext:    symenc.DecryptPayload(derived.Bytes(), ct.Payload),
		SharedSecret: derived,
	}
	if o.openingProof {
		proof := qc.Bytes()
		if corrPoint != nil {
			proof = append(proof, corrPoint.Bytes()...)
		}
		res.OpeningProof = proof
	}
	return res, nil
}

// matchPartials pairs each selected index with its response, rejecting
// duplicates, unknown participants and shares from unselected parties.
// The returned slice is ordered like selected.
func matchPartials(selected []int, partials []PartialDecryption, selector []bool) ([]backend.Point, error) {
	if len(partials) != len(selected) {
		return nil, inconsistentf("%d partial decryptions for %d selected participants", len(partials), len(selected))
	}
	byID := make(map[int]backend.Point, len(partials))
	for _, p := range partials {
		if p.ParticipantID < 0 || p.ParticipantID >= len(selector) {
			return nil, inconsistentf("partial decryption from unknown participant %d", p.ParticipantID)
		}
		if !selector[p.ParticipantID] {
			return nil, inconsistentf("participant %d provided a share but is not selected", p.ParticipantID)
		}
		if _, dup := byID[p.ParticipantID]; dup {
			return nil, inconsistentf("duplicate share from participant %d", p.ParticipantID)
		}
		byID[p.ParticipantID] = p.Response
	}
	out := make([]backend.Point, len(selected))
	for k, i := range selected {
		r, ok := byID[i]
		if !ok {
			return nil, inconsistentf("selected participant %d provided no share", i)
		}
		out[k] = r
	}
	return out, nil
}

// verifyCiphertext checks the structural pairing relations of the proof
// elements: ProofG1[0] and GammaG2 share the same scalar, ProofG1[1] is
// that scalar times the vanishing commitment in both groups, and every
// published G2 power carries it too (batched with a random challenge).
func (s *Scheme) verifyCiphertext(ct *Ciphertext, aggKey *AggregateKey) error {
	srs := aggKey.SRS
	if len(ct.ProofG1) != 2 || len(ct.ProofG2) < 1 {
		return verificationf("malformed ciphertext proof vectors")
	}
	g := s.b.G1().Generator()
	h := s.b.G2().Generator()
	last := ct.ProofG2[len(ct.ProofG2)-1]

	// e(ProofG1[0], h) == e(g, GammaG2)
	ok, err := s.b.PairingCheck(
		[]backend.Point{ct.ProofG1[0], g.Neg()},
		[]backend.Point{h, ct.GammaG2})
	if err != nil {
		return err
	}
	if !ok {
		return verificationf("gamma commitment mismatch between groups")
	}
	// e(ProofG1[0], VanishingG2) == e(ProofG1[1], h)
	ok, err = s.b.PairingCheck(
		[]backend.Point{ct.ProofG1[0], ct.ProofG1[1].Neg()},
		[]backend.Point{aggKey.VanishingG2, h})
	if err != nil {
		return err
	}
	if !ok {
		return verificationf("vanishing commitment mismatch in G1")
	}
	// e(g, ProofG2[last]) == e(ProofG1[1], h)
	ok, err = s.b.PairingCheck(
		[]backend.Point{g, ct.ProofG1[1].Neg()},
		[]backend.Point{last, h})
	if err != nil {
		return err
	}
	if !ok {
		return verificationf("vanishing commitment mismatch in G2")
	}

	// Batched power check: for a random rho,
	// e(sum rho^k*[tau^k]_1, GammaG2) == e(g, sum rho^k*ProofG2[k]).
	powers := len(ct.ProofG2) - 1
	if powers == 0 {
		return nil
	}
	if powers > srs.MaxDegree {
		return verificationf("ciphertext publishes %d powers, srs holds %d", powers, srs.MaxDegree)
	}
	f := s.b.Field()
	rho, err := f.Random(rand.Reader)
	if err != nil {
		return err
	}
	rhoPows := make([]backend.Scalar, powers)
	cur := f.One()
	for k := 0; k < powers; k++ {
		rhoPows[k] = cur
		cur = cur.Mul(rho)
	}
	lhs, err := s.b.G1().MSM(srs.PowersG1[:powers], rhoPows)
	if err != nil {
		return err
	}
	rhs, err := s.b.G2().MSM(ct.ProofG2[:powers], rhoPows)
	if err != nil {
		return err
	}
	ok, err = s.b.PairingCheck(
		[]backend.Point{lhs, g.Neg()},
		[]backend.Point{ct.GammaG2, rhs})
	if err != nil {
		return err
	}
	if !ok {
		return verificationf("power sequence check failed")
	}
	return nil
}

// verifyShares runs the BLS consistency check
// e(BLSKey_i, GammaG2) == e(g, response_i) per selected share.
func (s *Scheme) verifyShares(ct *Ciphertext, aggKey *AggregateKey, selected []int, responses []backend.Point) error {
	g := s.b.G1().Generator()
	for k, i := range selected {
		ok, err := s.b.PairingCheck(
			[]backend.Point{aggKey.PublicKeys[i].BLSKey, g.Neg()},
			[]backend.Point{ct.GammaG2, responses[k]})
		if err != nil {
			return err
		}
		if !ok {
			return verificationf("share from participant %d fails the key check", i)
		}
	}
	return nil
}

// correctionTerm computes C = e(ASK, sum_k bhat_k * ProofG2[k+1]) for
// bhat = (b - 1)/X. With every party selected b is the constant 1, bhat
// is empty and C is the target identity.
func (s *Scheme) correctionTerm(ct *Ciphertext, aggKey *AggregateKey, dom *lagrange.Domain, selected []int) (backend.Target, backend.Point, error) {
	f := dom.F
	isSelected := make([]bool, dom.N)
	for _, i := range selected {
		isSelected[i] = true
	}
	// Roots of b: the field zero point is the anchor (b(0) = 1), every
	// unselected domain point a root.
	points := make([]backend.Scalar, 0, dom.N-len(selected)+1)
	points = append(points, f.Zero())
	for i := 0; i < dom.N; i++ {
		if !isSelected[i] {
			points = append(points, dom.Points[i])
		}
	}
	bpoly, err := lagrange.InterpMostlyZero(f, f.One(), points)
	if err != nil {
		return nil, nil, err
	}
	bhat := bpoly[1:]
	if len(bhat) == 0 {
		return s.b.TargetOne(), nil, nil
	}
	// The last ProofG2 entry is the vanishing commitment, not a power;
	// bhat may only consume indices 1..len-2.
	if len(bhat) > len(ct.ProofG2)-2 {
		return nil, nil, verificationf("ciphertext publishes too few powers for %d selected shares", len(selected))
	}
	bases := make([]backend.Point, len(bhat))
	for k := range bhat {
		bases[k] = ct.ProofG2[k+1]
	}
	agg, err := s.b.G2().MSM(bases, bhat)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.b.Pair(aggKey.ASK, agg)
	if err != nil {
		return nil, nil, err
	}
	return c, agg, nil
}
