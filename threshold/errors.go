package threshold

import (
	"github.com/cockroachdb/errors"
)

// Protocol error kinds, matched with errors.Is. The helpers wrap the
// sentinel so the standard library's errors.Is sees it too.
var (
	// ErrInsufficientShares is returned when the selected signer set is
	// not larger than the ciphertext threshold.
	ErrInsufficientShares = errors.New("not enough decryption shares")
	// ErrInconsistentShares is returned when the partial decryptions do
	// not match the selector: wrong length, duplicate participants, or a
	// participant outside the selected set.
	ErrInconsistentShares = errors.New("partial decryptions inconsistent with selector")
	// ErrVerification is returned when a ciphertext or share fails a
	// pairing consistency check.
	ErrVerification = errors.New("verification failed")
)

func insufficientf(format string, args ...any) error {
	return errors.Wrapf(ErrInsufficientShares, format, args...)
}

func inconsistentf(format string, args ...any) error {
	return errors.Wrapf(ErrInconsistentShares, format, args...)
}

func verificationf(format string, args ...any) error {
	return errors.Wrapf(ErrVerification, format, args...)
}
