package backend

import "github.com/cockroachdb/errors"

// Error kinds, matched with errors.Is. The helpers below put the
// sentinel into the wrap chain, so both the standard library's and
// cockroachdb's errors.Is recognize it. Configuration errors are raised
// before any cryptographic work; math errors are raised locally at the
// failing operation and never defaulted.
var (
	// ErrInvalidConfig marks configuration errors: bad party counts,
	// thresholds or domain sizes.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnsupportedBackend marks a backend/curve combination that is not
	// compiled into the registry.
	ErrUnsupportedBackend = errors.New("unsupported backend/curve combination")
	// ErrMath marks local arithmetic failures. The three kinds below
	// wrap it, so matching on ErrMath catches them as well.
	ErrMath = errors.New("math error")
	// ErrDegreeTooLarge marks a polynomial whose degree exceeds the SRS.
	ErrDegreeTooLarge = errors.Wrap(ErrMath, "polynomial degree exceeds srs")
	// ErrEmptyDomain marks an empty or invalid evaluation domain.
	ErrEmptyDomain = errors.Wrap(ErrMath, "invalid evaluation domain")
	// ErrZeroInversion marks a field inversion of zero.
	ErrZeroInversion = errors.Wrap(ErrMath, "inversion of zero")
)

// MathErrorf builds a math error with context.
func MathErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrMath, format, args...)
}

// ConfigErrorf builds a configuration error with context.
func ConfigErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidConfig, format, args...)
}

// DegreeErrorf builds an ErrDegreeTooLarge error with context.
func DegreeErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrDegreeTooLarge, format, args...)
}

// DomainErrorf builds an ErrEmptyDomain error with context.
func DomainErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrEmptyDomain, format, args...)
}
