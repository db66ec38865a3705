package wirefit

import "errors"

// Error wraps a learner failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap satisfies the errors.Unwrap convention
func (e *Error) Unwrap() error {
	return e.Err
}

var errDimensionMismatch = errors.New("dimension mismatch")

var errInvalidSequence = errors.New("invalid call sequence")

var errInvalidConfig = errors.New("invalid configuration")

// IsDimensionMismatch returns whether an error reports that a state,
// action, or approximator output vector did not match the learner's
// configured dimensions.
func IsDimensionMismatch(err error) bool {
	return errors.Is(err, errDimensionMismatch)
}

// IsInvalidSequence returns whether an error reports a violation of
// the learner's decide-then-reinforce protocol: reinforcement applied
// with no action outstanding, or an action chosen while the previous
// one still awaits reinforcement.
func IsInvalidSequence(err error) bool {
	return errors.Is(err, errInvalidSequence)
}

// IsConfigurationError returns whether an error reports an invalid
// learner configuration.
func IsConfigurationError(err error) bool {
	return errors.Is(err, errInvalidConfig)
}
