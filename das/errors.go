package das

import "errors"

// Errors surfaced by the public entry points. Verification failure of a
// well-formed proof is not an error: the verify functions return false
// with a nil error, so gossip validators can tell "malformed" apart
// from "cryptographically invalid".
var (
	// ErrInvalidEncoding covers non-canonical field elements, off-curve
	// or wrong-subgroup points, and curve points of the wrong byte length.
	ErrInvalidEncoding = errors.New("das: invalid encoding")

	// ErrIndexOutOfRange reports a cell or row index past its bound.
	ErrIndexOutOfRange = errors.New("das: index out of range")

	// ErrLengthMismatch reports parallel input slices of unequal length
	// and inputs of the wrong size, such as a blob of the wrong length.
	ErrLengthMismatch = errors.New("das: mismatched input lengths")

	// ErrInsufficientCells reports fewer than half the cells supplied
	// for reconstruction.
	ErrInsufficientCells = errors.New("das: insufficient cells for reconstruction")

	// ErrDuplicateCellIndex reports a repeated cell index in the
	// reconstruction input.
	ErrDuplicateCellIndex = errors.New("das: duplicate cell index")

	// ErrReconstructionMismatch reports that a recovered cell does not
	// match the corresponding input cell, meaning the inputs were
	// corrupted.
	ErrReconstructionMismatch = errors.New("das: reconstructed cells do not match inputs")

	// ErrInvariantViolation reports a failed internal assertion on a
	// constructed vanishing polynomial. It is not recoverable and
	// indicates an implementation bug.
	ErrInvariantViolation = errors.New("das: internal invariant violation")
)
