package insts

import "errors"

// Sentinel errors classifying why a decode failed. Every error returned by
// this package wraps exactly one of these, so callers can classify failures
// with errors.Is while still getting the offending bit pattern in the
// message.
var (
	// ErrTruncated reports fewer input bytes than the classified
	// instruction width requires.
	ErrTruncated = errors.New("truncated instruction")

	// ErrInvalidCondition reports a condition code outside 0-14.
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrInvalidRegister reports a register code outside 0-15.
	ErrInvalidRegister = errors.New("invalid register")

	// ErrInvalidSpecialRegister reports a system register code outside the
	// defined sparse set.
	ErrInvalidSpecialRegister = errors.New("invalid special register")

	// ErrUnsupportedEncoding reports opcode bits in a region that is
	// architecturally unpredictable, permanently undefined, or outside the
	// ARMv6-M subset.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)
