package lattice

import "errors"

// The three error kinds of §7. Bindings across the ABI never see these
// directly (failures there become a null handle or a zero count); Go
// callers get them wrapped with fmt.Errorf("%w", ...) so errors.Is still
// matches.
var (
	// ErrInput marks a construction-time input problem: an empty phrase,
	// a nil handle's Go-side equivalent, a negative size.
	ErrInput = errors.New("parattice: invalid input")

	// ErrDecode marks a malformed or inconsistent serialized lattice: bad
	// magic, bad version, checksum mismatch, or a violated invariant.
	ErrDecode = errors.New("parattice: decode error")

	// ErrCapacity marks a caller-supplied output buffer smaller than the
	// capacity reported by the matching size query.
	ErrCapacity = errors.New("parattice: capacity error")
)
