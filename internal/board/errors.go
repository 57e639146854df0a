package board

import "errors"

// Configuration errors, reported at construction and never recovered
// internally.
var (
	ErrBadDimensions = errors.New("board: non-positive dimensions")
	ErrBadLattice    = errors.New("board: invalid peg lattice parameters")
	ErrBadBuckets    = errors.New("board: invalid bucket configuration")
	ErrUnknownRisk   = errors.New("board: unknown payout risk level")
	ErrNoPayoutTable = errors.New("board: no payout table for bucket count")
)
