package nocopyring

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientReservableSpace is returned when Reserve asks for more than Reservable.
	ErrInsufficientReservableSpace = errors.New("nocopyring: insufficient reservable space")
	// ErrInsufficientCommittableSpace is returned when Commit or Unreserve asks for more than Committable.
	ErrInsufficientCommittableSpace = errors.New("nocopyring: insufficient committable space")
	// ErrInsufficientReadableSpace is returned when PeekRead or ConsumeRead asks for more than Readable.
	ErrInsufficientReadableSpace = errors.New("nocopyring: insufficient readable space")
	// ErrRequestExceedsCapacity is returned for any window longer than the ring.
	ErrRequestExceedsCapacity = errors.New("nocopyring: request exceeds capacity")

	// ErrInvalidCapacity is returned by New for a capacity below one.
	ErrInvalidCapacity = errors.New("nocopyring: capacity must be positive")
	// ErrInvalidLength is returned for negative element counts.
	ErrInvalidLength = errors.New("nocopyring: negative length")
	// ErrPartialCommit is returned in strict commit mode when a count would
	// split an outstanding reservation.
	ErrPartialCommit = errors.New("nocopyring: count does not align with reservations")
	// ErrOutstandingReservations is returned by Write while earlier
	// reservations are still uncommitted.
	ErrOutstandingReservations = errors.New("nocopyring: reservations outstanding")
	// ErrStaleView is returned when a view is used after a mutating call on the
	// side of the ring that issued it.
	ErrStaleView = errors.New("nocopyring: view used after invalidating call")

	// ErrNilMember is returned when a nil Committer is added to a CommitGroup.
	ErrNilMember = errors.New("nocopyring: nil group member")
	// ErrDuplicateMember is returned when a CommitGroup already holds the
	// writer side of the added member.
	ErrDuplicateMember = errors.New("nocopyring: ring already in group")
)

// SpaceError reports a rejected request together with the size that was
// available at the time. Err is one of the package sentinels.
type SpaceError struct {
	Op        string
	Requested int
	Available int
	Err       error
}

func (e *SpaceError) Error() string {
	return fmt.Sprintf("%v (%s: requested %d, available %d)", e.Err, e.Op, e.Requested, e.Available)
}

func (e *SpaceError) Unwrap() error {
	return e.Err
}

func spaceError(op string, err error, requested, available int) *SpaceError {
	return &SpaceError{Op: op, Requested: requested, Available: available, Err: err}
}

// reason maps a sentinel to the metric label used for rejections.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientReservableSpace):
		return "insufficient_reservable"
	case errors.Is(err, ErrInsufficientCommittableSpace):
		return "insufficient_committable"
	case errors.Is(err, ErrInsufficientReadableSpace):
		return "insufficient_readable"
	case errors.Is(err, ErrRequestExceedsCapacity):
		return "exceeds_capacity"
	case errors.Is(err, ErrPartialCommit):
		return "partial_commit"
	case errors.Is(err, ErrOutstandingReservations):
		return "outstanding_reservations"
	case errors.Is(err, ErrInvalidLength):
		return "invalid_length"
	default:
		return "unknown"
	}
}
