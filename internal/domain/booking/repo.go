package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/careslot/careslot/pkg/dateonly"
	"github.com/careslot/careslot/pkg/timeofday"
)

type Repository interface {
	// Claim atomically inserts an occupying appointment. The store
	// guarantees that for a given bed and overlapping window at most one
	// occupying row exists and that the session's capacity is not
	// exceeded; violations surface as ConflictError with no row
	// persisted.
	Claim(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// UpdateStatus moves an appointment from one status to another. It
	// fails with StateTransitionError when the row is no longer in the
	// from status, so concurrent transitions cannot race past each
	// other.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error

	// ListOccupying returns occupying appointments at a center whose
	// window overlaps [start,end) on the date.
	ListOccupying(ctx context.Context, centerID uuid.UUID, date dateonly.Date, start, end timeofday.TimeOfDay) ([]*Appointment, error)

	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)

	// InTx runs fn within one storage transaction. Used by reschedule so
	// its cancel and claim commit or roll back together.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
