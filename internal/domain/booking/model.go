package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/careslot/careslot/pkg/dateonly"
	"github.com/careslot/careslot/pkg/timeofday"
)

// Status is an appointment lifecycle state.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Occupying reports whether the status counts against availability.
// Cancelled and no-show appointments free their bed.
func (s Status) Occupying() bool {
	return s == StatusScheduled || s == StatusBooked
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

var transitions = map[Status][]Status{
	StatusScheduled: {StatusBooked, StatusCancelled},
	StatusBooked:    {StatusCompleted, StatusCancelled, StatusNoShow},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment is a claim against one bed within one session. The
// center, date and window are denormalized from the session at claim
// time so the store can enforce bed exclusivity without a join.
type Appointment struct {
	ID        uuid.UUID           `db:"id" json:"id"`
	SessionID uuid.UUID           `db:"session_id" json:"session_id"`
	BedID     *uuid.UUID          `db:"bed_id" json:"bed_id,omitempty"`
	PatientID *uuid.UUID          `db:"patient_id" json:"patient_id,omitempty"`
	StaffID   *uuid.UUID          `db:"staff_id" json:"staff_id,omitempty"`
	DoctorID  *uuid.UUID          `db:"doctor_id" json:"doctor_id,omitempty"`
	Status    Status              `db:"status" json:"status"`
	Notes     *string             `db:"notes" json:"notes,omitempty"`
	CenterID  uuid.UUID           `db:"center_id" json:"center_id"`
	Date      dateonly.Date       `db:"date" json:"date"`
	Start     timeofday.TimeOfDay `db:"start_min" json:"start"`
	End       timeofday.TimeOfDay `db:"end_min" json:"end"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt time.Time           `db:"updated_at" json:"updated_at"`
}

// Overlaps reports whether the appointment's window intersects a
// half-open window on the same date at the same center.
func (a *Appointment) Overlaps(centerID uuid.UUID, date dateonly.Date, start, end timeofday.TimeOfDay) bool {
	if a.CenterID != centerID || !a.Date.Equal(date) {
		return false
	}
	return timeofday.Overlaps(a.Start, a.End, start, end)
}

// Filter narrows appointment listings.
type Filter struct {
	PatientID *uuid.UUID
	SessionID *uuid.UUID
	CenterID  *uuid.UUID
	Status    *Status
}
