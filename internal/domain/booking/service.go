package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careslot/careslot/internal/domain/center"
	"github.com/careslot/careslot/internal/domain/scheduling"
	"github.com/careslot/careslot/internal/platform/apperror"
	"github.com/careslot/careslot/internal/platform/events"
	"github.com/careslot/careslot/pkg/dateonly"
	"github.com/careslot/careslot/pkg/timeofday"
)

// SessionCatalog is the slice of the scheduling service this package
// needs.
type SessionCatalog interface {
	GetSession(ctx context.Context, id uuid.UUID) (*scheduling.Session, error)
}

// BedDirectory is the slice of the center service this package needs.
type BedDirectory interface {
	GetBed(ctx context.Context, id uuid.UUID) (*center.Bed, error)
	ListActiveBeds(ctx context.Context, centerID uuid.UUID) ([]*center.Bed, error)
}

// Config tunes booking behaviour.
type Config struct {
	// AllowSameDay permits claims against sessions dated today.
	AllowSameDay bool
}

type Service struct {
	appts    Repository
	sessions SessionCatalog
	beds     BedDirectory
	events   events.Publisher
	logger   zerolog.Logger
	cfg      Config
	now      func() time.Time
}

func NewService(appts Repository, sessions SessionCatalog, beds BedDirectory, pub events.Publisher, logger zerolog.Logger, cfg Config) *Service {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Service{
		appts:    appts,
		sessions: sessions,
		beds:     beds,
		events:   pub,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// -- Availability --

// AvailableBeds returns the active beds at the session's center that no
// occupying appointment claims for an overlapping window on that date.
func (s *Service) AvailableBeds(ctx context.Context, sessionID uuid.UUID) ([]*center.Bed, error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.freeBeds(ctx, sess.CenterID, sess.Date, sess.Start, sess.End)
}

// AdHocAvailability answers the same question for an arbitrary window
// with no pre-existing session, for cross-session conflict checks.
func (s *Service) AdHocAvailability(ctx context.Context, centerID uuid.UUID, date dateonly.Date, start, end timeofday.TimeOfDay) ([]*center.Bed, error) {
	if !start.Valid() || !end.Valid() || start >= end {
		return nil, apperror.Validation("start must be before end")
	}
	if date.IsZero() {
		return nil, apperror.Validation("date is required")
	}
	return s.freeBeds(ctx, centerID, date, start, end)
}

func (s *Service) freeBeds(ctx context.Context, centerID uuid.UUID, date dateonly.Date, start, end timeofday.TimeOfDay) ([]*center.Bed, error) {
	beds, err := s.beds.ListActiveBeds(ctx, centerID)
	if err != nil {
		return nil, err
	}
	occupying, err := s.appts.ListOccupying(ctx, centerID, date, start, end)
	if err != nil {
		return nil, err
	}

	taken := make(map[uuid.UUID]bool, len(occupying))
	for _, a := range occupying {
		if a.BedID != nil {
			taken[*a.BedID] = true
		}
	}

	free := make([]*center.Bed, 0, len(beds))
	for _, b := range beds {
		if !taken[b.ID] {
			free = append(free, b)
		}
	}
	return free, nil
}

// -- Claims --

// ClaimRequest asks to convert a free bed into a booked appointment.
type ClaimRequest struct {
	SessionID uuid.UUID  `json:"session_id"`
	BedID     uuid.UUID  `json:"bed_id"`
	PatientID uuid.UUID  `json:"patient_id"`
	StaffID   *uuid.UUID `json:"staff_id,omitempty"`
	DoctorID  *uuid.UUID `json:"doctor_id,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

// Claim books a bed for a session window. The availability check and
// the insert are one atomic unit at the store, so of two concurrent
// claims for the same bed and overlapping window exactly one succeeds;
// the loser gets a ConflictError and no row is persisted.
func (s *Service) Claim(ctx context.Context, req ClaimRequest) (*Appointment, error) {
	a, err := s.claim(ctx, req)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "appointment.booked", a)
	return a, nil
}

// claim validates and persists the appointment without emitting events,
// so callers holding an open transaction can defer publication until
// after commit.
func (s *Service) claim(ctx context.Context, req ClaimRequest) (*Appointment, error) {
	if req.SessionID == uuid.Nil {
		return nil, apperror.Validation("session_id is required")
	}
	if req.BedID == uuid.Nil {
		return nil, apperror.Validation("bed_id is required")
	}
	if req.PatientID == uuid.Nil {
		return nil, apperror.Validation("patient_id is required")
	}

	sess, err := s.sessions.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	today := dateonly.Of(s.now())
	if sess.Date.Before(today) {
		return nil, apperror.Validation("session is in the past")
	}
	if !s.cfg.AllowSameDay && sess.Date.Equal(today) {
		return nil, apperror.Validation("same-day booking is not allowed")
	}

	bed, err := s.beds.GetBed(ctx, req.BedID)
	if err != nil {
		return nil, err
	}
	if bed.CenterID != sess.CenterID {
		return nil, apperror.Validation("bed does not belong to the session's center")
	}
	if !bed.Active {
		return nil, apperror.Validation("bed is inactive")
	}

	bedID := req.BedID
	patientID := req.PatientID
	a := &Appointment{
		SessionID: sess.ID,
		BedID:     &bedID,
		PatientID: &patientID,
		StaffID:   req.StaffID,
		DoctorID:  req.DoctorID,
		Status:    StatusBooked,
		Notes:     req.Notes,
		CenterID:  sess.CenterID,
		Date:      sess.Date,
		Start:     sess.Start,
		End:       sess.End,
	}
	if err := s.appts.Claim(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// -- Lifecycle --

// Cancel moves an occupying appointment to cancelled, freeing its bed
// for subsequent overlap computations immediately.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCancelled, "appointment.cancelled")
}

// Complete closes out a booked appointment.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCompleted, "appointment.completed")
}

// MarkNoShow records that the patient did not arrive.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusNoShow, "appointment.no_show")
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status, eventType string) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, to) {
		return nil, apperror.StateTransition("cannot move appointment from %s to %s", a.Status, to)
	}
	if err := s.appts.UpdateStatus(ctx, id, a.Status, to); err != nil {
		return nil, err
	}
	a.Status = to

	s.publish(ctx, eventType, a)
	return a, nil
}

// Reschedule cancels an appointment and claims a new bed as one
// transaction; it never mutates the existing row in place, so the
// availability check cannot be bypassed. On conflict nothing changes.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newSessionID, newBedID uuid.UUID) (*Appointment, error) {
	old, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !old.Status.Occupying() {
		return nil, apperror.StateTransition("cannot reschedule a %s appointment", old.Status)
	}
	if old.PatientID == nil {
		return nil, apperror.Validation("appointment has no patient")
	}

	var created *Appointment
	err = s.appts.InTx(ctx, func(ctx context.Context) error {
		if err := s.appts.UpdateStatus(ctx, id, old.Status, StatusCancelled); err != nil {
			return err
		}
		a, err := s.claim(ctx, ClaimRequest{
			SessionID: newSessionID,
			BedID:     newBedID,
			PatientID: *old.PatientID,
			StaffID:   old.StaffID,
			DoctorID:  old.DoctorID,
			Notes:     old.Notes,
		})
		if err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Events go out only once the transaction has committed; a failed
	// reschedule emits nothing.
	old.Status = StatusCancelled
	s.publish(ctx, "appointment.cancelled", old)
	s.publish(ctx, "appointment.booked", created)
	s.publish(ctx, "appointment.rescheduled", created)
	return created, nil
}

// -- Queries --

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.List(ctx, f, limit, offset)
}

// publish emits a lifecycle event. Failures are logged, never surfaced:
// the booking itself has already committed.
func (s *Service) publish(ctx context.Context, eventType string, a *Appointment) {
	evt := events.NewEvent(eventType, a.ID.String(), a)
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).
			Str("appointment_id", a.ID.String()).Msg("event publish failed")
	}
}
