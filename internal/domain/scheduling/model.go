package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/careslot/careslot/internal/platform/apperror"
	"github.com/careslot/careslot/pkg/dateonly"
	"github.com/careslot/careslot/pkg/timeofday"
)

// Cadence controls how a template expands: weekly repeats a single
// weekday, daily fans a weekday group out over every constituent day.
type Cadence string

const (
	CadenceWeekly Cadence = "weekly"
	CadenceDaily  Cadence = "daily"
)

// WeekdayGroup names a fixed set of weekdays.
type WeekdayGroup string

const (
	GroupWeekdays WeekdayGroup = "weekdays"
	GroupWeekend  WeekdayGroup = "weekend"
)

// Days returns the weekdays a group stands for.
func (g WeekdayGroup) Days() []time.Weekday {
	switch g {
	case GroupWeekdays:
		return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	case GroupWeekend:
		return []time.Weekday{time.Saturday, time.Sunday}
	}
	return nil
}

type TemplateStatus string

const (
	TemplateActive   TemplateStatus = "active"
	TemplateInactive TemplateStatus = "inactive"
)

// SessionTemplate is a recurring rule describing intended future
// capacity at a center. Exactly one of Weekday or WeekdayGroup is set,
// matching the cadence.
type SessionTemplate struct {
	ID           uuid.UUID           `db:"id" json:"id"`
	CenterID     uuid.UUID           `db:"center_id" json:"center_id"`
	StaffID      *uuid.UUID          `db:"staff_id" json:"staff_id,omitempty"`
	DoctorID     *uuid.UUID          `db:"doctor_id" json:"doctor_id,omitempty"`
	Weekday      *time.Weekday       `db:"weekday" json:"weekday,omitempty"`
	WeekdayGroup *WeekdayGroup       `db:"weekday_group" json:"weekday_group,omitempty"`
	Start        timeofday.TimeOfDay `db:"start_min" json:"start"`
	End          timeofday.TimeOfDay `db:"end_min" json:"end"`
	Capacity     int                 `db:"capacity" json:"capacity"`
	Cadence      Cadence             `db:"cadence" json:"cadence"`
	Status       TemplateStatus      `db:"status" json:"status"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}

// Validate checks the template against the owning center's total
// capacity.
func (t *SessionTemplate) Validate(centerCapacity int) error {
	if t.CenterID == uuid.Nil {
		return apperror.Validation("center_id is required")
	}
	if !t.Start.Valid() || !t.End.Valid() {
		return apperror.Validation("time window out of range")
	}
	if t.Start >= t.End {
		return apperror.Validation("start must be before end")
	}
	if t.Capacity <= 0 {
		return apperror.Validation("capacity must be positive")
	}
	if t.Capacity > centerCapacity {
		return apperror.Validation("capacity %d exceeds center capacity %d", t.Capacity, centerCapacity)
	}
	switch t.Cadence {
	case CadenceWeekly:
		if t.Weekday == nil || t.WeekdayGroup != nil {
			return apperror.Validation("weekly cadence requires a single weekday")
		}
		if *t.Weekday < time.Sunday || *t.Weekday > time.Saturday {
			return apperror.Validation("weekday must be between 0 and 6")
		}
	case CadenceDaily:
		if t.WeekdayGroup == nil || t.Weekday != nil {
			return apperror.Validation("daily cadence requires a weekday group")
		}
		if len(t.WeekdayGroup.Days()) == 0 {
			return apperror.Validation("unknown weekday group %q", *t.WeekdayGroup)
		}
	default:
		return apperror.Validation("cadence must be weekly or daily")
	}
	switch t.Status {
	case TemplateActive, TemplateInactive:
	default:
		return apperror.Validation("status must be active or inactive")
	}
	return nil
}

// Weekdays resolves the template's selector to the weekdays it covers.
func (t *SessionTemplate) Weekdays() []time.Weekday {
	if t.Weekday != nil {
		return []time.Weekday{*t.Weekday}
	}
	if t.WeekdayGroup != nil {
		return t.WeekdayGroup.Days()
	}
	return nil
}

// TemplateUpdate is an explicit partial update. A nil field means the
// field is left unchanged; the merged result is validated as a whole.
type TemplateUpdate struct {
	StaffID  *uuid.UUID           `json:"staff_id,omitempty"`
	DoctorID *uuid.UUID           `json:"doctor_id,omitempty"`
	Start    *timeofday.TimeOfDay `json:"start,omitempty"`
	End      *timeofday.TimeOfDay `json:"end,omitempty"`
	Capacity *int                 `json:"capacity,omitempty"`
	Status   *TemplateStatus      `json:"status,omitempty"`
}

// Apply merges the update onto a template.
func (u TemplateUpdate) Apply(t *SessionTemplate) {
	if u.StaffID != nil {
		t.StaffID = u.StaffID
	}
	if u.DoctorID != nil {
		t.DoctorID = u.DoctorID
	}
	if u.Start != nil {
		t.Start = *u.Start
	}
	if u.End != nil {
		t.End = *u.End
	}
	if u.Capacity != nil {
		t.Capacity = *u.Capacity
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
}

// Session is one concrete dated occurrence of capacity at a center,
// generated from a template or created directly by an admin.
type Session struct {
	ID         uuid.UUID           `db:"id" json:"id"`
	CenterID   uuid.UUID           `db:"center_id" json:"center_id"`
	TemplateID *uuid.UUID          `db:"template_id" json:"template_id,omitempty"`
	Date       dateonly.Date       `db:"date" json:"date"`
	Start      timeofday.TimeOfDay `db:"start_min" json:"start"`
	End        timeofday.TimeOfDay `db:"end_min" json:"end"`
	Capacity   int                 `db:"capacity" json:"capacity"`
	Notes      *string             `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `db:"updated_at" json:"updated_at"`
}

func (s *Session) Validate() error {
	if s.CenterID == uuid.Nil {
		return apperror.Validation("center_id is required")
	}
	if s.Date.IsZero() {
		return apperror.Validation("date is required")
	}
	if !s.Start.Valid() || !s.End.Valid() {
		return apperror.Validation("time window out of range")
	}
	if s.Start >= s.End {
		return apperror.Validation("start must be before end")
	}
	if s.Capacity <= 0 {
		return apperror.Validation("capacity must be positive")
	}
	return nil
}

// SessionUpdate is an explicit partial update for a session. Date and
// time edits are only permitted while the session is in the future and
// no appointment references it; capacity and notes are always editable.
type SessionUpdate struct {
	Date     *dateonly.Date       `json:"date,omitempty"`
	Start    *timeofday.TimeOfDay `json:"start,omitempty"`
	End      *timeofday.TimeOfDay `json:"end,omitempty"`
	Capacity *int                 `json:"capacity,omitempty"`
	Notes    *string              `json:"notes,omitempty"`
}

// TouchesSchedule reports whether the update changes the session's date
// or time window.
func (u SessionUpdate) TouchesSchedule() bool {
	return u.Date != nil || u.Start != nil || u.End != nil
}

// Apply merges the update onto a session.
func (u SessionUpdate) Apply(s *Session) {
	if u.Date != nil {
		s.Date = *u.Date
	}
	if u.Start != nil {
		s.Start = *u.Start
	}
	if u.End != nil {
		s.End = *u.End
	}
	if u.Capacity != nil {
		s.Capacity = *u.Capacity
	}
	if u.Notes != nil {
		s.Notes = u.Notes
	}
}
