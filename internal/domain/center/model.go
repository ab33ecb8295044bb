package center

import (
	"time"

	"github.com/google/uuid"

	"github.com/careslot/careslot/internal/platform/apperror"
	"github.com/careslot/careslot/pkg/timeofday"
)

// Center is a physical treatment location with a fixed bed capacity.
type Center struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (c *Center) Validate() error {
	if c.Name == "" {
		return apperror.Validation("name is required")
	}
	if c.Capacity <= 0 {
		return apperror.Validation("capacity must be positive")
	}
	return nil
}

// Hours is the operating window for one weekday at a center. At most one
// row exists per (center, weekday); a missing row means no constraint is
// enforced for that weekday.
type Hours struct {
	CenterID uuid.UUID           `db:"center_id" json:"center_id"`
	Weekday  time.Weekday        `db:"weekday" json:"weekday"`
	Open     timeofday.TimeOfDay `db:"open_min" json:"open"`
	Close    timeofday.TimeOfDay `db:"close_min" json:"close"`
}

func (h *Hours) Validate() error {
	if h.Weekday < time.Sunday || h.Weekday > time.Saturday {
		return apperror.Validation("weekday must be between 0 and 6")
	}
	if !h.Open.Valid() || !h.Close.Valid() {
		return apperror.Validation("hours out of range")
	}
	if h.Open >= h.Close {
		return apperror.Validation("open must be before close")
	}
	return nil
}

// Contains reports whether the window [start,end) lies inside the
// operating hours.
func (h *Hours) Contains(start, end timeofday.TimeOfDay) bool {
	return start >= h.Open && end <= h.Close
}

// Bed is a claimable physical resource owned by a center.
type Bed struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CenterID  uuid.UUID `db:"center_id" json:"center_id"`
	Code      string    `db:"code" json:"code"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (b *Bed) Validate() error {
	if b.CenterID == uuid.Nil {
		return apperror.Validation("center_id is required")
	}
	if b.Code == "" {
		return apperror.Validation("code is required")
	}
	return nil
}
