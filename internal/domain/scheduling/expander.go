package scheduling

import (
	"fmt"
	"time"

	"github.com/careslot/careslot/internal/domain/center"
	"github.com/careslot/careslot/pkg/dateonly"
)

// HoursLookup resolves a center's operating window for a weekday. The
// second return value is false when no hours are defined, in which case
// no window constraint applies.
type HoursLookup func(weekday time.Weekday) (*center.Hours, bool)

// Warning records a date skipped during expansion.
type Warning struct {
	Date   dateonly.Date `json:"date"`
	Reason string        `json:"reason"`
}

// Expand generates one session per calendar date in [from, to] matching
// the template's weekday selector. Weekday groups fan out one session
// per constituent weekday. Dates whose window falls outside the
// center's operating hours are skipped and reported as warnings, so a
// partial expansion still succeeds. Capacity is copied from the
// template at generation time.
func Expand(tpl *SessionTemplate, from, to dateonly.Date, hours HoursLookup) ([]*Session, []Warning) {
	wanted := make(map[time.Weekday]bool)
	for _, wd := range tpl.Weekdays() {
		wanted[wd] = true
	}

	var sessions []*Session
	var warnings []Warning

	for d := from; !d.After(to); d = d.AddDays(1) {
		if !wanted[d.Weekday()] {
			continue
		}
		if h, ok := hours(d.Weekday()); ok && !h.Contains(tpl.Start, tpl.End) {
			warnings = append(warnings, Warning{
				Date: d,
				Reason: fmt.Sprintf("window %s-%s outside operating hours %s-%s",
					tpl.Start, tpl.End, h.Open, h.Close),
			})
			continue
		}
		tplID := tpl.ID
		sessions = append(sessions, &Session{
			CenterID:   tpl.CenterID,
			TemplateID: &tplID,
			Date:       d,
			Start:      tpl.Start,
			End:        tpl.End,
			Capacity:   tpl.Capacity,
		})
	}

	return sessions, warnings
}
