package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careslot/careslot/internal/domain/center"
	"github.com/careslot/careslot/internal/platform/apperror"
	"github.com/careslot/careslot/pkg/dateonly"
)

// CenterDirectory is the slice of the center service this package needs.
type CenterDirectory interface {
	GetCenter(ctx context.Context, id uuid.UUID) (*center.Center, error)
	HoursFor(ctx context.Context, centerID uuid.UUID, weekday time.Weekday) (*center.Hours, bool, error)
}

type Service struct {
	templates TemplateRepository
	sessions  SessionRepository
	centers   CenterDirectory
}

func NewService(templates TemplateRepository, sessions SessionRepository, centers CenterDirectory) *Service {
	return &Service{templates: templates, sessions: sessions, centers: centers}
}

// -- Templates --

func (s *Service) CreateTemplate(ctx context.Context, t *SessionTemplate) error {
	ctr, err := s.centers.GetCenter(ctx, t.CenterID)
	if err != nil {
		return err
	}
	if t.Status == "" {
		t.Status = TemplateActive
	}
	if err := t.Validate(ctr.Capacity); err != nil {
		return err
	}
	if err := s.checkWithinHours(ctx, t); err != nil {
		return err
	}
	return s.templates.Create(ctx, t)
}

// checkWithinHours rejects a template whose window fits none of its
// covered weekdays. A weekday without hours carries no constraint, and
// a weekday whose hours exclude the window is skipped with a warning at
// expansion, so a template that fits at least one covered weekday can
// still produce sessions and is accepted.
func (s *Service) checkWithinHours(ctx context.Context, t *SessionTemplate) error {
	var violation error
	for _, wd := range t.Weekdays() {
		h, ok, err := s.centers.HoursFor(ctx, t.CenterID, wd)
		if err != nil {
			return err
		}
		if !ok || h.Contains(t.Start, t.End) {
			return nil
		}
		if violation == nil {
			violation = apperror.Validation("window %s-%s outside operating hours %s-%s on %s",
				t.Start, t.End, h.Open, h.Close, wd)
		}
	}
	return violation
}

func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*SessionTemplate, error) {
	return s.templates.GetByID(ctx, id)
}

// UpdateTemplate applies an explicit partial update and re-validates
// the merged template as a whole. Changes never touch already-generated
// sessions.
func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, upd TemplateUpdate) (*SessionTemplate, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(t)

	ctr, err := s.centers.GetCenter(ctx, t.CenterID)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(ctr.Capacity); err != nil {
		return nil, err
	}
	if err := s.checkWithinHours(ctx, t); err != nil {
		return nil, err
	}
	if err := s.templates.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListTemplates(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]*SessionTemplate, int, error) {
	if _, err := s.centers.GetCenter(ctx, centerID); err != nil {
		return nil, 0, err
	}
	return s.templates.ListByCenter(ctx, centerID, limit, offset)
}

// ExpandTemplate generates and persists sessions for the date range.
// Dates outside operating hours are skipped and returned as warnings.
func (s *Service) ExpandTemplate(ctx context.Context, templateID uuid.UUID, from, to dateonly.Date) ([]*Session, []Warning, error) {
	if from.IsZero() || to.IsZero() {
		return nil, nil, apperror.Validation("from and to are required")
	}
	if to.Before(from) {
		return nil, nil, apperror.Validation("to must not precede from")
	}

	t, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}
	if t.Status != TemplateActive {
		return nil, nil, apperror.Validation("template is inactive")
	}

	// Snapshot hours once per weekday so the expansion is consistent.
	hoursByDay := make(map[time.Weekday]*center.Hours)
	for _, wd := range t.Weekdays() {
		h, ok, err := s.centers.HoursFor(ctx, t.CenterID, wd)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			hoursByDay[wd] = h
		}
	}

	sessions, warnings := Expand(t, from, to, func(wd time.Weekday) (*center.Hours, bool) {
		h, ok := hoursByDay[wd]
		return h, ok
	})

	if err := s.sessions.CreateBatch(ctx, sessions); err != nil {
		return nil, nil, err
	}
	return sessions, warnings, nil
}

// -- Sessions --

// CreateSession creates a session directly, bypassing templates. The
// window must respect the center's operating hours when they exist and
// the capacity must fit the center.
func (s *Service) CreateSession(ctx context.Context, sess *Session) error {
	ctr, err := s.centers.GetCenter(ctx, sess.CenterID)
	if err != nil {
		return err
	}
	if err := sess.Validate(); err != nil {
		return err
	}
	if sess.Capacity > ctr.Capacity {
		return apperror.Validation("capacity %d exceeds center capacity %d", sess.Capacity, ctr.Capacity)
	}
	h, ok, err := s.centers.HoursFor(ctx, sess.CenterID, sess.Date.Weekday())
	if err != nil {
		return err
	}
	if ok && !h.Contains(sess.Start, sess.End) {
		return apperror.Validation("window %s-%s outside operating hours %s-%s",
			sess.Start, sess.End, h.Open, h.Close)
	}
	return s.sessions.Create(ctx, sess)
}

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *Service) ListSessions(ctx context.Context, centerID uuid.UUID, date dateonly.Date) ([]*Session, error) {
	if _, err := s.centers.GetCenter(ctx, centerID); err != nil {
		return nil, err
	}
	return s.sessions.ListByCenterDate(ctx, centerID, date)
}

// UpdateSession applies a partial update. Capacity and notes are always
// editable; date and time edits require a future, unreferenced session.
func (s *Service) UpdateSession(ctx context.Context, id uuid.UUID, upd SessionUpdate) (*Session, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.TouchesSchedule() {
		if !sess.Date.After(dateonly.Today()) {
			return nil, apperror.Validation("date and time edits require a future session")
		}
		referenced, err := s.sessions.HasAppointments(ctx, id)
		if err != nil {
			return nil, err
		}
		if referenced {
			return nil, apperror.Conflict("session has appointments; date and time cannot change")
		}
	}

	upd.Apply(sess)
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
