package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/careslot/careslot/pkg/dateonly"
)

type TemplateRepository interface {
	Create(ctx context.Context, t *SessionTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*SessionTemplate, error)
	Update(ctx context.Context, t *SessionTemplate) error
	ListByCenter(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]*SessionTemplate, int, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	CreateBatch(ctx context.Context, sessions []*Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, s *Session) error
	ListByCenterDate(ctx context.Context, centerID uuid.UUID, date dateonly.Date) ([]*Session, error)
	HasAppointments(ctx context.Context, sessionID uuid.UUID) (bool, error)
}
