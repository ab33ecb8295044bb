package center

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Center) error
	GetByID(ctx context.Context, id uuid.UUID) (*Center, error)
	Update(ctx context.Context, c *Center) error
	List(ctx context.Context, limit, offset int) ([]*Center, int, error)
}

type HoursRepository interface {
	Upsert(ctx context.Context, h *Hours) error
	GetForWeekday(ctx context.Context, centerID uuid.UUID, weekday time.Weekday) (*Hours, error)
	ListByCenter(ctx context.Context, centerID uuid.UUID) ([]*Hours, error)
}

type BedRepository interface {
	Create(ctx context.Context, b *Bed) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bed, error)
	Update(ctx context.Context, b *Bed) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCenter(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]*Bed, int, error)
	ListActiveByCenter(ctx context.Context, centerID uuid.UUID) ([]*Bed, error)
}
