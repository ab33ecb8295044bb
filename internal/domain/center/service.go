package center

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careslot/careslot/internal/platform/apperror"
)

type Service struct {
	centers Repository
	hours   HoursRepository
	beds    BedRepository
}

func NewService(centers Repository, hours HoursRepository, beds BedRepository) *Service {
	return &Service{centers: centers, hours: hours, beds: beds}
}

// -- Center --

func (s *Service) CreateCenter(ctx context.Context, c *Center) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.centers.Create(ctx, c)
}

func (s *Service) GetCenter(ctx context.Context, id uuid.UUID) (*Center, error) {
	return s.centers.GetByID(ctx, id)
}

func (s *Service) UpdateCenter(ctx context.Context, c *Center) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.centers.Update(ctx, c)
}

func (s *Service) ListCenters(ctx context.Context, limit, offset int) ([]*Center, int, error) {
	return s.centers.List(ctx, limit, offset)
}

// CapacityOf returns the total bed capacity configured for a center.
func (s *Service) CapacityOf(ctx context.Context, centerID uuid.UUID) (int, error) {
	c, err := s.centers.GetByID(ctx, centerID)
	if err != nil {
		return 0, err
	}
	return c.Capacity, nil
}

// -- Hours --

func (s *Service) UpsertHours(ctx context.Context, h *Hours) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if _, err := s.centers.GetByID(ctx, h.CenterID); err != nil {
		return err
	}
	return s.hours.Upsert(ctx, h)
}

func (s *Service) ListHours(ctx context.Context, centerID uuid.UUID) ([]*Hours, error) {
	if _, err := s.centers.GetByID(ctx, centerID); err != nil {
		return nil, err
	}
	return s.hours.ListByCenter(ctx, centerID)
}

// HoursFor looks up the operating window for a weekday. The second
// return value is false when no hours are defined, meaning no window
// constraint applies for that weekday.
func (s *Service) HoursFor(ctx context.Context, centerID uuid.UUID, weekday time.Weekday) (*Hours, bool, error) {
	h, err := s.hours.GetForWeekday(ctx, centerID, weekday)
	if apperror.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return h, true, nil
}

// -- Bed --

func (s *Service) CreateBed(ctx context.Context, b *Bed) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if _, err := s.centers.GetByID(ctx, b.CenterID); err != nil {
		return err
	}
	return s.beds.Create(ctx, b)
}

func (s *Service) GetBed(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return s.beds.GetByID(ctx, id)
}

func (s *Service) UpdateBed(ctx context.Context, b *Bed) error {
	if b.Code == "" {
		return apperror.Validation("code is required")
	}
	return s.beds.Update(ctx, b)
}

// DeleteBed removes a bed. Beds referenced by any appointment cannot be
// deleted; the repository surfaces that as a conflict.
func (s *Service) DeleteBed(ctx context.Context, id uuid.UUID) error {
	return s.beds.Delete(ctx, id)
}

func (s *Service) ListBeds(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]*Bed, int, error) {
	if _, err := s.centers.GetByID(ctx, centerID); err != nil {
		return nil, 0, err
	}
	return s.beds.ListByCenter(ctx, centerID, limit, offset)
}

func (s *Service) ListActiveBeds(ctx context.Context, centerID uuid.UUID) ([]*Bed, error) {
	return s.beds.ListActiveByCenter(ctx, centerID)
}
