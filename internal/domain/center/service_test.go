package center

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careslot/careslot/internal/platform/apperror"
	"github.com/careslot/careslot/pkg/timeofday"
)

// -- Mock Repositories --

type mockCenterRepo struct {
	centers map[uuid.UUID]*Center
}

func newMockCenterRepo() *mockCenterRepo {
	return &mockCenterRepo{centers: make(map[uuid.UUID]*Center)}
}

func (m *mockCenterRepo) Create(_ context.Context, c *Center) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	m.centers[c.ID] = c
	return nil
}

func (m *mockCenterRepo) GetByID(_ context.Context, id uuid.UUID) (*Center, error) {
	c, ok := m.centers[id]
	if !ok {
		return nil, apperror.NotFound("center not found")
	}
	return c, nil
}

func (m *mockCenterRepo) Update(_ context.Context, c *Center) error {
	if _, ok := m.centers[c.ID]; !ok {
		return apperror.NotFound("center not found")
	}
	m.centers[c.ID] = c
	return nil
}

func (m *mockCenterRepo) List(_ context.Context, limit, offset int) ([]*Center, int, error) {
	var result []*Center
	for _, c := range m.centers {
		result = append(result, c)
	}
	return result, len(result), nil
}

type hoursKey struct {
	centerID uuid.UUID
	weekday  time.Weekday
}

type mockHoursRepo struct {
	hours map[hoursKey]*Hours
}

func newMockHoursRepo() *mockHoursRepo {
	return &mockHoursRepo{hours: make(map[hoursKey]*Hours)}
}

func (m *mockHoursRepo) Upsert(_ context.Context, h *Hours) error {
	m.hours[hoursKey{h.CenterID, h.Weekday}] = h
	return nil
}

func (m *mockHoursRepo) GetForWeekday(_ context.Context, centerID uuid.UUID, weekday time.Weekday) (*Hours, error) {
	h, ok := m.hours[hoursKey{centerID, weekday}]
	if !ok {
		return nil, apperror.NotFound("hours not found")
	}
	return h, nil
}

func (m *mockHoursRepo) ListByCenter(_ context.Context, centerID uuid.UUID) ([]*Hours, error) {
	var result []*Hours
	for _, h := range m.hours {
		if h.CenterID == centerID {
			result = append(result, h)
		}
	}
	return result, nil
}

type mockBedRepo struct {
	beds       map[uuid.UUID]*Bed
	referenced map[uuid.UUID]bool
}

func newMockBedRepo() *mockBedRepo {
	return &mockBedRepo{
		beds:       make(map[uuid.UUID]*Bed),
		referenced: make(map[uuid.UUID]bool),
	}
}

func (m *mockBedRepo) Create(_ context.Context, b *Bed) error {
	for _, existing := range m.beds {
		if existing.CenterID == b.CenterID && existing.Code == b.Code {
			return apperror.Conflict("bed code %q already exists at this center", b.Code)
		}
	}
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	m.beds[b.ID] = b
	return nil
}

func (m *mockBedRepo) GetByID(_ context.Context, id uuid.UUID) (*Bed, error) {
	b, ok := m.beds[id]
	if !ok {
		return nil, apperror.NotFound("bed not found")
	}
	return b, nil
}

func (m *mockBedRepo) Update(_ context.Context, b *Bed) error {
	if _, ok := m.beds[b.ID]; !ok {
		return apperror.NotFound("bed not found")
	}
	m.beds[b.ID] = b
	return nil
}

func (m *mockBedRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.beds[id]; !ok {
		return apperror.NotFound("bed not found")
	}
	if m.referenced[id] {
		return apperror.Conflict("bed is referenced by appointments")
	}
	delete(m.beds, id)
	return nil
}

func (m *mockBedRepo) ListByCenter(_ context.Context, centerID uuid.UUID, limit, offset int) ([]*Bed, int, error) {
	var result []*Bed
	for _, b := range m.beds {
		if b.CenterID == centerID {
			result = append(result, b)
		}
	}
	return result, len(result), nil
}

func (m *mockBedRepo) ListActiveByCenter(_ context.Context, centerID uuid.UUID) ([]*Bed, error) {
	var result []*Bed
	for _, b := range m.beds {
		if b.CenterID == centerID && b.Active {
			result = append(result, b)
		}
	}
	return result, nil
}

func newTestService() (*Service, *mockCenterRepo, *mockHoursRepo, *mockBedRepo) {
	centers := newMockCenterRepo()
	hours := newMockHoursRepo()
	beds := newMockBedRepo()
	return NewService(centers, hours, beds), centers, hours, beds
}

// -- Tests --

func TestCreateCenter(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	c := &Center{Name: "Riverside Dialysis", Capacity: 12, Active: true}
	if err := svc.CreateCenter(ctx, c); err != nil {
		t.Fatalf("CreateCenter: %v", err)
	}
	if c.ID == uuid.Nil {
		t.Error("expected assigned id")
	}

	got, err := svc.GetCenter(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCenter: %v", err)
	}
	if got.Name != "Riverside Dialysis" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestCreateCenter_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		c    Center
	}{
		{"missing name", Center{Capacity: 5}},
		{"zero capacity", Center{Name: "X", Capacity: 0}},
		{"negative capacity", Center{Name: "X", Capacity: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CreateCenter(ctx, &tt.c)
			if !apperror.Is(err, apperror.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCapacityOf(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	c := &Center{Name: "Clinic", Capacity: 7, Active: true}
	if err := svc.CreateCenter(ctx, c); err != nil {
		t.Fatal(err)
	}

	cap, err := svc.CapacityOf(ctx, c.ID)
	if err != nil {
		t.Fatalf("CapacityOf: %v", err)
	}
	if cap != 7 {
		t.Errorf("capacity = %d, want 7", cap)
	}

	if _, err := svc.CapacityOf(ctx, uuid.New()); !apperror.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpsertHours(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	c := &Center{Name: "Clinic", Capacity: 5, Active: true}
	if err := svc.CreateCenter(ctx, c); err != nil {
		t.Fatal(err)
	}

	h := &Hours{
		CenterID: c.ID,
		Weekday:  time.Monday,
		Open:     timeofday.MustParse("08:00"),
		Close:    timeofday.MustParse("17:00"),
	}
	if err := svc.UpsertHours(ctx, h); err != nil {
		t.Fatalf("UpsertHours: %v", err)
	}

	// Replacing the same weekday keeps a single entry
	h2 := &Hours{
		CenterID: c.ID,
		Weekday:  time.Monday,
		Open:     timeofday.MustParse("09:00"),
		Close:    timeofday.MustParse("18:00"),
	}
	if err := svc.UpsertHours(ctx, h2); err != nil {
		t.Fatalf("UpsertHours replace: %v", err)
	}

	all, err := svc.ListHours(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one hours entry, got %d", len(all))
	}
	if all[0].Open != timeofday.MustParse("09:00") {
		t.Errorf("open = %v", all[0].Open)
	}
}

func TestUpsertHours_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	c := &Center{Name: "Clinic", Capacity: 5, Active: true}
	if err := svc.CreateCenter(ctx, c); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		h    Hours
	}{
		{"open after close", Hours{CenterID: c.ID, Weekday: time.Monday,
			Open: timeofday.MustParse("17:00"), Close: timeofday.MustParse("08:00")}},
		{"open equals close", Hours{CenterID: c.ID, Weekday: time.Monday,
			Open: timeofday.MustParse("08:00"), Close: timeofday.MustParse("08:00")}},
		{"bad weekday", Hours{CenterID: c.ID, Weekday: 7,
			Open: timeofday.MustParse("08:00"), Close: timeofday.MustParse("17:00")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpsertHours(ctx, &tt.h)
			if !apperror.Is(err, apperror.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	err := svc.UpsertHours(ctx, &Hours{CenterID: uuid.New(), Weekday: time.Monday,
		Open: timeofday.MustParse("08:00"), Close: timeofday.MustParse("17:00")})
	if !apperror.IsNotFound(err) {
		t.Errorf("expected not found for unknown center, got %v", err)
	}
}

func TestHoursFor_AbsenceMeansNoConstraint(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	c := &Center{Name: "Clinic", Capacity: 5, Active: true}
	if err := svc.CreateCenter(ctx, c); err != nil {
		t.Fatal(err)
	}
	h := &Hours{CenterID: c.ID, Weekday: time.Monday,
		Open: timeofday.MustParse("08:00"), Close: timeofday.MustParse("17:00")}
	if err := svc.UpsertHours(ctx, h); err != nil {
		t.Fatal(err)
	}

	got, ok, err := svc.HoursFor(ctx, c.ID, time.Monday)
	if err != nil || !ok {
		t.Fatalf("HoursFor(Monday) = %v, %v, %v", got, ok, err)
	}
	if got.Open != timeofday.MustParse("08:00") {
		t.Errorf("open = %v", got.Open)
	}

	// No Tuesday entry: not an error, just no constraint.
	got, ok, err = svc.HoursFor(ctx, c.ID, time.Tuesday)
	if err != nil {
		t.Fatalf("HoursFor(Tuesday): %v", err)
	}
	if ok || got != nil {
		t.Errorf("expected no hours for Tuesday, got %v", got)
	}
}

func TestHoursContains(t *testing.T) {
	h := Hours{Open: timeofday.MustParse("08:00"), Close: timeofday.MustParse("17:00")}

	if !h.Contains(timeofday.MustParse("08:00"), timeofday.MustParse("17:00")) {
		t.Error("full window should fit")
	}
	if !h.Contains(timeofday.MustParse("09:00"), timeofday.MustParse("11:00")) {
		t.Error("inner window should fit")
	}
	if h.Contains(timeofday.MustParse("07:00"), timeofday.MustParse("09:00")) {
		t.Error("window starting before open should not fit")
	}
	if h.Contains(timeofday.MustParse("16:00"), timeofday.MustParse("18:00")) {
		t.Error("window ending after close should not fit")
	}
}

func TestBedLifecycle(t *testing.T) {
	svc, _, _, beds := newTestService()
	ctx := context.Background()

	c := &Center{Name: "Clinic", Capacity: 5, Active: true}
	if err := svc.CreateCenter(ctx, c); err != nil {
		t.Fatal(err)
	}

	b := &Bed{CenterID: c.ID, Code: "B1"}
	if err := svc.CreateBed(ctx, b); err != nil {
		t.Fatalf("CreateBed: %v", err)
	}

	dup := &Bed{CenterID: c.ID, Code: "B1"}
	if err := svc.CreateBed(ctx, dup); !apperror.IsConflict(err) {
		t.Errorf("expected conflict for duplicate code, got %v", err)
	}

	if err := svc.DeleteBed(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBed: %v", err)
	}

	b2 := &Bed{CenterID: c.ID, Code: "B2"}
	if err := svc.CreateBed(ctx, b2); err != nil {
		t.Fatal(err)
	}
	beds.referenced[b2.ID] = true
	if err := svc.DeleteBed(ctx, b2.ID); !apperror.IsConflict(err) {
		t.Errorf("expected conflict deleting referenced bed, got %v", err)
	}
}

func TestCreateBed_UnknownCenter(t *testing.T) {
	svc, _, _, _ := newTestService()
	err := svc.CreateBed(context.Background(), &Bed{CenterID: uuid.New(), Code: "B1"})
	if !apperror.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
