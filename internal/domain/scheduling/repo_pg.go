package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careslot/careslot/internal/platform/apperror"
	"github.com/careslot/careslot/internal/platform/db"
	"github.com/careslot/careslot/pkg/dateonly"
	"github.com/careslot/careslot/pkg/timeofday"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Template Repository ===========

type templateRepoPG struct{ pool *pgxpool.Pool }

func NewTemplateRepoPG(pool *pgxpool.Pool) TemplateRepository { return &templateRepoPG{pool: pool} }

func (r *templateRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const templateCols = `id, center_id, staff_id, doctor_id, weekday, weekday_group,
	start_min, end_min, capacity, cadence, status, created_at, updated_at`

func scanTemplate(row pgx.Row) (*SessionTemplate, error) {
	var t SessionTemplate
	var weekday *int
	var group *string
	var start, end int
	err := row.Scan(&t.ID, &t.CenterID, &t.StaffID, &t.DoctorID, &weekday, &group,
		&start, &end, &t.Capacity, &t.Cadence, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("session template not found")
	}
	if err != nil {
		return nil, err
	}
	if weekday != nil {
		wd := time.Weekday(*weekday)
		t.Weekday = &wd
	}
	if group != nil {
		g := WeekdayGroup(*group)
		t.WeekdayGroup = &g
	}
	t.Start = timeofday.TimeOfDay(start)
	t.End = timeofday.TimeOfDay(end)
	return &t, nil
}

func (r *templateRepoPG) Create(ctx context.Context, t *SessionTemplate) error {
	t.ID = uuid.New()
	var weekday *int
	if t.Weekday != nil {
		wd := int(*t.Weekday)
		weekday = &wd
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO session_template (id, center_id, staff_id, doctor_id, weekday, weekday_group,
			start_min, end_min, capacity, cadence, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		t.ID, t.CenterID, t.StaffID, t.DoctorID, weekday, t.WeekdayGroup,
		t.Start.Minutes(), t.End.Minutes(), t.Capacity, t.Cadence, t.Status).
		Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *templateRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SessionTemplate, error) {
	return scanTemplate(r.conn(ctx).QueryRow(ctx,
		`SELECT `+templateCols+` FROM session_template WHERE id = $1`, id))
}

func (r *templateRepoPG) Update(ctx context.Context, t *SessionTemplate) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE session_template
		SET staff_id=$2, doctor_id=$3, start_min=$4, end_min=$5, capacity=$6, status=$7, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.StaffID, t.DoctorID, t.Start.Minutes(), t.End.Minutes(), t.Capacity, t.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("session template not found")
	}
	return nil
}

func (r *templateRepoPG) ListByCenter(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]*SessionTemplate, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM session_template WHERE center_id = $1`, centerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+templateCols+` FROM session_template WHERE center_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		centerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*SessionTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

// =========== Session Repository ===========

type sessionRepoPG struct{ pool *pgxpool.Pool }

func NewSessionRepoPG(pool *pgxpool.Pool) SessionRepository { return &sessionRepoPG{pool: pool} }

func (r *sessionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const sessionCols = `id, center_id, template_id, date, start_min, end_min, capacity, notes, created_at, updated_at`

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	var start, end int
	err := row.Scan(&s.ID, &s.CenterID, &s.TemplateID, &s.Date.Time,
		&start, &end, &s.Capacity, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("session not found")
	}
	if err != nil {
		return nil, err
	}
	s.Date = dateonly.Of(s.Date.Time)
	s.Start = timeofday.TimeOfDay(start)
	s.End = timeofday.TimeOfDay(end)
	return &s, nil
}

func (r *sessionRepoPG) Create(ctx context.Context, s *Session) error {
	s.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO session (id, center_id, template_id, date, start_min, end_min, capacity, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		s.ID, s.CenterID, s.TemplateID, s.Date.Time, s.Start.Minutes(), s.End.Minutes(),
		s.Capacity, s.Notes).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *sessionRepoPG) CreateBatch(ctx context.Context, sessions []*Session) error {
	if len(sessions) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range sessions {
		s.ID = uuid.New()
		batch.Queue(`
			INSERT INTO session (id, center_id, template_id, date, start_min, end_min, capacity, notes)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			s.ID, s.CenterID, s.TemplateID, s.Date.Time, s.Start.Minutes(), s.End.Minutes(),
			s.Capacity, s.Notes)
	}

	var br pgx.BatchResults
	if tx := db.TxFromContext(ctx); tx != nil {
		br = tx.SendBatch(ctx, batch)
	} else {
		br = r.pool.SendBatch(ctx, batch)
	}
	defer br.Close()
	for range sessions {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *sessionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	return scanSession(r.conn(ctx).QueryRow(ctx, `SELECT `+sessionCols+` FROM session WHERE id = $1`, id))
}

func (r *sessionRepoPG) Update(ctx context.Context, s *Session) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE session SET date=$2, start_min=$3, end_min=$4, capacity=$5, notes=$6, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Date.Time, s.Start.Minutes(), s.End.Minutes(), s.Capacity, s.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("session not found")
	}
	return nil
}

func (r *sessionRepoPG) ListByCenterDate(ctx context.Context, centerID uuid.UUID, date dateonly.Date) ([]*Session, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sessionCols+` FROM session WHERE center_id = $1 AND date = $2 ORDER BY start_min`,
		centerID, date.Time)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *sessionRepoPG) HasAppointments(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM appointment WHERE session_id = $1)`, sessionID).Scan(&exists)
	return exists, err
}
