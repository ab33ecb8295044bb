package center

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
	"github.com/careslot/careslot/pkg/timeofday"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Center Repository ===========

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const centerCols = `id, name, capacity, active, created_at, updated_at`

func scanCenter(row pgx.Row) (*Center, error) {
	var c Center
	err := row.Scan(&c.ID, &c.Name, &c.Capacity, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("center not found")
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Center) error {
	c.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO center (id, name, capacity, active)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Capacity, c.Active).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Center, error) {
	return scanCenter(r.conn(ctx).QueryRow(ctx, `SELECT `+centerCols+` FROM center WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, c *Center) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE center SET name=$2, capacity=$3, active=$4, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Capacity, c.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("center not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Center, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM center`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+centerCols+` FROM center ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Center
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// =========== Hours Repository ===========

type hoursRepoPG struct{ pool *pgxpool.Pool }

func NewHoursRepoPG(pool *pgxpool.Pool) HoursRepository { return &hoursRepoPG{pool: pool} }

func (r *hoursRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *hoursRepoPG) Upsert(ctx context.Context, h *Hours) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO center_hours (center_id, weekday, open_min, close_min)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (center_id, weekday)
		DO UPDATE SET open_min = EXCLUDED.open_min, close_min = EXCLUDED.close_min`,
		h.CenterID, int(h.Weekday), h.Open.Minutes(), h.Close.Minutes())
	return err
}

func scanHours(row pgx.Row) (*Hours, error) {
	var h Hours
	var weekday, open, close int
	err := row.Scan(&h.CenterID, &weekday, &open, &close)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("hours not found")
	}
	if err != nil {
		return nil, err
	}
	h.Weekday = time.Weekday(weekday)
	h.Open = timeofday.TimeOfDay(open)
	h.Close = timeofday.TimeOfDay(close)
	return &h, nil
}

func (r *hoursRepoPG) GetForWeekday(ctx context.Context, centerID uuid.UUID, weekday time.Weekday) (*Hours, error) {
	return scanHours(r.conn(ctx).QueryRow(ctx, `
		SELECT center_id, weekday, open_min, close_min
		FROM center_hours WHERE center_id = $1 AND weekday = $2`,
		centerID, int(weekday)))
}

func (r *hoursRepoPG) ListByCenter(ctx context.Context, centerID uuid.UUID) ([]*Hours, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT center_id, weekday, open_min, close_min
		FROM center_hours WHERE center_id = $1 ORDER BY weekday`,
		centerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Hours
	for rows.Next() {
		h, err := scanHours(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

// =========== Bed Repository ===========

type bedRepoPG struct{ pool *pgxpool.Pool }

func NewBedRepoPG(pool *pgxpool.Pool) BedRepository { return &bedRepoPG{pool: pool} }

func (r *bedRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const bedCols = `id, center_id, code, active, created_at, updated_at`

func scanBed(row pgx.Row) (*Bed, error) {
	var b Bed
	err := row.Scan(&b.ID, &b.CenterID, &b.Code, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("bed not found")
	}
	return &b, err
}

func (r *bedRepoPG) Create(ctx context.Context, b *Bed) error {
	b.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO bed (id, center_id, code, active)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at`,
		b.ID, b.CenterID, b.Code, b.Active).Scan(&b.CreatedAt, &b.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperror.Conflict("bed code %q already exists at this center", b.Code)
	}
	return err
}

func (r *bedRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return scanBed(r.conn(ctx).QueryRow(ctx, `SELECT `+bedCols+` FROM bed WHERE id = $1`, id))
}

func (r *bedRepoPG) Update(ctx context.Context, b *Bed) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE bed SET code=$2, active=$3, updated_at=NOW() WHERE id = $1`,
		b.ID, b.Code, b.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("bed not found")
	}
	return nil
}

func (r *bedRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM bed WHERE id = $1`, id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return apperror.Conflict("bed is referenced by appointments")
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("bed not found")
	}
	return nil
}

func (r *bedRepoPG) ListByCenter(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]*Bed, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bed WHERE center_id = $1`, centerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+bedCols+` FROM bed WHERE center_id = $1 ORDER BY code LIMIT $2 OFFSET $3`, centerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Bed
	for rows.Next() {
		b, err := scanBed(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *bedRepoPG) ListActiveByCenter(ctx context.Context, centerID uuid.UUID) ([]*Bed, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+bedCols+` FROM bed WHERE center_id = $1 AND active ORDER BY code`, centerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Bed
	for rows.Next() {
		b, err := scanBed(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
