package booking

import (
	"context"
	"errors"
	"fmt"

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, session_id, bed_id, patient_id, staff_id, doctor_id, status, notes,
	center_id, date, start_min, end_min, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var start, end int
	err := row.Scan(&a.ID, &a.SessionID, &a.BedID, &a.PatientID, &a.StaffID, &a.DoctorID,
		&a.Status, &a.Notes, &a.CenterID, &a.Date.Time, &start, &end, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("appointment not found")
	}
	if err != nil {
		return nil, err
	}
	a.Date = dateonly.Of(a.Date.Time)
	a.Start = timeofday.TimeOfDay(start)
	a.End = timeofday.TimeOfDay(end)
	return &a, nil
}

// Claim inserts the appointment inside one transaction. The session row
// is locked while the capacity is rechecked; the bed-exclusivity
// guarantee comes from the store's exclusion constraint over occupying
// rows, whose violation maps to ConflictError.
func (r *repoPG) Claim(ctx context.Context, a *Appointment) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		conn := r.conn(ctx)

		var capacity int
		err := conn.QueryRow(ctx,
			`SELECT capacity FROM session WHERE id = $1 FOR UPDATE`, a.SessionID).Scan(&capacity)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("session not found")
		}
		if err != nil {
			return err
		}

		var occupying int
		if err := conn.QueryRow(ctx, `
			SELECT COUNT(*) FROM appointment
			WHERE session_id = $1 AND status IN ('scheduled','booked')`,
			a.SessionID).Scan(&occupying); err != nil {
			return err
		}
		if occupying >= capacity {
			return apperror.Conflict("session capacity %d exhausted", capacity)
		}

		a.ID = uuid.New()
		err = conn.QueryRow(ctx, `
			INSERT INTO appointment (id, session_id, bed_id, patient_id, staff_id, doctor_id,
				status, notes, center_id, date, start_min, end_min)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			RETURNING created_at, updated_at`,
			a.ID, a.SessionID, a.BedID, a.PatientID, a.StaffID, a.DoctorID,
			a.Status, a.Notes, a.CenterID, a.Date.Time, a.Start.Minutes(), a.End.Minutes()).
			Scan(&a.CreatedAt, &a.UpdatedAt)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// 23P01: exclusion constraint (bed already claimed for an
			// overlapping window), 23505: unique violation.
			if pgErr.Code == "23P01" || pgErr.Code == "23505" {
				return apperror.Conflict("bed already claimed for an overlapping window")
			}
			if pgErr.Code == "40001" || pgErr.Code == "55P03" {
				return apperror.Transient("claim transaction aborted", err)
			}
		}
		return err
	})
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the row vanished or its status moved concurrently.
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return apperror.StateTransition("cannot move appointment from %s to %s", current.Status, to)
	}
	return nil
}

func (r *repoPG) ListOccupying(ctx context.Context, centerID uuid.UUID, date dateonly.Date, start, end timeofday.TimeOfDay) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE center_id = $1 AND date = $2
		  AND status IN ('scheduled','booked')
		  AND start_min < $4 AND $3 < end_min`,
		centerID, date.Time, start.Minutes(), end.Minutes())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	query := `SELECT ` + apptCols + ` FROM appointment WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM appointment WHERE 1=1`
	var args []interface{}
	idx := 1

	addFilter := func(clause string, val interface{}) {
		query += fmt.Sprintf(clause, idx)
		countQuery += fmt.Sprintf(clause, idx)
		args = append(args, val)
		idx++
	}
	if f.PatientID != nil {
		addFilter(` AND patient_id = $%d`, *f.PatientID)
	}
	if f.SessionID != nil {
		addFilter(` AND session_id = $%d`, *f.SessionID)
	}
	if f.CenterID != nil {
		addFilter(` AND center_id = $%d`, *f.CenterID)
	}
	if f.Status != nil {
		addFilter(` AND status = $%d`, *f.Status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.RunInTx(ctx, r.pool, fn)
}
