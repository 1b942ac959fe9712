package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Repository backed by the appointments table.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const cols = `id, patient_name, doctor_name, specialty, appointment_date, status, notes`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientName, &a.DoctorName, &a.Specialty,
		&a.AppointmentDate, &a.Status, &a.Notes)
	return &a, err
}

func (r *repoPG) List(ctx context.Context) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cols+` FROM appointments ORDER BY appointment_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	items := make([]Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return items, nil
}

func (r *repoPG) Get(ctx context.Context, id int64) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+cols+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment %d: %w", id, err)
	}
	return a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (patient_name, doctor_name, specialty, appointment_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		a.PatientName, a.DoctorName, a.Specialty, a.AppointmentDate, a.Status, a.Notes,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *repoPG) Update(ctx context.Context, id int64, upd Update) (*Appointment, error) {
	if upd.Empty() {
		return r.Get(ctx, id)
	}

	set := ""
	var args []interface{}
	add := func(column string, value interface{}) {
		if set != "" {
			set += ", "
		}
		args = append(args, value)
		set += fmt.Sprintf("%s = $%d", column, len(args))
	}

	if upd.PatientName != nil {
		add("patient_name", *upd.PatientName)
	}
	if upd.DoctorName != nil {
		add("doctor_name", *upd.DoctorName)
	}
	if upd.Specialty != nil {
		add("specialty", *upd.Specialty)
	}
	if upd.AppointmentDate != nil {
		add("appointment_date", *upd.AppointmentDate)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.Notes.Set {
		add("notes", upd.Notes.Value)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE appointments SET %s WHERE id = $%d RETURNING `+cols, set, len(args))

	a, err := scanAppointment(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update appointment %d: %w", id, err)
	}
	return a, nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete appointment %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
