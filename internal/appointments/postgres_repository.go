package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vitaldent/clinic-site/internal/events"
)

const uniqueViolation = "23505"

type appointmentsDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository stores appointments in the relational database. The
// unique index on slot_start enforces one appointment per hour.
type PostgresRepository struct {
	db appointmentsDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db appointmentsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) error {
	return insertAppointment(ctx, r.db, appt)
}

// CreateWithEvent inserts appt and its outbox entry in one transaction.
func (r *PostgresRepository) CreateWithEvent(ctx context.Context, appt *Appointment, eventType string, payload any) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertAppointment(ctx, tx, appt); err != nil {
		return err
	}
	if _, err := events.NewOutboxStoreWithDB(tx).Insert(ctx, aggregateFor(appt.ID), eventType, payload); err != nil {
		return fmt.Errorf("appointments: record event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("appointments: commit: %w", err)
	}
	return nil
}

func insertAppointment(ctx context.Context, db appointmentsDB, appt *Appointment) error {
	query := `
		INSERT INTO appointments (id, patient_name, phone, email, treatment_ids, treatment_names, scheduled_at, slot_start, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	var email *string
	if appt.Email != "" {
		email = &appt.Email
	}
	err := db.QueryRow(ctx, query,
		appt.ID,
		appt.PatientName,
		appt.Phone,
		email,
		appt.TreatmentIDs(),
		appt.TreatmentNames(),
		appt.ScheduledAt,
		appt.SlotStart,
		string(appt.Status),
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: insert failed: %w", err)
	}
	return nil
}

const appointmentColumns = `id, patient_name, phone, email, treatment_ids, treatment_names, scheduled_at, slot_start, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*Appointment, error) {
	var (
		appt   Appointment
		email  *string
		ids    []int32
		names  []string
		status string
	)
	if err := row.Scan(&appt.ID, &appt.PatientName, &appt.Phone, &email, &ids, &names, &appt.ScheduledAt, &appt.SlotStart, &status, &appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return nil, err
	}
	if email != nil {
		appt.Email = *email
	}
	appt.Status = Status(status)
	appt.Treatments = make([]TreatmentRef, 0, len(ids))
	for i, id := range ids {
		ref := TreatmentRef{ID: int(id)}
		if i < len(names) {
			ref.Name = names[i]
		}
		appt.Treatments = append(appt.Treatments, ref)
	}
	return &appt, nil
}

// Get fetches one appointment.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return appt, nil
}

// List returns appointments newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += fmt.Sprintf(` ORDER BY scheduled_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

// Reschedule moves an appointment to a new time.
func (r *PostgresRepository) Reschedule(ctx context.Context, id string, at, slot time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET scheduled_at = $2, slot_start = $3, updated_at = NOW()
		WHERE id = $1
	`, id, at, slot)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: reschedule failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// UpdateStatus sets the lifecycle status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE appointments SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("appointments: update status failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// Delete removes an appointment.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}
