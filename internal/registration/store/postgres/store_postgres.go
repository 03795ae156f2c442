// Package postgres persists registrations in PostgreSQL. The one-active-
// record-per-email invariant is enforced by a partial unique index, and the
// decision transition by a conditional UPDATE, so the check-then-act races
// are closed inside the database rather than in application code.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"regdesk/internal/registration"
	"regdesk/pkg/domain"
	"regdesk/pkg/platform/sentinel"
)

// Schema is the registrations table DDL. The partial unique index backs the
// conditional create; a rejected row never participates, which is what allows
// resubmission after rejection.
const Schema = `
CREATE TABLE IF NOT EXISTS registrations (
	id uuid PRIMARY KEY,
	email text NOT NULL,
	display_name text NOT NULL,
	phone text NOT NULL,
	category text NOT NULL,
	amount_due bigint NOT NULL,
	payment_reference text NOT NULL DEFAULT '',
	status text NOT NULL,
	created_at timestamptz NOT NULL,
	decided_at timestamptz,
	decided_by text NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS registrations_active_email
	ON registrations (email) WHERE status <> 'rejected';
CREATE INDEX IF NOT EXISTS registrations_email ON registrations (email);
`

const uniqueViolation = "23505"

// Store is a PostgreSQL-backed registration store.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the schema. Idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate registrations schema: %w", err)
	}
	return nil
}

const columns = `id, email, display_name, phone, category, amount_due, payment_reference, status, created_at, decided_at, decided_by`

func (s *Store) CreateActive(ctx context.Context, reg *registration.Registration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registrations (`+columns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL, '')
	`,
		reg.ID.String(),
		reg.Identity.Email,
		reg.Identity.DisplayName,
		reg.Identity.Phone,
		reg.Category,
		reg.AmountDue,
		reg.PaymentReference,
		string(reg.Status),
		reg.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id domain.RegistrationID) (*registration.Registration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM registrations WHERE id = $1`, id.String())
	return scanRegistration(row)
}

func (s *Store) FindActiveByEmail(ctx context.Context, email string) (*registration.Registration, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+columns+` FROM registrations
		WHERE email = $1 AND status <> 'rejected'
	`, email)
	return scanRegistration(row)
}

func (s *Store) ApplyDecision(ctx context.Context, id domain.RegistrationID, decision registration.Decision) (*registration.Registration, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE registrations
		SET status = $2, decided_at = $3, decided_by = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING `+columns,
		id.String(),
		string(decision.Status),
		decision.DecidedAt,
		decision.DecidedBy,
	)
	reg, err := scanRegistration(row)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, s.classifyMissed(ctx, id)
	}
	return reg, err
}

func (s *Store) SetPaymentReferenceIfPending(ctx context.Context, id domain.RegistrationID, reference string) (*registration.Registration, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE registrations
		SET payment_reference = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+columns,
		id.String(), reference,
	)
	reg, err := scanRegistration(row)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, s.classifyMissed(ctx, id)
	}
	return reg, err
}

// classifyMissed tells an absent row apart from a row in a terminal status
// after a conditional update matched nothing.
func (s *Store) classifyMissed(ctx context.Context, id domain.RegistrationID) error {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM registrations WHERE id = $1`, id.String()).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("inspect registration: %w", err)
	}
	return sentinel.ErrInvalidState
}

func (s *Store) ListByStatus(ctx context.Context, status registration.Status) ([]*registration.Registration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+columns+` FROM registrations
		WHERE status = $1 ORDER BY created_at
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list registrations by status: %w", err)
	}
	return collect(rows)
}

func (s *Store) ListByEmail(ctx context.Context, email string) ([]*registration.Registration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+columns+` FROM registrations
		WHERE email = $1 ORDER BY created_at
	`, email)
	if err != nil {
		return nil, fmt.Errorf("list registrations by email: %w", err)
	}
	return collect(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*registration.Registration, error) {
	var (
		reg       registration.Registration
		rawID     string
		status    string
		decidedAt sql.NullTime
	)
	err := row.Scan(
		&rawID,
		&reg.Identity.Email,
		&reg.Identity.DisplayName,
		&reg.Identity.Phone,
		&reg.Category,
		&reg.AmountDue,
		&reg.PaymentReference,
		&status,
		&reg.CreatedAt,
		&decidedAt,
		&reg.DecidedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan registration: %w", err)
	}

	id, err := domain.ParseRegistrationID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored registration id is corrupt: %w", err)
	}
	reg.ID = id
	reg.Status = registration.Status(status)
	if !reg.Status.Valid() {
		return nil, fmt.Errorf("stored registration status is corrupt: %q", status)
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		reg.DecidedAt = &t
	}
	return &reg, nil
}

func collect(rows *sql.Rows) ([]*registration.Registration, error) {
	defer rows.Close()
	var out []*registration.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return out, nil
}

// Ping verifies connectivity within a bounded window. Used by health checks.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}
