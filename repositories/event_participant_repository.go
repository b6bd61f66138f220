package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golfcompete/golfcompete/models"
	"github.com/lib/pq"
)

var (
	ErrEventParticipantNotFound = errors.New("event participant not found")
	ErrEventParticipantConflict = errors.New("user is already invited to this event")
)

type EventParticipantRepository interface {
	WithTx(tx *sql.Tx) EventParticipantRepository
	Create(ctx context.Context, p *models.EventParticipant) error
	CreateBatch(ctx context.Context, participants []*models.EventParticipant) error
	GetByID(ctx context.Context, id int) (*models.EventParticipant, error)
	GetByEventAndUser(ctx context.Context, eventID, userID int) (*models.EventParticipant, error)
	ListByEvent(ctx context.Context, eventID int, statusFilter *models.EventInviteStatus) ([]*models.EventParticipant, error)
	UpdateStatus(ctx context.Context, id int, status models.EventInviteStatus, responseDate *time.Time) error
	Delete(ctx context.Context, id int) error
	DeleteByEvent(ctx context.Context, eventID int) error
}

type postgresEventParticipantRepository struct {
	exec DBTX
}

func NewPostgresEventParticipantRepository(db DBTX) EventParticipantRepository {
	return &postgresEventParticipantRepository{exec: db}
}

func (r *postgresEventParticipantRepository) WithTx(tx *sql.Tx) EventParticipantRepository {
	return &postgresEventParticipantRepository{exec: tx}
}

func (r *postgresEventParticipantRepository) Create(ctx context.Context, p *models.EventParticipant) error {
	query := `
		INSERT INTO event_participants (event_id, user_id, status, invitation_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.exec.QueryRowContext(ctx, query,
		p.EventID,
		p.UserID,
		p.Status,
		p.InvitationDate,
	).Scan(&p.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrEventParticipantConflict
		}
		return fmt.Errorf("failed to create event participant: %w", err)
	}
	return nil
}

// CreateBatch bulk-inserts invitation rows in a single statement.
func (r *postgresEventParticipantRepository) CreateBatch(ctx context.Context, participants []*models.EventParticipant) error {
	if len(participants) == 0 {
		return nil
	}

	var qb = `INSERT INTO event_participants (event_id, user_id, status, invitation_date) VALUES `
	args := make([]interface{}, 0, len(participants)*4)
	for i, p := range participants {
		if i > 0 {
			qb += ", "
		}
		n := i * 4
		qb += fmt.Sprintf("($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, p.EventID, p.UserID, p.Status, p.InvitationDate)
	}

	_, err := r.exec.ExecContext(ctx, qb, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrEventParticipantConflict
		}
		return fmt.Errorf("failed to bulk-insert event participants: %w", err)
	}
	return nil
}

const eventParticipantColumns = `id, event_id, user_id, status, invitation_date, response_date`

func (r *postgresEventParticipantRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.EventParticipant, error) {
	p := &models.EventParticipant{}
	err := r.exec.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.EventID,
		&p.UserID,
		&p.Status,
		&p.InvitationDate,
		&p.ResponseDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find event participant: %w", err)
	}
	return p, nil
}

func (r *postgresEventParticipantRepository) GetByID(ctx context.Context, id int) (*models.EventParticipant, error) {
	return r.findOne(ctx, `SELECT `+eventParticipantColumns+` FROM event_participants WHERE id = $1`, id)
}

func (r *postgresEventParticipantRepository) GetByEventAndUser(ctx context.Context, eventID, userID int) (*models.EventParticipant, error) {
	return r.findOne(ctx, `SELECT `+eventParticipantColumns+` FROM event_participants WHERE event_id = $1 AND user_id = $2`, eventID, userID)
}

func (r *postgresEventParticipantRepository) ListByEvent(ctx context.Context, eventID int, statusFilter *models.EventInviteStatus) ([]*models.EventParticipant, error) {
	query := `SELECT ` + eventParticipantColumns + ` FROM event_participants WHERE event_id = $1`
	args := []interface{}{eventID}
	if statusFilter != nil {
		query += ` AND status = $2`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list event participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.EventParticipant, 0)
	for rows.Next() {
		p := &models.EventParticipant{}
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.Status, &p.InvitationDate, &p.ResponseDate); err != nil {
			return nil, fmt.Errorf("failed to scan event participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event participant rows: %w", err)
	}
	return participants, nil
}

func (r *postgresEventParticipantRepository) UpdateStatus(ctx context.Context, id int, status models.EventInviteStatus, responseDate *time.Time) error {
	query := `UPDATE event_participants SET status = $1, response_date = $2 WHERE id = $3`
	result, err := r.exec.ExecContext(ctx, query, status, responseDate, id)
	if err != nil {
		return fmt.Errorf("failed to update event participant status: %w", err)
	}
	return checkAffectedRows(result, ErrEventParticipantNotFound)
}

func (r *postgresEventParticipantRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM event_participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event participant %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrEventParticipantNotFound)
}

func (r *postgresEventParticipantRepository) DeleteByEvent(ctx context.Context, eventID int) error {
	_, err := r.exec.ExecContext(ctx, `DELETE FROM event_participants WHERE event_id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete participants of event %d: %w", eventID, err)
	}
	return nil
}
