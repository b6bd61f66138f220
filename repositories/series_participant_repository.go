package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golfcompete/golfcompete/models"
	"github.com/lib/pq"
)

var (
	ErrSeriesParticipantNotFound = errors.New("series participant not found")
	ErrSeriesParticipantConflict = errors.New("user is already a participant of this series")
	ErrSeriesParticipantInvalid  = errors.New("series participant references a missing series or user")
)

type SeriesParticipantRepository interface {
	WithTx(tx *sql.Tx) SeriesParticipantRepository
	Create(ctx context.Context, p *models.SeriesParticipant) error
	GetByID(ctx context.Context, id int) (*models.SeriesParticipant, error)
	GetBySeriesAndUser(ctx context.Context, seriesID, userID int) (*models.SeriesParticipant, error)
	ListBySeries(ctx context.Context, seriesID int, statusFilter *models.SeriesParticipantStatus, includeUser bool) ([]*models.SeriesParticipant, error)
	UpdateStatus(ctx context.Context, id int, status models.SeriesParticipantStatus, joinedAt *time.Time) error
	Delete(ctx context.Context, id int) error
	DeleteBySeries(ctx context.Context, seriesID int) error
}

type postgresSeriesParticipantRepository struct {
	exec DBTX
}

func NewPostgresSeriesParticipantRepository(db DBTX) SeriesParticipantRepository {
	return &postgresSeriesParticipantRepository{exec: db}
}

func (r *postgresSeriesParticipantRepository) WithTx(tx *sql.Tx) SeriesParticipantRepository {
	return &postgresSeriesParticipantRepository{exec: tx}
}

func (r *postgresSeriesParticipantRepository) Create(ctx context.Context, p *models.SeriesParticipant) error {
	query := `
		INSERT INTO series_participants (series_id, user_id, role, status, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.exec.QueryRowContext(ctx, query,
		p.SeriesID,
		p.UserID,
		p.Role,
		p.Status,
		p.JoinedAt,
	).Scan(&p.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "series_participants_series_id_user_id_key" {
					return ErrSeriesParticipantConflict
				}
			case "23503": // foreign_key_violation
				return ErrSeriesParticipantInvalid
			}
		}
		return fmt.Errorf("failed to create series participant: %w", err)
	}
	return nil
}

func (r *postgresSeriesParticipantRepository) GetByID(ctx context.Context, id int) (*models.SeriesParticipant, error) {
	query := `
		SELECT id, series_id, user_id, role, status, joined_at
		FROM series_participants
		WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresSeriesParticipantRepository) GetBySeriesAndUser(ctx context.Context, seriesID, userID int) (*models.SeriesParticipant, error) {
	query := `
		SELECT id, series_id, user_id, role, status, joined_at
		FROM series_participants
		WHERE series_id = $1 AND user_id = $2`
	return r.findOne(ctx, query, seriesID, userID)
}

func (r *postgresSeriesParticipantRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.SeriesParticipant, error) {
	p := &models.SeriesParticipant{}
	err := r.exec.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.SeriesID,
		&p.UserID,
		&p.Role,
		&p.Status,
		&p.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeriesParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find series participant: %w", err)
	}
	return p, nil
}

func (r *postgresSeriesParticipantRepository) ListBySeries(ctx context.Context, seriesID int, statusFilter *models.SeriesParticipantStatus, includeUser bool) ([]*models.SeriesParticipant, error) {
	var qb strings.Builder
	args := []interface{}{seriesID}

	qb.WriteString(`
		SELECT sp.id, sp.series_id, sp.user_id, sp.role, sp.status, sp.joined_at`)
	if includeUser {
		qb.WriteString(`,
			u.id, u.first_name, u.last_name, u.email, u.role`)
	}
	qb.WriteString(`
		FROM series_participants sp`)
	if includeUser {
		qb.WriteString(`
		JOIN users u ON sp.user_id = u.id`)
	}
	qb.WriteString(` WHERE sp.series_id = $1`)

	if statusFilter != nil {
		args = append(args, *statusFilter)
		qb.WriteString(fmt.Sprintf(" AND sp.status = $%d", len(args)))
	}
	qb.WriteString(" ORDER BY sp.id ASC")

	rows, err := r.exec.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list series participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.SeriesParticipant, 0)
	for rows.Next() {
		var p models.SeriesParticipant
		var u models.User
		dest := []interface{}{&p.ID, &p.SeriesID, &p.UserID, &p.Role, &p.Status, &p.JoinedAt}
		if includeUser {
			dest = append(dest, &u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan series participant row: %w", err)
		}
		if includeUser {
			p.User = &u
		}
		participants = append(participants, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating series participant rows: %w", err)
	}
	return participants, nil
}

func (r *postgresSeriesParticipantRepository) UpdateStatus(ctx context.Context, id int, status models.SeriesParticipantStatus, joinedAt *time.Time) error {
	query := `UPDATE series_participants SET status = $1, joined_at = $2 WHERE id = $3`
	result, err := r.exec.ExecContext(ctx, query, status, joinedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update series participant status: %w", err)
	}
	return checkAffectedRows(result, ErrSeriesParticipantNotFound)
}

func (r *postgresSeriesParticipantRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM series_participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete series participant %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrSeriesParticipantNotFound)
}

func (r *postgresSeriesParticipantRepository) DeleteBySeries(ctx context.Context, seriesID int) error {
	_, err := r.exec.ExecContext(ctx, `DELETE FROM series_participants WHERE series_id = $1`, seriesID)
	if err != nil {
		return fmt.Errorf("failed to delete participants of series %d: %w", seriesID, err)
	}
	return nil
}
