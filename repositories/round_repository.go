package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golfcompete/golfcompete/models"
	"github.com/lib/pq"
)

var (
	ErrRoundNotFound      = errors.New("round not found")
	ErrRoundEventInvalid  = errors.New("round references a missing event")
	ErrRoundCourseInvalid = errors.New("round references a missing course or tee")
	ErrRoundBagInvalid    = errors.New("round references a missing bag")
)

type RoundRepository interface {
	WithTx(tx *sql.Tx) RoundRepository
	Create(ctx context.Context, round *models.Round) error
	GetByID(ctx context.Context, id int) (*models.Round, error)
	ListByUser(ctx context.Context, userID int, limit, offset int) ([]*models.Round, error)
	Update(ctx context.Context, round *models.Round) error
	UpdateTotalScore(ctx context.Context, id int, total *int) error
	Complete(ctx context.Context, id int, total int) error
	Delete(ctx context.Context, id int) error

	// ListCompletedByBag returns the most recent completed rounds for a bag
	// joined with the tee rating/slope they were played off, newest first.
	ListCompletedByBag(ctx context.Context, bagID, limit int) ([]*RoundWithTee, error)
}

// RoundWithTee pairs a completed round's score with the rating data of the
// tee it was played from, which is all the handicap computation needs.
type RoundWithTee struct {
	RoundID    int
	TotalScore int
	TeeRating  float64
	TeeSlope   int
}

type postgresRoundRepository struct {
	exec DBTX
}

func NewPostgresRoundRepository(db DBTX) RoundRepository {
	return &postgresRoundRepository{exec: db}
}

func (r *postgresRoundRepository) WithTx(tx *sql.Tx) RoundRepository {
	return &postgresRoundRepository{exec: tx}
}

const roundColumns = `id, event_id, user_id, course_id, tee_id, bag_id, round_date, status, total_score, weather, course_condition, notes, created_at`

func (r *postgresRoundRepository) scanRound(row interface{ Scan(...interface{}) error }, rd *models.Round) error {
	return row.Scan(
		&rd.ID,
		&rd.EventID,
		&rd.UserID,
		&rd.CourseID,
		&rd.TeeID,
		&rd.BagID,
		&rd.RoundDate,
		&rd.Status,
		&rd.TotalScore,
		&rd.Weather,
		&rd.Condition,
		&rd.Notes,
		&rd.CreatedAt,
	)
}

func (r *postgresRoundRepository) Create(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO rounds (event_id, user_id, course_id, tee_id, bag_id, round_date, status, weather, course_condition, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query,
		round.EventID,
		round.UserID,
		round.CourseID,
		round.TeeID,
		round.BagID,
		round.RoundDate,
		round.Status,
		round.Weather,
		round.Condition,
		round.Notes,
	).Scan(&round.ID, &round.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "rounds_event_id_fkey":
				return ErrRoundEventInvalid
			case "rounds_course_id_fkey", "rounds_tee_id_fkey":
				return ErrRoundCourseInvalid
			case "rounds_bag_id_fkey":
				return ErrRoundBagInvalid
			}
		}
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, id int) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`
	rd := &models.Round{}
	err := r.scanRound(r.exec.QueryRowContext(ctx, query, id), rd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %d: %w", id, err)
	}
	return rd, nil
}

func (r *postgresRoundRepository) ListByUser(ctx context.Context, userID int, limit, offset int) ([]*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE user_id = $1 ORDER BY round_date DESC LIMIT $2 OFFSET $3`
	rows, err := r.exec.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for user %d: %w", userID, err)
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		rd := &models.Round{}
		if err := r.scanRound(rows, rd); err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}
		rounds = append(rounds, rd)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round rows: %w", err)
	}
	return rounds, nil
}

func (r *postgresRoundRepository) Update(ctx context.Context, round *models.Round) error {
	query := `
		UPDATE rounds
		SET round_date = $1, weather = $2, course_condition = $3, notes = $4
		WHERE id = $5`

	result, err := r.exec.ExecContext(ctx, query,
		round.RoundDate,
		round.Weather,
		round.Condition,
		round.Notes,
		round.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update round %d: %w", round.ID, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) UpdateTotalScore(ctx context.Context, id int, total *int) error {
	result, err := r.exec.ExecContext(ctx, `UPDATE rounds SET total_score = $1 WHERE id = $2`, total, id)
	if err != nil {
		return fmt.Errorf("failed to update total score of round %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) Complete(ctx context.Context, id int, total int) error {
	query := `UPDATE rounds SET status = $1, total_score = $2 WHERE id = $3`
	result, err := r.exec.ExecContext(ctx, query, models.RoundStatusCompleted, total, id)
	if err != nil {
		return fmt.Errorf("failed to complete round %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM rounds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete round %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) ListCompletedByBag(ctx context.Context, bagID, limit int) ([]*RoundWithTee, error) {
	query := `
		SELECT r.id, r.total_score, t.rating, t.slope
		FROM rounds r
		JOIN course_tees t ON r.tee_id = t.id
		WHERE r.bag_id = $1 AND r.status = $2 AND r.total_score IS NOT NULL
		ORDER BY r.round_date DESC
		LIMIT $3`

	rows, err := r.exec.QueryContext(ctx, query, bagID, models.RoundStatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed rounds for bag %d: %w", bagID, err)
	}
	defer rows.Close()

	results := make([]*RoundWithTee, 0)
	for rows.Next() {
		rt := &RoundWithTee{}
		if err := rows.Scan(&rt.RoundID, &rt.TotalScore, &rt.TeeRating, &rt.TeeSlope); err != nil {
			return nil, fmt.Errorf("failed to scan round/tee row: %w", err)
		}
		results = append(results, rt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round/tee rows: %w", err)
	}
	return results, nil
}
