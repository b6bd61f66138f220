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
	ErrHoleScoreNotFound = errors.New("hole score not found")
	ErrHoleScoreConflict = errors.New("a score for this hole already exists in the round")
	ErrHoleScoreInvalid  = errors.New("hole score references a missing round")
)

type ScoreRepository interface {
	WithTx(tx *sql.Tx) ScoreRepository
	Create(ctx context.Context, score *models.HoleScore) error
	GetByID(ctx context.Context, id int) (*models.HoleScore, error)
	ListByRound(ctx context.Context, roundID int) ([]models.HoleScore, error)
	Update(ctx context.Context, score *models.HoleScore) error
	Delete(ctx context.Context, id int) error
}

type postgresScoreRepository struct {
	exec DBTX
}

func NewPostgresScoreRepository(db DBTX) ScoreRepository {
	return &postgresScoreRepository{exec: db}
}

func (r *postgresScoreRepository) WithTx(tx *sql.Tx) ScoreRepository {
	return &postgresScoreRepository{exec: tx}
}

const scoreColumns = `id, round_id, hole_number, strokes, putts, fairway_hit, green_in_regulation, penalty_strokes`

func (r *postgresScoreRepository) Create(ctx context.Context, score *models.HoleScore) error {
	query := `
		INSERT INTO hole_scores (round_id, hole_number, strokes, putts, fairway_hit, green_in_regulation, penalty_strokes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.exec.QueryRowContext(ctx, query,
		score.RoundID,
		score.HoleNumber,
		score.Strokes,
		score.Putts,
		score.FairwayHit,
		score.GreenInRegulation,
		score.PenaltyStrokes,
	).Scan(&score.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation on (round_id, hole_number)
				return ErrHoleScoreConflict
			case "23503":
				return ErrHoleScoreInvalid
			}
		}
		return fmt.Errorf("failed to create hole score: %w", err)
	}
	return nil
}

func (r *postgresScoreRepository) GetByID(ctx context.Context, id int) (*models.HoleScore, error) {
	query := `SELECT ` + scoreColumns + ` FROM hole_scores WHERE id = $1`
	s := &models.HoleScore{}
	err := r.exec.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.RoundID, &s.HoleNumber, &s.Strokes, &s.Putts, &s.FairwayHit, &s.GreenInRegulation, &s.PenaltyStrokes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHoleScoreNotFound
		}
		return nil, fmt.Errorf("failed to get hole score %d: %w", id, err)
	}
	return s, nil
}

// ListByRound returns scores in insertion order; callers sort by hole number.
func (r *postgresScoreRepository) ListByRound(ctx context.Context, roundID int) ([]models.HoleScore, error) {
	query := `SELECT ` + scoreColumns + ` FROM hole_scores WHERE round_id = $1`
	rows, err := r.exec.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores for round %d: %w", roundID, err)
	}
	defer rows.Close()

	scores := make([]models.HoleScore, 0)
	for rows.Next() {
		var s models.HoleScore
		if err := rows.Scan(&s.ID, &s.RoundID, &s.HoleNumber, &s.Strokes, &s.Putts, &s.FairwayHit, &s.GreenInRegulation, &s.PenaltyStrokes); err != nil {
			return nil, fmt.Errorf("failed to scan hole score row: %w", err)
		}
		scores = append(scores, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hole score rows: %w", err)
	}
	return scores, nil
}

func (r *postgresScoreRepository) Update(ctx context.Context, score *models.HoleScore) error {
	query := `
		UPDATE hole_scores
		SET strokes = $1, putts = $2, fairway_hit = $3, green_in_regulation = $4, penalty_strokes = $5
		WHERE id = $6`

	result, err := r.exec.ExecContext(ctx, query,
		score.Strokes,
		score.Putts,
		score.FairwayHit,
		score.GreenInRegulation,
		score.PenaltyStrokes,
		score.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update hole score %d: %w", score.ID, err)
	}
	return checkAffectedRows(result, ErrHoleScoreNotFound)
}

func (r *postgresScoreRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM hole_scores WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete hole score %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrHoleScoreNotFound)
}
