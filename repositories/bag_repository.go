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
	ErrBagNotFound    = errors.New("bag not found")
	ErrBagUserInvalid = errors.New("bag references a missing user")
)

type BagRepository interface {
	WithTx(tx *sql.Tx) BagRepository
	Create(ctx context.Context, bag *models.Bag) error
	GetByID(ctx context.Context, id int) (*models.Bag, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Bag, error)
	Update(ctx context.Context, bag *models.Bag) error
	UpdateHandicapIndex(ctx context.Context, id int, index *float64) error
	Delete(ctx context.Context, id int) error
}

type postgresBagRepository struct {
	exec DBTX
}

func NewPostgresBagRepository(db DBTX) BagRepository {
	return &postgresBagRepository{exec: db}
}

func (r *postgresBagRepository) WithTx(tx *sql.Tx) BagRepository {
	return &postgresBagRepository{exec: tx}
}

func (r *postgresBagRepository) Create(ctx context.Context, bag *models.Bag) error {
	query := `
		INSERT INTO bags (user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query,
		bag.UserID,
		bag.Name,
		bag.Description,
	).Scan(&bag.ID, &bag.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrBagUserInvalid
		}
		return fmt.Errorf("failed to create bag: %w", err)
	}
	return nil
}

func (r *postgresBagRepository) GetByID(ctx context.Context, id int) (*models.Bag, error) {
	query := `SELECT id, user_id, name, description, handicap_index, created_at FROM bags WHERE id = $1`
	b := &models.Bag{}
	err := r.exec.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.Name, &b.Description, &b.HandicapIndex, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBagNotFound
		}
		return nil, fmt.Errorf("failed to get bag %d: %w", id, err)
	}
	return b, nil
}

func (r *postgresBagRepository) ListByUser(ctx context.Context, userID int) ([]*models.Bag, error) {
	query := `SELECT id, user_id, name, description, handicap_index, created_at FROM bags WHERE user_id = $1 ORDER BY id ASC`
	rows, err := r.exec.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bags for user %d: %w", userID, err)
	}
	defer rows.Close()

	bags := make([]*models.Bag, 0)
	for rows.Next() {
		b := &models.Bag{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Description, &b.HandicapIndex, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bag row: %w", err)
		}
		bags = append(bags, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bag rows: %w", err)
	}
	return bags, nil
}

func (r *postgresBagRepository) Update(ctx context.Context, bag *models.Bag) error {
	query := `UPDATE bags SET name = $1, description = $2 WHERE id = $3`
	result, err := r.exec.ExecContext(ctx, query, bag.Name, bag.Description, bag.ID)
	if err != nil {
		return fmt.Errorf("failed to update bag %d: %w", bag.ID, err)
	}
	return checkAffectedRows(result, ErrBagNotFound)
}

func (r *postgresBagRepository) UpdateHandicapIndex(ctx context.Context, id int, index *float64) error {
	result, err := r.exec.ExecContext(ctx, `UPDATE bags SET handicap_index = $1 WHERE id = $2`, index, id)
	if err != nil {
		return fmt.Errorf("failed to update handicap index of bag %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBagNotFound)
}

func (r *postgresBagRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM bags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bag %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBagNotFound)
}
