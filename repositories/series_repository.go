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
	ErrSeriesNotFound     = errors.New("series not found")
	ErrSeriesNameConflict = errors.New("series name is already in use")
)

// SeriesFilter narrows and pages a series listing. Zero values mean
// "no constraint" except Limit, which the service defaults.
type SeriesFilter struct {
	Status         *models.SeriesStatus
	StartDateAfter *time.Time
	EndDateBefore  *time.Time
	Search         string
	SortBy         string
	SortDir        string
	Limit          int
	Offset         int
}

type SeriesRepository interface {
	WithTx(tx *sql.Tx) SeriesRepository
	Create(ctx context.Context, series *models.Series) error
	GetByID(ctx context.Context, id int) (*models.Series, error)
	List(ctx context.Context, filter SeriesFilter) ([]*models.Series, error)
	Update(ctx context.Context, series *models.Series) error
	Delete(ctx context.Context, id int) error
}

type postgresSeriesRepository struct {
	exec DBTX
}

func NewPostgresSeriesRepository(db DBTX) SeriesRepository {
	return &postgresSeriesRepository{exec: db}
}

func (r *postgresSeriesRepository) WithTx(tx *sql.Tx) SeriesRepository {
	return &postgresSeriesRepository{exec: tx}
}

func (r *postgresSeriesRepository) Create(ctx context.Context, series *models.Series) error {
	query := `
		INSERT INTO series (name, description, start_date, end_date, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query,
		series.Name,
		series.Description,
		series.StartDate,
		series.EndDate,
		series.Status,
		series.CreatedBy,
	).Scan(&series.ID, &series.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "series_name_key" {
				return ErrSeriesNameConflict
			}
		}
		return fmt.Errorf("failed to create series: %w", err)
	}
	return nil
}

func (r *postgresSeriesRepository) GetByID(ctx context.Context, id int) (*models.Series, error) {
	query := `
		SELECT id, name, description, start_date, end_date, status, created_by, created_at
		FROM series
		WHERE id = $1`

	s := &models.Series{}
	err := r.exec.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.StartDate,
		&s.EndDate,
		&s.Status,
		&s.CreatedBy,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeriesNotFound
		}
		return nil, fmt.Errorf("failed to get series %d: %w", id, err)
	}
	return s, nil
}

// seriesSortColumns whitelists sortable columns; anything else falls back
// to start_date.
var seriesSortColumns = map[string]string{
	"name":       "name",
	"start_date": "start_date",
	"end_date":   "end_date",
	"status":     "status",
	"created_at": "created_at",
}

func (r *postgresSeriesRepository) List(ctx context.Context, filter SeriesFilter) ([]*models.Series, error) {
	var qb strings.Builder
	qb.WriteString(`
		SELECT id, name, description, start_date, end_date, status, created_by, created_at
		FROM series`)

	args := make([]interface{}, 0, 6)
	conds := make([]string, 0, 4)

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.StartDateAfter != nil {
		args = append(args, *filter.StartDateAfter)
		conds = append(conds, fmt.Sprintf("start_date >= $%d", len(args)))
	}
	if filter.EndDateBefore != nil {
		args = append(args, *filter.EndDateBefore)
		conds = append(conds, fmt.Sprintf("end_date <= $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if len(conds) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	sortCol, ok := seriesSortColumns[filter.SortBy]
	if !ok {
		sortCol = "start_date"
	}
	sortDir := "ASC"
	if strings.EqualFold(filter.SortDir, "desc") {
		sortDir = "DESC"
	}
	qb.WriteString(fmt.Sprintf(" ORDER BY %s %s", sortCol, sortDir))

	args = append(args, filter.Limit)
	qb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	args = append(args, filter.Offset)
	qb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	rows, err := r.exec.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Series, 0)
	for rows.Next() {
		s := &models.Series{}
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Description,
			&s.StartDate,
			&s.EndDate,
			&s.Status,
			&s.CreatedBy,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan series row: %w", err)
		}
		list = append(list, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating series rows: %w", err)
	}
	return list, nil
}

func (r *postgresSeriesRepository) Update(ctx context.Context, series *models.Series) error {
	// Owner, id and created_at are never updatable; the service whitelists
	// fields before calling.
	query := `
		UPDATE series
		SET name = $1, description = $2, start_date = $3, end_date = $4, status = $5
		WHERE id = $6`

	result, err := r.exec.ExecContext(ctx, query,
		series.Name,
		series.Description,
		series.StartDate,
		series.EndDate,
		series.Status,
		series.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "series_name_key" {
				return ErrSeriesNameConflict
			}
		}
		return fmt.Errorf("failed to update series %d: %w", series.ID, err)
	}
	return checkAffectedRows(result, ErrSeriesNotFound)
}

func (r *postgresSeriesRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM series WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete series %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrSeriesNotFound)
}
