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
	ErrEventNotFound       = errors.New("event not found")
	ErrEventSeriesInvalid  = errors.New("event references a missing series")
	ErrEventCourseInvalid  = errors.New("event references a missing course")
	ErrSeriesEventConflict = errors.New("event is already ordered within this series")
)

type EventFilter struct {
	Status    *models.EventStatus
	SeriesID  *int
	CreatedBy *int
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

type EventRepository interface {
	WithTx(tx *sql.Tx) EventRepository
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context, filter EventFilter) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int) error

	// Series ordering rows.
	NextEventOrder(ctx context.Context, seriesID int) (int, error)
	CreateSeriesEvent(ctx context.Context, se *models.SeriesEvent) error
	GetEventOrder(ctx context.Context, eventID int) (*int, error)
	DeleteSeriesEvent(ctx context.Context, eventID int) error

	// DetachSeries strips a series from all its events: ordering rows are
	// removed and events keep living standalone.
	DetachSeries(ctx context.Context, seriesID int) error

	// ListDueForStatus returns events whose status should advance given the
	// current time: scheduled/upcoming events whose date has arrived, and
	// in_progress events older than a day.
	ListDueForStatus(ctx context.Context, now time.Time) ([]*models.Event, error)
	UpdateStatus(ctx context.Context, id int, status models.EventStatus) error
}

type postgresEventRepository struct {
	exec DBTX
}

func NewPostgresEventRepository(db DBTX) EventRepository {
	return &postgresEventRepository{exec: db}
}

func (r *postgresEventRepository) WithTx(tx *sql.Tx) EventRepository {
	return &postgresEventRepository{exec: tx}
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, description, event_date, status, series_id, course_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query,
		event.Name,
		event.Description,
		event.EventDate,
		event.Status,
		event.SeriesID,
		event.CourseID,
		event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "events_series_id_fkey":
				return ErrEventSeriesInvalid
			case "events_course_id_fkey":
				return ErrEventCourseInvalid
			}
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) scanEvent(row interface{ Scan(...interface{}) error }, e *models.Event) error {
	return row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.EventDate,
		&e.Status,
		&e.SeriesID,
		&e.CourseID,
		&e.CreatedBy,
		&e.CreatedAt,
	)
}

const eventColumns = `id, name, description, event_date, status, series_id, course_id, created_by, created_at`

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e := &models.Event{}
	err := r.scanEvent(r.exec.QueryRowContext(ctx, query, id), e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return e, nil
}

func (r *postgresEventRepository) List(ctx context.Context, filter EventFilter) ([]*models.Event, error) {
	var qb strings.Builder
	qb.WriteString(`SELECT ` + eventColumns + ` FROM events`)

	args := make([]interface{}, 0, 6)
	conds := make([]string, 0, 5)

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.SeriesID != nil {
		args = append(args, *filter.SeriesID)
		conds = append(conds, fmt.Sprintf("series_id = $%d", len(args)))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		conds = append(conds, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conds = append(conds, fmt.Sprintf("event_date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		conds = append(conds, fmt.Sprintf("event_date <= $%d", len(args)))
	}
	if len(conds) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	qb.WriteString(" ORDER BY event_date ASC")

	args = append(args, filter.Limit)
	qb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	args = append(args, filter.Offset)
	qb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	rows, err := r.exec.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		e := &models.Event{}
		if err := r.scanEvent(rows, e); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, event_date = $3, status = $4, course_id = $5
		WHERE id = $6`

	result, err := r.exec.ExecContext(ctx, query,
		event.Name,
		event.Description,
		event.EventDate,
		event.Status,
		event.CourseID,
		event.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" && pqErr.Constraint == "events_course_id_fkey" {
			return ErrEventCourseInvalid
		}
		return fmt.Errorf("failed to update event %d: %w", event.ID, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) NextEventOrder(ctx context.Context, seriesID int) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(event_order), 0) + 1 FROM series_events WHERE series_id = $1`
	if err := r.exec.QueryRowContext(ctx, query, seriesID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next event order for series %d: %w", seriesID, err)
	}
	return next, nil
}

func (r *postgresEventRepository) CreateSeriesEvent(ctx context.Context, se *models.SeriesEvent) error {
	query := `INSERT INTO series_events (series_id, event_id, event_order) VALUES ($1, $2, $3)`
	_, err := r.exec.ExecContext(ctx, query, se.SeriesID, se.EventID, se.EventOrder)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrSeriesEventConflict
		}
		return fmt.Errorf("failed to create series event row: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetEventOrder(ctx context.Context, eventID int) (*int, error) {
	var order int
	err := r.exec.QueryRowContext(ctx, `SELECT event_order FROM series_events WHERE event_id = $1`, eventID).Scan(&order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event order for event %d: %w", eventID, err)
	}
	return &order, nil
}

func (r *postgresEventRepository) DeleteSeriesEvent(ctx context.Context, eventID int) error {
	_, err := r.exec.ExecContext(ctx, `DELETE FROM series_events WHERE event_id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete series event row for event %d: %w", eventID, err)
	}
	return nil
}

func (r *postgresEventRepository) DetachSeries(ctx context.Context, seriesID int) error {
	if _, err := r.exec.ExecContext(ctx, `DELETE FROM series_events WHERE series_id = $1`, seriesID); err != nil {
		return fmt.Errorf("failed to delete ordering rows of series %d: %w", seriesID, err)
	}
	if _, err := r.exec.ExecContext(ctx, `UPDATE events SET series_id = NULL WHERE series_id = $1`, seriesID); err != nil {
		return fmt.Errorf("failed to detach events of series %d: %w", seriesID, err)
	}
	return nil
}

func (r *postgresEventRepository) ListDueForStatus(ctx context.Context, now time.Time) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE (status IN ('scheduled', 'upcoming') AND event_date <= $1)
		   OR (status = 'in_progress' AND event_date <= $2)`

	rows, err := r.exec.QueryContext(ctx, query, now, now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to list events due for status update: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		e := &models.Event{}
		if err := r.scanEvent(rows, e); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func (r *postgresEventRepository) UpdateStatus(ctx context.Context, id int, status models.EventStatus) error {
	result, err := r.exec.ExecContext(ctx, `UPDATE events SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of event %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}
