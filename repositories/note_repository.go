package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golfcompete/golfcompete/models"
)

var ErrNoteNotFound = errors.New("note not found")

type NoteFilter struct {
	ResourceID   *int
	ResourceType *models.NoteResourceType
	Limit        int
	Offset       int
}

type NoteRepository interface {
	WithTx(tx *sql.Tx) NoteRepository
	Create(ctx context.Context, note *models.UserNote) error
	GetByID(ctx context.Context, id int) (*models.UserNote, error)
	ListByUser(ctx context.Context, userID int, filter NoteFilter) ([]*models.UserNote, error)
	Update(ctx context.Context, note *models.UserNote) error
	Delete(ctx context.Context, id int) error
}

type postgresNoteRepository struct {
	exec DBTX
}

func NewPostgresNoteRepository(db DBTX) NoteRepository {
	return &postgresNoteRepository{exec: db}
}

func (r *postgresNoteRepository) WithTx(tx *sql.Tx) NoteRepository {
	return &postgresNoteRepository{exec: tx}
}

func (r *postgresNoteRepository) Create(ctx context.Context, note *models.UserNote) error {
	query := `
		INSERT INTO user_notes (user_id, note_text, resource_id, resource_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.exec.QueryRowContext(ctx, query,
		note.UserID,
		note.NoteText,
		note.ResourceID,
		note.ResourceType,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (r *postgresNoteRepository) GetByID(ctx context.Context, id int) (*models.UserNote, error) {
	query := `SELECT id, user_id, note_text, resource_id, resource_type, created_at, updated_at FROM user_notes WHERE id = $1`
	n := &models.UserNote{}
	err := r.exec.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.NoteText, &n.ResourceID, &n.ResourceType, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note %d: %w", id, err)
	}
	return n, nil
}

func (r *postgresNoteRepository) ListByUser(ctx context.Context, userID int, filter NoteFilter) ([]*models.UserNote, error) {
	var qb strings.Builder
	qb.WriteString(`SELECT id, user_id, note_text, resource_id, resource_type, created_at, updated_at FROM user_notes WHERE user_id = $1`)
	args := []interface{}{userID}

	if filter.ResourceType != nil {
		args = append(args, *filter.ResourceType)
		qb.WriteString(fmt.Sprintf(" AND resource_type = $%d", len(args)))
	}
	if filter.ResourceID != nil {
		args = append(args, *filter.ResourceID)
		qb.WriteString(fmt.Sprintf(" AND resource_id = $%d", len(args)))
	}
	qb.WriteString(" ORDER BY created_at DESC")

	args = append(args, filter.Limit)
	qb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	args = append(args, filter.Offset)
	qb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	rows, err := r.exec.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes for user %d: %w", userID, err)
	}
	defer rows.Close()

	notes := make([]*models.UserNote, 0)
	for rows.Next() {
		n := &models.UserNote{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.NoteText, &n.ResourceID, &n.ResourceType, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note rows: %w", err)
	}
	return notes, nil
}

func (r *postgresNoteRepository) Update(ctx context.Context, note *models.UserNote) error {
	query := `UPDATE user_notes SET note_text = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.exec.ExecContext(ctx, query, note.NoteText, note.ID)
	if err != nil {
		return fmt.Errorf("failed to update note %d: %w", note.ID, err)
	}
	return checkAffectedRows(result, ErrNoteNotFound)
}

func (r *postgresNoteRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM user_notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrNoteNotFound)
}
