package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/golfcompete/golfcompete/models"
	"github.com/golfcompete/golfcompete/repositories"
)

type CreateNoteInput struct {
	NoteText     string                   `json:"note_text"`
	ResourceID   *int                     `json:"resource_id"`
	ResourceType *models.NoteResourceType `json:"resource_type"`
}

// NoteService manages personal notes. Notes are private: every operation is
// scoped to the author.
type NoteService interface {
	CreateNote(ctx context.Context, userID int, input CreateNoteInput) (*models.UserNote, error)
	GetNote(ctx context.Context, userID, noteID int) (*models.UserNote, error)
	ListNotes(ctx context.Context, userID int, filter repositories.NoteFilter) ([]*models.UserNote, error)
	UpdateNote(ctx context.Context, userID, noteID int, noteText string) (*models.UserNote, error)
	DeleteNote(ctx context.Context, userID, noteID int) error
}

type noteService struct {
	noteRepo repositories.NoteRepository
}

func NewNoteService(noteRepo repositories.NoteRepository) NoteService {
	return &noteService{noteRepo: noteRepo}
}

func validNoteResourceType(t models.NoteResourceType) bool {
	switch t {
	case models.NoteResourceRound, models.NoteResourceEvent, models.NoteResourceSeries, models.NoteResourceCourse:
		return true
	}
	return false
}

func (s *noteService) CreateNote(ctx context.Context, userID int, input CreateNoteInput) (*models.UserNote, error) {
	if input.NoteText == "" {
		return nil, ErrNoteTextRequired
	}
	if input.ResourceType != nil && !validNoteResourceType(*input.ResourceType) {
		return nil, ErrValidationFailed
	}
	// A resource link needs both halves.
	if (input.ResourceID == nil) != (input.ResourceType == nil) {
		return nil, ErrValidationFailed
	}

	note := &models.UserNote{
		UserID:       userID,
		NoteText:     input.NoteText,
		ResourceID:   input.ResourceID,
		ResourceType: input.ResourceType,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

func (s *noteService) GetNote(ctx context.Context, userID, noteID int) (*models.UserNote, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repositories.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note %d: %w", noteID, err)
	}
	if note.UserID != userID {
		// Report not-found so foreign note ids stay unguessable.
		return nil, ErrNoteNotFound
	}
	return note, nil
}

func (s *noteService) ListNotes(ctx context.Context, userID int, filter repositories.NoteFilter) ([]*models.UserNote, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.noteRepo.ListByUser(ctx, userID, filter)
}

func (s *noteService) UpdateNote(ctx context.Context, userID, noteID int, noteText string) (*models.UserNote, error) {
	if noteText == "" {
		return nil, ErrNoteTextRequired
	}

	note, err := s.GetNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	note.NoteText = noteText
	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to update note %d: %w", noteID, err)
	}
	return note, nil
}

func (s *noteService) DeleteNote(ctx context.Context, userID, noteID int) error {
	if _, err := s.GetNote(ctx, userID, noteID); err != nil {
		return err
	}
	return s.noteRepo.Delete(ctx, noteID)
}
