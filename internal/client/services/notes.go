package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clouddash/internal/client/client"
	"github.com/dmitrijs2005/clouddash/internal/client/models"
	"github.com/dmitrijs2005/clouddash/internal/logging"
)

// NotesService is the notes panel. Every mutation is followed by a fresh
// listing, which is what the caller gets back.
type NotesService struct {
	api client.NotesAPI
	log logging.Logger
}

func NewNotesService(api client.NotesAPI, log logging.Logger) *NotesService {
	if log == nil {
		log = logging.Nop()
	}
	return &NotesService{api: api, log: log.With("component", "notes")}
}

// List returns the notes, or an empty list if they cannot be loaded.
func (s *NotesService) List(ctx context.Context) []models.Note {
	notes, err := s.api.ListNotes(ctx)
	if err != nil {
		s.log.Warn(ctx, "notes not loaded", "error", err)
		return []models.Note{}
	}
	if notes == nil {
		return []models.Note{}
	}
	return notes
}

func validateNote(title, text string) (models.Note, error) {
	n := models.Note{Title: strings.TrimSpace(title), Text: strings.TrimSpace(text)}
	if n.Title == "" || n.Text == "" {
		return n, fmt.Errorf("%w: both title and note text are required", ErrValidation)
	}
	return n, nil
}

func (s *NotesService) Create(ctx context.Context, title, text string) ([]models.Note, error) {
	n, err := validateNote(title, text)
	if err != nil {
		return nil, err
	}
	if err := s.api.CreateNote(ctx, n); err != nil {
		return s.List(ctx), fmt.Errorf("create note: %w", err)
	}
	return s.List(ctx), nil
}

func (s *NotesService) Update(ctx context.Context, id models.RecordID, title, text string) ([]models.Note, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: note id is required", ErrValidation)
	}
	n, err := validateNote(title, text)
	if err != nil {
		return nil, err
	}
	if err := s.api.UpdateNote(ctx, id, n); err != nil {
		return s.List(ctx), fmt.Errorf("update note: %w", err)
	}
	return s.List(ctx), nil
}

func (s *NotesService) Delete(ctx context.Context, id models.RecordID) ([]models.Note, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: note id is required", ErrValidation)
	}
	if err := s.api.DeleteNote(ctx, id); err != nil {
		return s.List(ctx), fmt.Errorf("delete note: %w", err)
	}
	return s.List(ctx), nil
}
