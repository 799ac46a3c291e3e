package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
)

type NoteService struct {
	store store.Store
	users *UserService
	log   *logger.Logger
	now   func() time.Time
}

// CreateNote stores a note. The author must have a practitioner profile.
func (s *NoteService) CreateNote(ctx context.Context, note *models.PractitionerNote) (string, error) {
	if err := validateStruct(note); err != nil {
		return "", err
	}
	if _, err := s.users.GetUserByRole(ctx, note.PractitionerID, models.RolePractitioner); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return "", ErrNotPractitioner
		}
		return "", err
	}

	now := s.now()
	note.ID = ""
	note.Tags = normalizeTags(note.Tags)
	note.CreatedAt = now
	note.UpdatedAt = now

	id, err := s.store.Add(ctx, models.CollectionNotes, note)
	if err != nil {
		s.log.Error(err, "failed to create note", "patientId", note.PatientID)
		return "", fmt.Errorf("create note: %w", err)
	}
	note.ID = id
	return id, nil
}

func (s *NoteService) GetNote(ctx context.Context, id string) (*models.PractitionerNote, error) {
	var note models.PractitionerNote
	if err := s.store.Get(ctx, models.CollectionNotes, id, &note); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	return &note, nil
}

// GetPatientNotes lists a patient's notes, newest first.
func (s *NoteService) GetPatientNotes(ctx context.Context, patientID string) ([]models.PractitionerNote, error) {
	var notes []models.PractitionerNote
	q := store.NewQuery(store.Where("patientId", patientID)).Sort(store.Desc("createdAt"))
	if err := s.store.Find(ctx, models.CollectionNotes, q, &notes); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Note fields the author may change.
var noteUpdateFields = fieldSet("title", "content", "tags", "sessionType", "noteType", "practitionerName", "patientName")

func (s *NoteService) UpdateNote(ctx context.Context, id string, updates models.Fields) (*models.PractitionerNote, error) {
	for _, f := range []string{"_id", "id", "createdAt", "practitionerId", "patientId"} {
		if _, ok := updates[f]; ok {
			return nil, fmt.Errorf("%w: %s", ErrImmutableField, f)
		}
	}

	note, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := updates["tags"]; ok {
		note.Tags = nil
	}
	fields, err := applyUpdates(note, updates, noteUpdateFields)
	if err != nil {
		return nil, err
	}
	if _, ok := fields["tags"]; ok {
		fields["tags"] = normalizeTags(note.Tags)
	}
	fields["updatedAt"] = s.now()

	if err := s.store.Update(ctx, models.CollectionNotes, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(err, "failed to update note", "noteId", id)
		return nil, fmt.Errorf("update note: %w", err)
	}
	return s.GetNote(ctx, id)
}

// normalizeTags trims and de-duplicates tags, keeping first-seen order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
