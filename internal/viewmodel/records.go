package viewmodel

import (
	"context"
	"errors"

	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/services"
)

// FeedbackView lists feedback for one session when sessionID is set,
// otherwise everything the patient has submitted.
type FeedbackView struct {
	*Resource[[]models.Feedback]
	feedback *services.FeedbackService
}

func NewFeedbackView(feedback *services.FeedbackService, patientID, sessionID string) *FeedbackView {
	return &FeedbackView{
		feedback: feedback,
		Resource: NewResource(func(ctx context.Context) ([]models.Feedback, error) {
			switch {
			case patientID == "":
				return nil, nil
			case sessionID != "":
				return feedback.GetSessionFeedback(ctx, sessionID)
			default:
				return feedback.GetUserFeedback(ctx, patientID)
			}
		}),
	}
}

func (v *FeedbackView) Create(ctx context.Context, f *models.Feedback) error {
	return v.Mutate(ctx, func(ctx context.Context) error {
		_, err := v.feedback.CreateFeedback(ctx, f)
		return err
	}, func(list []models.Feedback) []models.Feedback {
		return append([]models.Feedback{*f}, list...)
	})
}

// NotesView lists a patient's clinical notes.
type NotesView struct {
	*Resource[[]models.PractitionerNote]
	notes *services.NoteService
}

func NewNotesView(notes *services.NoteService, patientID string) *NotesView {
	return &NotesView{
		notes: notes,
		Resource: NewResource(func(ctx context.Context) ([]models.PractitionerNote, error) {
			if patientID == "" {
				return nil, nil
			}
			return notes.GetPatientNotes(ctx, patientID)
		}),
	}
}

func (v *NotesView) Create(ctx context.Context, note *models.PractitionerNote) error {
	return v.Mutate(ctx, func(ctx context.Context) error {
		_, err := v.notes.CreateNote(ctx, note)
		return err
	}, func(list []models.PractitionerNote) []models.PractitionerNote {
		return append([]models.PractitionerNote{*note}, list...)
	})
}

func (v *NotesView) Update(ctx context.Context, id string, updates models.Fields) error {
	var updated *models.PractitionerNote
	return v.Mutate(ctx, func(ctx context.Context) error {
		var err error
		updated, err = v.notes.UpdateNote(ctx, id, updates)
		return err
	}, func(list []models.PractitionerNote) []models.PractitionerNote {
		out := make([]models.PractitionerNote, len(list))
		copy(out, list)
		for i := range out {
			if out[i].ID == id {
				out[i] = *updated
			}
		}
		return out
	})
}

// ProgressView is one user's treatment progress. A user with no progress row
// yet has nil data and no error.
type ProgressView struct {
	*Resource[*models.Progress]
	progress *services.ProgressService
	uid      string
}

func NewProgressView(progress *services.ProgressService, uid string) *ProgressView {
	return &ProgressView{
		progress: progress,
		uid:      uid,
		Resource: NewResource(func(ctx context.Context) (*models.Progress, error) {
			if uid == "" {
				return nil, nil
			}
			p, err := progress.GetProgress(ctx, uid)
			if errors.Is(err, services.ErrProgressNotFound) {
				return nil, nil
			}
			return p, err
		}),
	}
}

// Update merges the fields and reloads, since the merge happens server side.
func (v *ProgressView) Update(ctx context.Context, fields models.Fields) error {
	return v.Mutate(ctx, func(ctx context.Context) error {
		return v.progress.UpdateProgress(ctx, v.uid, fields)
	}, nil)
}
