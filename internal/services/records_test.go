package services

import (
	"context"
	"testing"
	"time"

	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackOncePerSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	fb := &models.Feedback{SessionID: "s1", PatientID: "p1", Rating: 5, Energy: 8, Symptoms: map[string]string{"stress": "much_better"}}
	id, err := f.svc.Feedback.CreateFeedback(ctx, fb)
	require.NoError(t, err)
	assert.Equal(t, id, fb.ID)

	_, err = f.svc.Feedback.CreateFeedback(ctx, &models.Feedback{SessionID: "s1", PatientID: "p1", Rating: 3})
	assert.ErrorIs(t, err, ErrDuplicateFeedback)

	// Another patient on the same session is fine.
	f.clock.Advance(time.Minute)
	_, err = f.svc.Feedback.CreateFeedback(ctx, &models.Feedback{SessionID: "s1", PatientID: "p2", Rating: 4})
	require.NoError(t, err)

	_, err = f.svc.Feedback.CreateFeedback(ctx, &models.Feedback{SessionID: "s2", PatientID: "p1", Rating: 6})
	assert.ErrorIs(t, err, ErrValidation)

	forSession, err := f.svc.Feedback.GetSessionFeedback(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, forSession, 2)
	assert.Equal(t, "p2", forSession[0].PatientID, "newest first")
	assert.Equal(t, "p1", forSession[1].PatientID)

	mine, err := f.svc.Feedback.GetUserFeedback(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "much_better", mine[0].Symptoms["stress"])
}

func TestNotesRequirePractitioner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.patient(t, "p1", "Asha")
	f.practitioner(t, "d1", "Dr. Rao")

	_, err := f.svc.Notes.CreateNote(ctx, &models.PractitionerNote{PractitionerID: "p1", PatientID: "p1", Title: "Self note"})
	assert.ErrorIs(t, err, ErrNotPractitioner)

	note := &models.PractitionerNote{
		PractitionerID: "d1",
		PatientID:      "p1",
		Title:          "Week 1",
		Content:        "Responding well to Abhyanga.",
		Tags:           []string{" diet ", "diet", "", "sleep"},
	}
	id, err := f.svc.Notes.CreateNote(ctx, note)
	require.NoError(t, err)

	got, err := f.svc.Notes.GetNote(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"diet", "sleep"}, got.Tags)

	f.clock.Advance(time.Hour)
	updated, err := f.svc.Notes.UpdateNote(ctx, id, models.Fields{"content": "Sleep improved.", "tags": []any{"sleep", "sleep ", "vata"}})
	require.NoError(t, err)
	assert.Equal(t, "Sleep improved.", updated.Content)
	assert.Equal(t, []string{"sleep", "vata"}, updated.Tags)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	_, err = f.svc.Notes.UpdateNote(ctx, id, models.Fields{"patientId": "p2"})
	assert.ErrorIs(t, err, ErrImmutableField)
	_, err = f.svc.Notes.UpdateNote(ctx, "missing", models.Fields{"content": "x"})
	assert.ErrorIs(t, err, ErrNoteNotFound)
	for _, bad := range []models.Fields{{"tags": "sleep"}, {"title": ""}, {"content": 12}, {"pinned": true}} {
		_, err = f.svc.Notes.UpdateNote(ctx, id, bad)
		assert.ErrorIs(t, err, ErrValidation, "%v", bad)
	}

	notes, err := f.svc.Notes.GetPatientNotes(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, []string{"sleep", "vata"}, notes[0].Tags)
}

func TestProgressDeepMerge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Progress.GetProgress(ctx, "p1")
	assert.ErrorIs(t, err, ErrProgressNotFound)

	require.NoError(t, f.svc.Progress.UpdateProgress(ctx, "p1", models.Fields{
		"treatmentProgress": map[string]any{"currentDay": 3, "totalDays": 21, "phase": "Purva Karma"},
	}))
	require.NoError(t, f.svc.Progress.UpdateProgress(ctx, "p1", models.Fields{
		"treatmentProgress": map[string]any{"currentDay": 4},
		"healthMetrics":     map[string]any{"energyLevel": map[string]any{"current": 7, "previous": 5, "target": 9}},
	}))

	p, err := f.svc.Progress.GetProgress(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.UserID)
	require.NotNil(t, p.TreatmentProgress)
	assert.Equal(t, 4, p.TreatmentProgress.CurrentDay)
	assert.Equal(t, 21, p.TreatmentProgress.TotalDays)
	assert.Equal(t, "Purva Karma", p.TreatmentProgress.Phase)
	assert.Equal(t, 7.0, p.HealthMetrics["energyLevel"].Current)

	assert.ErrorIs(t, f.svc.Progress.UpdateProgress(ctx, "", models.Fields{"x": 1}), ErrValidation)
	for _, bad := range []models.Fields{
		{"treatmentProgress": map[string]any{"currentDay": "four"}},
		{"healthMetrics": map[string]any{"energyLevel": "high"}},
		{"weeklyData": "none"},
		{"mood": "calm"},
	} {
		assert.ErrorIs(t, f.svc.Progress.UpdateProgress(ctx, "p1", bad), ErrValidation, "%v", bad)
	}
	p, err = f.svc.Progress.GetProgress(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 4, p.TreatmentProgress.CurrentDay)
}

func TestConversation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	send := func(from, to, content string) {
		f.clock.Advance(time.Minute)
		_, err := f.svc.Messages.SendMessage(ctx, &models.Message{SenderID: from, ReceiverID: to, Content: content})
		require.NoError(t, err)
	}
	send("p1", "d1", "Hello doctor")
	send("p1", "d2", "Wrong doctor")
	send("d1", "p1", "Hello Asha")

	conversation, err := f.svc.Messages.GetConversation(ctx, "d1", "p1")
	require.NoError(t, err)
	require.Len(t, conversation, 2)
	assert.Equal(t, "Hello doctor", conversation[0].Content)
	assert.Equal(t, "Hello Asha", conversation[1].Content)
	assert.Equal(t, models.MessageSent, conversation[0].Status)

	_, err = f.svc.Messages.SendMessage(ctx, &models.Message{SenderID: "p1", ReceiverID: "p1", Content: "me"})
	assert.ErrorIs(t, err, ErrValidation)
}
