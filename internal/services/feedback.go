package services

import (
	"context"
	"fmt"
	"time"

	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
)

type FeedbackService struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time
}

// CreateFeedback stores a rating. A patient can rate each session once.
func (s *FeedbackService) CreateFeedback(ctx context.Context, f *models.Feedback) (string, error) {
	if err := validateStruct(f); err != nil {
		return "", err
	}

	var existing []models.Feedback
	q := store.NewQuery(store.Where("sessionId", f.SessionID), store.Where("patientId", f.PatientID)).Take(1)
	if err := s.store.Find(ctx, models.CollectionFeedback, q, &existing); err != nil {
		return "", fmt.Errorf("check existing feedback: %w", err)
	}
	if len(existing) > 0 {
		return "", ErrDuplicateFeedback
	}

	f.ID = ""
	f.CreatedAt = s.now()
	id, err := s.store.Add(ctx, models.CollectionFeedback, f)
	if err != nil {
		s.log.Error(err, "failed to create feedback", "sessionId", f.SessionID)
		return "", fmt.Errorf("create feedback: %w", err)
	}
	f.ID = id
	return id, nil
}

// GetSessionFeedback lists a session's feedback, newest first.
func (s *FeedbackService) GetSessionFeedback(ctx context.Context, sessionID string) ([]models.Feedback, error) {
	var feedback []models.Feedback
	q := store.NewQuery(store.Where("sessionId", sessionID)).Sort(store.Desc("createdAt"))
	if err := s.store.Find(ctx, models.CollectionFeedback, q, &feedback); err != nil {
		return nil, fmt.Errorf("list session feedback: %w", err)
	}
	return feedback, nil
}

// GetUserFeedback lists a patient's feedback, newest first.
func (s *FeedbackService) GetUserFeedback(ctx context.Context, patientID string) ([]models.Feedback, error) {
	var feedback []models.Feedback
	q := store.NewQuery(store.Where("patientId", patientID)).Sort(store.Desc("createdAt"))
	if err := s.store.Find(ctx, models.CollectionFeedback, q, &feedback); err != nil {
		return nil, fmt.Errorf("list patient feedback: %w", err)
	}
	return feedback, nil
}
