package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
)

type ProgressService struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time
}

var progressUpdateFields = fieldSet("treatmentProgress", "healthMetrics", "weeklyData")

// UpdateProgress deep-merges fields into the user's progress row, creating
// it on first write. Keys not named in fields are left as they are. Values
// must decode into the progress shape.
func (s *ProgressService) UpdateProgress(ctx context.Context, userID string, fields models.Fields) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	merged := copyFields(fields)
	delete(merged, "_id")
	delete(merged, "userId")
	if _, err := applyUpdates(&models.Progress{}, merged, progressUpdateFields); err != nil {
		return err
	}
	merged["updatedAt"] = s.now()

	if err := s.store.Merge(ctx, models.CollectionProgress, userID, merged); err != nil {
		s.log.Error(err, "failed to update progress", "userId", userID)
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

func (s *ProgressService) GetProgress(ctx context.Context, userID string) (*models.Progress, error) {
	var p models.Progress
	if err := s.store.Get(ctx, models.CollectionProgress, userID, &p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &p, nil
}
