package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
)

type MessageService struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time
}

func (s *MessageService) SendMessage(ctx context.Context, m *models.Message) (string, error) {
	if err := validateStruct(m); err != nil {
		return "", err
	}

	m.ID = ""
	m.Participants = []string{m.SenderID, m.ReceiverID}
	m.Status = models.MessageSent
	m.CreatedAt = s.now()

	id, err := s.store.Add(ctx, models.CollectionMessages, m)
	if err != nil {
		s.log.Error(err, "failed to send message", "senderId", m.SenderID)
		return "", fmt.Errorf("send message: %w", err)
	}
	m.ID = id
	return id, nil
}

// GetConversation returns the messages exchanged between two users, oldest first.
func (s *MessageService) GetConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	var candidates []models.Message
	q := store.NewQuery(store.ArrayContains("participants", userA))
	if err := s.store.Find(ctx, models.CollectionMessages, q, &candidates); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	conversation := make([]models.Message, 0, len(candidates))
	for _, m := range candidates {
		for _, p := range m.Participants {
			if p == userB {
				conversation = append(conversation, m)
				break
			}
		}
	}
	sort.SliceStable(conversation, func(i, j int) bool {
		return conversation[i].CreatedAt.Before(conversation[j].CreatedAt)
	})
	return conversation, nil
}
