package models

import "time"

type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

type Message struct {
	ID           string        `bson:"_id,omitempty" json:"id"`
	SenderID     string        `bson:"senderId" json:"senderId" validate:"required"`
	ReceiverID   string        `bson:"receiverId" json:"receiverId" validate:"required,nefield=SenderID"`
	Content      string        `bson:"content" json:"content" validate:"required"`
	Participants []string      `bson:"participants" json:"participants"`
	Status       MessageStatus `bson:"status" json:"status"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
}
