package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message roles. Every stored turn carries exactly one of these.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant || role == RoleSystem
}

// Chat is one conversation bound to an inference model. UpdatedAt is
// refreshed on every new message; CreatedAt never changes after insert.
type Chat struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Model     string             `bson:"model" json:"model"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	// Messages is populated only when a single chat is fetched; it is not
	// part of the chat document itself.
	Messages []Message `bson:"-" json:"messages,omitempty"`
}

// Message is one turn in a chat. Messages are never mutated after insert.
type Message struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ChatID    primitive.ObjectID `bson:"chat_id" json:"chat_id"`
	Role      string             `bson:"role" json:"role"`
	Content   string             `bson:"content" json:"content"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
