package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ollama-chat-backend/internal/models"
)

// ChatRepo persists chats and their messages in MongoDB. Chats and messages
// live in separate collections; messages reference their chat by id and are
// looked up through the (chat_id, timestamp) index.
type ChatRepo struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

func NewChatRepo(db *mongo.Database) *ChatRepo {
	return &ChatRepo{
		chats:    db.Collection("chats"),
		messages: db.Collection("messages"),
	}
}

func (r *ChatRepo) CreateChat(ctx context.Context, title, model string) (*models.Chat, error) {
	now := time.Now().UTC()
	chat := &models.Chat{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.chats.InsertOne(ctx, chat); err != nil {
		return nil, &models.StorageError{Op: "insert chat", Err: err}
	}
	return chat, nil
}

// AddMessage inserts a turn and refreshes the owning chat's updated_at to
// the message timestamp. The two writes are each atomic on their own
// document; no cross-document transaction is used.
func (r *ChatRepo) AddMessage(ctx context.Context, chatID, role, content string) (*models.Message, error) {
	id, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, &models.NotFoundError{Message: "Chat not found"}
	}

	// Messages must never reference a nonexistent chat, so the owning
	// document is checked before the insert.
	err = r.chats.FindOne(ctx, bson.M{"_id": id}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Message: "Chat not found"}
	}
	if err != nil {
		return nil, &models.StorageError{Op: "find chat", Err: err}
	}

	msg := &models.Message{
		ID:        primitive.NewObjectID(),
		ChatID:    id,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return nil, &models.StorageError{Op: "insert message", Err: err}
	}

	_, err = r.chats.UpdateByID(ctx, id, bson.M{"$set": bson.M{"updated_at": msg.Timestamp}})
	if err != nil {
		return nil, &models.StorageError{Op: "update chat timestamp", Err: err}
	}

	return msg, nil
}

// GetChat returns one chat with its messages ordered oldest first, or
// (nil, nil) when the identifier is unknown or malformed.
func (r *ChatRepo) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	id, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, nil
	}

	var chat models.Chat
	err = r.chats.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.StorageError{Op: "find chat", Err: err}
	}

	// _id as tie-break keeps insertion order for equal timestamps.
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.messages.Find(ctx, bson.M{"chat_id": id}, opts)
	if err != nil {
		return nil, &models.StorageError{Op: "find messages", Err: err}
	}

	chat.Messages = []models.Message{}
	if err := cursor.All(ctx, &chat.Messages); err != nil {
		return nil, &models.StorageError{Op: "decode messages", Err: err}
	}

	return &chat, nil
}

// GetAllChats returns chat metadata without messages, most recently active
// first.
func (r *ChatRepo) GetAllChats(ctx context.Context) ([]models.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.chats.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, &models.StorageError{Op: "list chats", Err: err}
	}

	chats := []models.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, &models.StorageError{Op: "decode chats", Err: err}
	}
	return chats, nil
}

// DeleteChat removes all of a chat's messages and then the chat itself, in
// that order, so a crash in between never leaves a chat pointing at
// messages. Deleting an unknown or already-deleted chat is a no-op, which
// also makes a partially failed delete recoverable by retrying.
func (r *ChatRepo) DeleteChat(ctx context.Context, chatID string) error {
	id, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil
	}

	if _, err := r.messages.DeleteMany(ctx, bson.M{"chat_id": id}); err != nil {
		return &models.StorageError{Op: "delete messages", Err: err}
	}
	if _, err := r.chats.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return &models.StorageError{Op: "delete chat", Err: err}
	}
	return nil
}
