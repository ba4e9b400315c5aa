package model

import "time"

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

type Chat struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type Message struct {
	ID        string    `json:"id" bson:"_id"`
	ChatID    string    `json:"chat_id" bson:"chat_id"`
	Sender    string    `json:"sender" bson:"sender"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Exchange is one user message together with the assistant reply it produced.
type Exchange struct {
	UserMessage Message `json:"user_message"`
	AIMessage   Message `json:"ai_message"`
}
