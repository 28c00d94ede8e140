package types

import "time"

// Conversation is a support thread between a customer and staff.
type Conversation struct {
	ID          int       `json:"id"`
	Subject     string    `json:"subject,omitempty"`
	OrderID     int       `json:"order_id,omitempty"`
	UnreadCount int       `json:"unread_count,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// ChatMessage is a single message inside a conversation.
type ChatMessage struct {
	ID        int       `json:"id"`
	Sender    string    `json:"sender,omitempty"`
	Body      string    `json:"body"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
