package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type conversationsResponse struct {
	envelopeResponse
	Conversations []types.Conversation `json:"conversations"`
}

// Conversations lists the user's support threads.
func (c *Client) Conversations(ctx context.Context) ([]types.Conversation, error) {
	var resp conversationsResponse
	err := c.do(ctx, requestSpec{
		op:     "chat.conversations",
		method: http.MethodGet,
		path:   "/chat/conversations/",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

type conversationResponse struct {
	envelopeResponse
	Conversation types.Conversation  `json:"conversation"`
	Messages     []types.ChatMessage `json:"messages"`
}

// Conversation fetches one thread with its messages.
func (c *Client) Conversation(ctx context.Context, conversationID int) (*types.Conversation, []types.ChatMessage, error) {
	var resp conversationResponse
	err := c.do(ctx, requestSpec{
		op:     "chat.conversation",
		method: http.MethodGet,
		path:   fmt.Sprintf("/chat/conversations/%d/", conversationID),
		fields: map[string]any{"conversation_id": conversationID},
	}, &resp)
	if err != nil {
		return nil, nil, err
	}
	return &resp.Conversation, resp.Messages, nil
}

type postMessageResponse struct {
	envelopeResponse
	ChatMessage types.ChatMessage `json:"chat_message"`
}

// PostMessage appends a message to a thread.
func (c *Client) PostMessage(ctx context.Context, conversationID int, body string) (*types.ChatMessage, error) {
	var resp postMessageResponse
	err := c.do(ctx, requestSpec{
		op:     "chat.post",
		method: http.MethodPost,
		path:   fmt.Sprintf("/chat/conversations/%d/", conversationID),
		body:   map[string]string{"body": body},
		fields: map[string]any{"conversation_id": conversationID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.ChatMessage, nil
}

type unreadCountResponse struct {
	envelopeResponse
	Count int `json:"count"`
}

// UnreadCount reports how many chat messages await the user.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp unreadCountResponse
	err := c.do(ctx, requestSpec{
		op:     "chat.unread_count",
		method: http.MethodGet,
		path:   "/chat/unread-count/",
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}
