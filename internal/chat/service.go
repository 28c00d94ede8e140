package chat

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type backend interface {
	Conversations(ctx context.Context) ([]types.Conversation, error)
	Conversation(ctx context.Context, conversationID int) (*types.Conversation, []types.ChatMessage, error)
	PostMessage(ctx context.Context, conversationID int, body string) (*types.ChatMessage, error)
	UnreadCount(ctx context.Context) (int, error)
}

const maxMessageLength = 4000

// Service is the support-chat surface. Messages live server-side; the client
// re-fetches a conversation to see replies.
type Service struct {
	backend backend
	logger  *logger.Logger
}

// NewService builds the chat service.
func NewService(b backend, logg *logger.Logger) (*Service, error) {
	if b == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{backend: b, logger: logg}, nil
}

// Conversations lists the user's support threads.
func (s *Service) Conversations(ctx context.Context) ([]types.Conversation, error) {
	return s.backend.Conversations(ctx)
}

// Open fetches one thread with its messages.
func (s *Service) Open(ctx context.Context, conversationID int) (*types.Conversation, []types.ChatMessage, error) {
	return s.backend.Conversation(ctx, conversationID)
}

// Send posts a message to a thread after local validation.
func (s *Service) Send(ctx context.Context, conversationID int, body string) (*types.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is empty")
	}
	if len(body) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("message exceeds %d characters", maxMessageLength))
	}
	return s.backend.PostMessage(ctx, conversationID, body)
}

// Unread returns the unread message count for the shell badge. Unreachable
// backend reads as zero; the badge is decoration, not state.
func (s *Service) Unread(ctx context.Context) int {
	count, err := s.backend.UnreadCount(ctx)
	if err != nil {
		s.logger.Debug(ctx, "unread count unavailable")
		return 0
	}
	return count
}
