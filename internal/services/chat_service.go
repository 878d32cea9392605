package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

// UnknownUser is shown for messages whose author no longer has a profile.
const UnknownUser = "Unknown User"

type ChatService struct {
	messages MessageStore
	users    UserStore
	now      func() time.Time
}

func NewChatService(messages MessageStore, users UserStore) *ChatService {
	return &ChatService{messages: messages, users: users, now: time.Now}
}

// Send posts a message as uid.
func (s *ChatService) Send(ctx context.Context, uid, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.BadRequest("chat", "message cannot be empty")
	}
	msg := &models.Message{
		Text:      text,
		CreatedAt: s.now(),
		User:      uid,
	}
	if _, err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// List returns the conversation, oldest first, and records that uid has
// now seen every message.
func (s *ChatService) List(ctx context.Context, uid string) ([]*models.Message, error) {
	// counted before listing so a message arriving in between stays unread
	total, countErr := s.messages.Count(ctx)

	list, err := s.messages.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ResolveNames(ctx, list); err != nil {
		return nil, err
	}
	if countErr != nil {
		logger.Warn("count messages", zap.Error(countErr))
		total = int64(len(list))
	}
	s.MarkRead(ctx, uid, total)
	if list == nil {
		list = []*models.Message{}
	}
	return list, nil
}

// ResolveNames fills in the author name of each message.
func (s *ChatService) ResolveNames(ctx context.Context, list []*models.Message) error {
	team, err := names(ctx, s.users)
	if err != nil {
		return err
	}
	for _, m := range list {
		if name, ok := team[m.User]; ok {
			m.UserName = name
		} else {
			m.UserName = UnknownUser
		}
	}
	return nil
}

// MarkAllRead marks the whole chat as read for every uid. The stored
// message count is used, since loaded may miss undecodable documents; loaded
// is the fallback when the chat cannot be counted.
func (s *ChatService) MarkAllRead(ctx context.Context, uids []string, loaded int) {
	if len(uids) == 0 {
		return
	}
	total, err := s.messages.Count(ctx)
	if err != nil {
		logger.Warn("count messages", zap.Error(err))
		total = int64(loaded)
	}
	for _, uid := range uids {
		s.MarkRead(ctx, uid, total)
	}
}

// MarkRead sets uid's messagesSeen to n. Best effort.
func (s *ChatService) MarkRead(ctx context.Context, uid string, n int64) {
	if err := s.users.UpdateMessagesSeen(ctx, uid, n); err != nil {
		logger.Warn("update messages seen", zap.String("uid", uid), zap.Error(err))
	}
}
