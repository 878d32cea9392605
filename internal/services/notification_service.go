package services

import (
	"context"

	"firebase.google.com/go/messaging"
	"go.uber.org/zap"

	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

// FCM accepts at most 500 tokens per multicast.
const maxMulticastTokens = 500

// Messenger is the part of the FCM client used for pushes.
type Messenger interface {
	SendMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// NotificationService sends device pushes when content is created. Pushes
// are best effort: nothing is returned and failures are only logged.
type NotificationService struct {
	client Messenger
	users  UserStore
}

// NewNotificationService returns a service that does nothing when client is nil.
func NewNotificationService(client Messenger, users UserStore) *NotificationService {
	return &NotificationService{client: client, users: users}
}

func (s *NotificationService) Enabled() bool {
	return s != nil && s.client != nil
}

// Notify pushes msg to every registered device of its recipients, or of
// the whole team when it has none.
func (s *NotificationService) Notify(ctx context.Context, msg models.PushMessage) {
	if !s.Enabled() {
		return
	}

	tokens, err := s.tokens(ctx, msg.Recipients)
	if err != nil {
		logger.Warn("push: load device tokens", zap.Error(err))
		return
	}

	for start := 0; start < len(tokens); start += maxMulticastTokens {
		end := start + maxMulticastTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		s.send(ctx, tokens[start:end], msg)
	}
}

func (s *NotificationService) tokens(ctx context.Context, recipients []string) ([]string, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	var only map[string]bool
	if len(recipients) > 0 {
		only = make(map[string]bool, len(recipients))
		for _, uid := range recipients {
			only[uid] = true
		}
	}

	var tokens []string
	for _, u := range users {
		if u.FCMToken == "" {
			continue
		}
		if only != nil && !only[u.UID] {
			continue
		}
		tokens = append(tokens, u.FCMToken)
	}
	return tokens, nil
}

func (s *NotificationService) send(ctx context.Context, tokens []string, msg models.PushMessage) {
	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: map[string]string{
			"type":     "activity",
			"category": string(msg.Category),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "aroeira_channel",
			},
		},
	}

	resp, err := s.client.SendMulticast(ctx, message)
	if err != nil {
		logger.Warn("push: send failed",
			zap.String("category", string(msg.Category)),
			zap.Int("tokens", len(tokens)),
			zap.Error(err),
		)
		return
	}
	if resp.FailureCount > 0 {
		// stale tokens are replaced when the device logs in again
		logger.Warn("push: some devices rejected the message",
			zap.String("category", string(msg.Category)),
			zap.Int("failed", resp.FailureCount),
			zap.Int("sent", resp.SuccessCount),
		)
		return
	}
	logger.Debug("push: sent", zap.String("category", string(msg.Category)), zap.Int("devices", resp.SuccessCount))
}
