package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

// announcer is what content services do once an item is stored: count it
// and push it. Neither step can fail the creation; the item is already
// written by then.
type announcer struct {
	activity *ActivityService
	push     *NotificationService
}

func (a announcer) announce(ctx context.Context, c activity.Category, assignees []string, title, body string) {
	if a.activity != nil {
		if err := a.activity.Record(ctx, c, assignees); err != nil {
			logger.Error("record activity",
				zap.String("category", string(c)),
				zap.Strings("assignees", assignees),
				zap.Error(err),
			)
		}
	}
	a.push.Notify(ctx, models.PushMessage{
		Title:      title,
		Body:       body,
		Category:   c,
		Recipients: assignees,
	})
}
