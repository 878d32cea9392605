package services

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

type messageCounter interface {
	Count(ctx context.Context) (int64, error)
}

// ActivityService counts created content and turns the counters into home
// screen notifications.
type ActivityService struct {
	users    UserStore
	totals   TotalsStore
	messages messageCounter
}

func NewActivityService(users UserStore, totals TotalsStore, messages messageCounter) *ActivityService {
	return &ActivityService{users: users, totals: totals, messages: messages}
}

// Record counts one created item of c. Assignees only matter for tasks.
func (s *ActivityService) Record(ctx context.Context, c activity.Category, assignees []string) error {
	inc := activity.Plan(c, assignees)
	if inc.Shared {
		return s.totals.IncrementTotal(ctx, c.CounterField())
	}
	_, err := s.users.Increment(ctx, inc.Users, c.CounterField())
	return err
}

// view loads uid's profile and the shared totals together.
func (s *ActivityService) view(ctx context.Context, uid string) (*models.UserProfile, activity.Counters, error) {
	var (
		profile *models.UserProfile
		shared  activity.Counters
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.users.Get(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		shared, err = s.totals.Totals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, activity.Counters{}, err
	}
	return profile, activity.Merge(shared, profile.Counters()), nil
}

// Home builds the home screen for uid. The unread line is dropped, not
// failed, when the chat cannot be counted.
func (s *ActivityService) Home(ctx context.Context, uid string) (*models.HomeResponse, error) {
	var (
		profile  *models.UserProfile
		counters activity.Counters
		total    int64 = -1
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, counters, err = s.view(gctx, uid)
		return err
	})
	g.Go(func() error {
		n, err := s.messages.Count(gctx)
		if err != nil {
			logger.Warn("count messages", zap.Error(err))
			return nil
		}
		total = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &models.HomeResponse{
		Profile:       profile,
		Notifications: activity.Diff(counters),
		CanManage:     profile.Role.CanManage(),
	}
	if resp.Notifications == nil {
		resp.Notifications = []activity.Notification{}
	}
	if total >= 0 {
		if n, ok := activity.Unread(counters, total); ok {
			resp.UnreadMessages = n
			resp.UnreadMessage = activity.UnreadNotification(n)
		}
	}
	return resp, nil
}

// MarkSeen moves uid's last-seen pointers up to the counters they see now.
// Failures are logged and swallowed so navigation always goes ahead.
func (s *ActivityService) MarkSeen(ctx context.Context, uid string) {
	_, counters, err := s.view(ctx, uid)
	if err != nil {
		logger.Warn("mark seen: load counters", zap.String("uid", uid), zap.Error(err))
		return
	}
	if err := s.users.SetSnapshot(ctx, uid, activity.Snapshot(counters)); err != nil {
		logger.Warn("mark seen: write snapshot", zap.String("uid", uid), zap.Error(err))
	}
}

// Reconcile lifts the shared totals to the highest legacy per-user counter
// for news, events and changes, so profiles written before the totals
// existed keep comparing correctly. Totals are never lowered. Tasks are
// skipped since their per-user counters hold assignments only.
func (s *ActivityService) Reconcile(ctx context.Context) (map[string]int64, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	highest := make(map[string]int64)
	for _, u := range users {
		c := u.Counters()
		for _, cat := range []activity.Category{activity.News, activity.Events, activity.Changes} {
			if v := c.Current(cat); v != nil && *v > highest[cat.CounterField()] {
				highest[cat.CounterField()] = *v
			}
		}
	}
	if len(highest) == 0 {
		return map[string]int64{}, nil
	}

	raised, err := s.totals.RaiseTotals(ctx, highest)
	if err != nil {
		return nil, errors.Wrap(err, "reconcile")
	}
	return raised, nil
}
