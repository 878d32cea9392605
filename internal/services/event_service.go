package services

import (
	"context"
	"strings"
	"time"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

type EventService struct {
	announcer
	events EventStore
	users  UserStore
	now    func() time.Time
}

func NewEventService(events EventStore, users UserStore, act *ActivityService, push *NotificationService) *EventService {
	return &EventService{
		announcer: announcer{activity: act, push: push},
		events:    events,
		users:     users,
		now:       time.Now,
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Create adds an event dated today or later and announces it.
func (s *EventService) Create(ctx context.Context, uid string, req *models.CreateEventRequest) (*models.Event, error) {
	if req.Date.Before(startOfDay(s.now())) {
		return nil, apperrors.BadRequest("event", "event date is in the past")
	}
	author, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:          strings.TrimSpace(req.Name),
		Date:          req.Date,
		Details:       req.Details,
		Participants:  req.Participants,
		Field:         req.Field,
		StartingTime:  req.StartingTime,
		FinishingTime: req.FinishingTime,
		Creator:       author.Name,
		CreatorUID:    uid,
	}
	if _, err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	s.announce(ctx, activity.Events, nil, "Novo evento", event.Name)
	return event, nil
}

// Upcoming returns the events of the next month, soonest first.
func (s *EventService) Upcoming(ctx context.Context) ([]*models.Event, error) {
	from := startOfDay(s.now())
	list, err := s.events.Between(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Event{}
	}
	return list, nil
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	return s.events.Delete(ctx, id)
}
