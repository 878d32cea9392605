package services

import (
	"context"
	"strings"
	"time"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

type TaskService struct {
	announcer
	tasks TaskStore
	users UserStore
	now   func() time.Time
}

func NewTaskService(tasks TaskStore, users UserStore, act *ActivityService, push *NotificationService) *TaskService {
	return &TaskService{
		announcer: announcer{activity: act, push: push},
		tasks:     tasks,
		users:     users,
		now:       time.Now,
	}
}

// Create adds a task and counts it for its assignees, or for everyone when
// it has none. Assignees must be team members.
func (s *TaskService) Create(ctx context.Context, uid string, req *models.CreateTaskRequest) (*models.Task, error) {
	if req.FinishingDate.Before(req.StartingDate) {
		return nil, apperrors.BadRequest("task", "finishing date is before starting date")
	}

	team, err := names(ctx, s.users)
	if err != nil {
		return nil, err
	}
	author, ok := team[uid]
	if !ok {
		return nil, apperrors.NotFound("user", "user not found")
	}

	assignees := activity.Plan(activity.Tasks, req.AssignedUsers).Users
	for _, id := range assignees {
		if _, ok := team[id]; !ok {
			return nil, apperrors.BadRequest("task", "unknown assignee "+id)
		}
	}

	task := &models.Task{
		Name:          strings.TrimSpace(req.Name),
		StartingDate:  req.StartingDate,
		FinishingDate: req.FinishingDate,
		Details:       req.Details,
		Creator:       author,
		CreatorUID:    uid,
		AssignedUsers: assignees,
	}
	if _, err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.announce(ctx, activity.Tasks, assignees, "Nova tarefa", task.Name)
	return task, nil
}

// Upcoming returns the tasks starting within the next month, soonest
// first, as seen by uid.
func (s *TaskService) Upcoming(ctx context.Context, uid string) ([]*models.TaskView, error) {
	from := startOfDay(s.now())
	tasks, err := s.tasks.StartingBetween(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	team, err := names(ctx, s.users)
	if err != nil {
		return nil, err
	}

	views := make([]*models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := &models.TaskView{
			Task:          t,
			AssigneeNames: make([]string, 0, len(t.AssignedUsers)),
			CanComplete:   !t.Completed && t.AssignedTo(uid),
		}
		for _, id := range t.AssignedUsers {
			if name, ok := team[id]; ok {
				v.AssigneeNames = append(v.AssigneeNames, name)
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// Complete marks the task done. Only an assignee may, or anyone when the
// task is unassigned.
func (s *TaskService) Complete(ctx context.Context, uid, id string) error {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	if !task.AssignedTo(uid) {
		return apperrors.Forbidden("only an assignee can complete this task")
	}
	if task.Completed {
		return nil
	}
	return s.tasks.Complete(ctx, id)
}

// Delete removes the task. Counters are left as they are.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}
