package services

import (
	"context"
	"time"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/repository"
)

// The services depend on these narrow views of the repositories so the
// flows can be exercised without Firestore.

type UserStore interface {
	Create(ctx context.Context, user *models.UserProfile) error
	Get(ctx context.Context, uid string) (*models.UserProfile, error)
	List(ctx context.Context) ([]*models.UserProfile, error)
	UpdateRole(ctx context.Context, uid string, role models.Role) error
	UpdateFCMToken(ctx context.Context, uid, token string) error
	UpdateMessagesSeen(ctx context.Context, uid string, n int64) error
	SetSnapshot(ctx context.Context, uid string, snapshot map[string]int64) error
	Increment(ctx context.Context, uids []string, field string) (int, error)
}

type TotalsStore interface {
	Totals(ctx context.Context) (activity.Counters, error)
	IncrementTotal(ctx context.Context, field string) error
	RaiseTotals(ctx context.Context, values map[string]int64) (map[string]int64, error)
}

type CredentialStore interface {
	Create(ctx context.Context, cred *repository.Credential) error
	GetByEmail(ctx context.Context, email string) (*repository.Credential, error)
}

type NewsStore interface {
	Create(ctx context.Context, news *models.News) (string, error)
	Get(ctx context.Context, id string) (*models.News, error)
	List(ctx context.Context) ([]*models.News, error)
	Delete(ctx context.Context, id string) error
}

type EventStore interface {
	Create(ctx context.Context, event *models.Event) (string, error)
	Between(ctx context.Context, from, to time.Time) ([]*models.Event, error)
	Delete(ctx context.Context, id string) error
}

type TaskStore interface {
	Create(ctx context.Context, task *models.Task) (string, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	StartingBetween(ctx context.Context, from, to time.Time) ([]*models.Task, error)
	Complete(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type ChangeStore interface {
	Create(ctx context.Context, change *models.Change) (string, error)
	List(ctx context.Context) ([]*models.Change, error)
	Delete(ctx context.Context, id string) error
}

type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) (string, error)
	List(ctx context.Context) ([]*models.Message, error)
	Count(ctx context.Context) (int64, error)
}

var (
	_ UserStore       = (*repository.UserRepository)(nil)
	_ TotalsStore     = (*repository.ActivityRepository)(nil)
	_ CredentialStore = (*repository.CredentialRepository)(nil)
	_ NewsStore       = (*repository.NewsRepository)(nil)
	_ EventStore      = (*repository.EventRepository)(nil)
	_ TaskStore       = (*repository.TaskRepository)(nil)
	_ ChangeStore     = (*repository.ChangeRepository)(nil)
	_ MessageStore    = (*repository.MessageRepository)(nil)
)
