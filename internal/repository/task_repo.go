package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"

	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

type TaskRepository struct {
	client *firestore.Client
}

func NewTaskRepository(client *firestore.Client) *TaskRepository {
	return &TaskRepository{client: client}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) (string, error) {
	if task.AssignedUsers == nil {
		task.AssignedUsers = []string{}
	}
	id, err := addWithID(ctx, r.client.Collection(TasksCollection), task)
	if err != nil {
		return "", errors.Wrap(err, "create task")
	}
	task.ID = id
	return id, nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*models.Task, error) {
	doc, err := r.client.Collection(TasksCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, notFoundOr(err, "task", "get task")
	}

	var task models.Task
	if err := doc.DataTo(&task); err != nil {
		return nil, errors.Wrap(err, "decode task")
	}
	task.ID = doc.Ref.ID
	return &task, nil
}

// StartingBetween returns the tasks starting within [from, to], earliest first.
func (r *TaskRepository) StartingBetween(ctx context.Context, from, to time.Time) ([]*models.Task, error) {
	it := r.client.Collection(TasksCollection).
		Where("taskStartingDate", ">=", from).
		Where("taskStartingDate", "<=", to).
		OrderBy("taskStartingDate", firestore.Asc).
		Documents(ctx)
	tasks, err := decodeAll(it, func(t *models.Task, id string) { t.ID = id })
	return tasks, errors.Wrap(err, "list tasks")
}

// Complete marks a task as done.
func (r *TaskRepository) Complete(ctx context.Context, id string) error {
	_, err := r.client.Collection(TasksCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "completed", Value: true},
	})
	if err != nil {
		return notFoundOr(err, "task", "complete task")
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(TasksCollection).Doc(id).Delete(ctx)
	return errors.Wrap(err, "delete task")
}
