// Package servicetest provides in-memory implementations of the service
// stores for tests.
package servicetest

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"firebase.google.com/go/messaging"
	"github.com/google/uuid"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/repository"
	"github.com/tommyfonseca7/teams-coms-public/internal/storage"
)

// Users is an in-memory UserStore.
type Users struct {
	mu            sync.Mutex
	Profiles      map[string]*models.UserProfile
	FailGet       error
	FailWrite     error
	FailIncrement error
}

func NewUsers(profiles ...*models.UserProfile) *Users {
	f := &Users{Profiles: map[string]*models.UserProfile{}}
	for _, p := range profiles {
		f.Profiles[p.UID] = p
	}
	return f
}

func (f *Users) Create(ctx context.Context, user *models.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.Profiles[user.UID] = &cp
	return nil
}

func (f *Users) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailGet != nil {
		return nil, f.FailGet
	}
	u, ok := f.Profiles[uid]
	if !ok {
		return nil, apperrors.NotFound("user", "user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *Users) List(ctx context.Context) ([]*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.UserProfile, 0, len(f.Profiles))
	for _, u := range f.Profiles {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (f *Users) with(uid string, fn func(u *models.UserProfile)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrite != nil {
		return f.FailWrite
	}
	u, ok := f.Profiles[uid]
	if !ok {
		return apperrors.NotFound("user", "user not found")
	}
	fn(u)
	return nil
}

func (f *Users) UpdateRole(ctx context.Context, uid string, role models.Role) error {
	return f.with(uid, func(u *models.UserProfile) { u.Role = role })
}

func (f *Users) UpdateFCMToken(ctx context.Context, uid, token string) error {
	return f.with(uid, func(u *models.UserProfile) { u.FCMToken = token })
}

func (f *Users) UpdateMessagesSeen(ctx context.Context, uid string, n int64) error {
	return f.with(uid, func(u *models.UserProfile) { u.MessagesSeen = activity.Int64(n) })
}

func (f *Users) SetSnapshot(ctx context.Context, uid string, snapshot map[string]int64) error {
	return f.with(uid, func(u *models.UserProfile) {
		for field, v := range snapshot {
			v := v
			switch field {
			case activity.FieldLatestNewCount:
				u.LatestNewCount = &v
			case activity.FieldLatestEventsCreated:
				u.LatestEventsCreated = &v
			case activity.FieldLatestNumberOfChanges:
				u.LatestNumberOfChanges = &v
			case activity.FieldLatestTaskCount:
				u.LatestTaskCount = &v
			}
		}
	})
}

func (f *Users) Increment(ctx context.Context, uids []string, field string) (int, error) {
	if f.FailIncrement != nil {
		return 0, f.FailIncrement
	}
	n := 0
	for _, uid := range uids {
		err := f.with(uid, func(u *models.UserProfile) {
			if field == activity.FieldTasksCount {
				if u.TasksCount == nil {
					u.TasksCount = activity.Int64(0)
				}
				*u.TasksCount++
			}
		})
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

type Totals struct {
	mu     sync.Mutex
	Values map[string]int64
	Fail   error
}

func NewTotals() *Totals { return &Totals{Values: map[string]int64{}} }

func (f *Totals) Totals(ctx context.Context) (activity.Counters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return activity.Counters{}, f.Fail
	}
	get := func(field string) *int64 {
		if v, ok := f.Values[field]; ok {
			return activity.Int64(v)
		}
		return nil
	}
	return activity.Counters{
		NewsCount:       get(activity.FieldNewsCount),
		EventsCreated:   get(activity.FieldEventsCreated),
		NumberOfChanges: get(activity.FieldNumberOfChanges),
		TasksCount:      get(activity.FieldTasksCount),
	}, nil
}

func (f *Totals) IncrementTotal(ctx context.Context, field string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return f.Fail
	}
	f.Values[field]++
	return nil
}

func (f *Totals) RaiseTotals(ctx context.Context, values map[string]int64) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raised := map[string]int64{}
	for field, v := range values {
		if have, ok := f.Values[field]; ok && have >= v {
			continue
		}
		f.Values[field] = v
		raised[field] = v
	}
	return raised, nil
}

type Credentials struct {
	byEmail map[string]*repository.Credential
}

func NewCredentials() *Credentials { return &Credentials{byEmail: map[string]*repository.Credential{}} }

func (f *Credentials) Create(ctx context.Context, cred *repository.Credential) error {
	cred.Email = strings.ToLower(cred.Email)
	f.byEmail[cred.Email] = cred
	return nil
}

func (f *Credentials) GetByEmail(ctx context.Context, email string) (*repository.Credential, error) {
	c, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.NotFound("credential", "account not found")
	}
	return c, nil
}

// docs is a tiny ordered document collection shared by the content fakes.
type docs[T any] struct {
	mu    sync.Mutex
	order []string
	docs  map[string]*T
	setID func(*T, string)
}

func newDocs[T any](setID func(*T, string)) *docs[T] {
	return &docs[T]{docs: map[string]*T{}, setID: setID}
}

func (f *docs[T]) Create(ctx context.Context, v *T) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	f.setID(v, id)
	cp := *v
	f.docs[id] = &cp
	f.order = append(f.order, id)
	return id, nil
}

func (f *docs[T]) Get(ctx context.Context, id string) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.docs[id]
	if !ok {
		return nil, apperrors.NotFound("doc", "not found")
	}
	cp := *v
	return &cp, nil
}

func (f *docs[T]) all() []*T {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*T, 0, len(f.order))
	for _, id := range f.order {
		if v, ok := f.docs[id]; ok {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out
}

func (f *docs[T]) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

type News struct{ *docs[models.News] }

func NewNews() News {
	return News{newDocs(func(n *models.News, id string) { n.ID = id })}
}

func (f News) List(ctx context.Context) ([]*models.News, error) {
	list := f.all()
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

type Events struct{ *docs[models.Event] }

func NewEvents() Events {
	return Events{newDocs(func(e *models.Event, id string) { e.ID = id })}
}

func (f Events) Between(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	var out []*models.Event
	for _, e := range f.all() {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type Tasks struct{ *docs[models.Task] }

func NewTasks() Tasks {
	return Tasks{newDocs(func(t *models.Task, id string) { t.ID = id })}
}

func (f Tasks) StartingBetween(ctx context.Context, from, to time.Time) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range f.all() {
		if !t.StartingDate.Before(from) && !t.StartingDate.After(to) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartingDate.Before(out[j].StartingDate) })
	return out, nil
}

func (f Tasks) Complete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.docs.docs[id]
	if !ok {
		return apperrors.NotFound("task", "task not found")
	}
	t.Completed = true
	return nil
}

type Changes struct{ *docs[models.Change] }

func NewChanges() Changes {
	return Changes{newDocs(func(c *models.Change, id string) { c.ID = id })}
}

func (f Changes) List(ctx context.Context) ([]*models.Change, error) { return f.all(), nil }

type Messages struct {
	*docs[models.Message]
	CountErr error
	// Undecodable is counted by Count but never listed, like stored
	// documents that fail to decode.
	Undecodable int64
}

func NewMessages() *Messages {
	return &Messages{docs: newDocs(func(m *models.Message, id string) { m.ID = id })}
}

func (f *Messages) List(ctx context.Context) ([]*models.Message, error) { return f.all(), nil }

func (f *Messages) Count(ctx context.Context) (int64, error) {
	if f.CountErr != nil {
		return 0, f.CountErr
	}
	return int64(len(f.all())) + f.Undecodable, nil
}

type Messenger struct {
	mu   sync.Mutex
	Sent []*messaging.MulticastMessage
	Err  error
}

func (f *Messenger) SendMulticast(ctx context.Context, m *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.Sent = append(f.Sent, m)
	return &messaging.BatchResponse{SuccessCount: len(m.Tokens)}, nil
}

// Storage keeps files in memory with controllable creation times.
type Storage struct {
	mu    sync.Mutex
	files map[string]memFile
	now   func() time.Time
}

type memFile struct {
	data    []byte
	created time.Time
}

func NewStorage(now func() time.Time) *Storage {
	return &Storage{files: map[string]memFile{}, now: now}
}

func (m *Storage) Save(ctx context.Context, p string, r io.Reader, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = memFile{data: b, created: m.now()}
	return nil
}

func (m *Storage) Get(ctx context.Context, p string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[p]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func (m *Storage) Delete(ctx context.Context, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[p]; !ok {
		return storage.ErrNotFound
	}
	delete(m.files, p)
	return nil
}

func (m *Storage) Exists(ctx context.Context, p string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[p]
	return ok, nil
}

func (m *Storage) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ObjectInfo
	for p, f := range m.files {
		if strings.HasPrefix(p, prefix) {
			out = append(out, storage.ObjectInfo{Path: p, Size: int64(len(f.data)), Created: f.created})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *Storage) GetURL(ctx context.Context, p string) (string, error) {
	return "https://files.test/" + p, nil
}

// Clock is a settable time source.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{t: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
