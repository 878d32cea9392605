// Package activity holds the counter bookkeeping behind the home screen
// notifications: which counters exist, how new content bumps them, how the
// per-user "latest seen" snapshot is taken and how the difference between
// the two becomes a list of notifications.
//
// News, events, changes and unassigned tasks bump one shared total per
// category. Tasks with assignees bump the assignees' own tasksCount. A user's
// view of the counters is the shared totals merged with their profile, and
// the latest* fields on the profile are their last-seen pointers into it.
// Nothing here does I/O.
package activity

import (
	"fmt"
	"sort"
)

// Category is a kind of content that bumps a counter when created.
type Category string

const (
	News    Category = "news"
	Events  Category = "events"
	Changes Category = "changes"
	Tasks   Category = "tasks"
)

// Categories lists every category in notification order.
var Categories = []Category{News, Events, Changes, Tasks}

// Document field names shared with the SPA.
const (
	FieldNewsCount       = "newsCount"
	FieldEventsCreated   = "eventsCreated"
	FieldNumberOfChanges = "numberOfChanges"
	FieldTasksCount      = "tasksCount"

	FieldLatestNewCount        = "latestNewCount"
	FieldLatestEventsCreated   = "latestEventsCreated"
	FieldLatestNumberOfChanges = "latestNumberOfChanges"
	FieldLatestTaskCount       = "latestTaskCount"

	FieldMessagesSeen = "messagesSeen"
)

type categoryInfo struct {
	counter  string
	snapshot string
	template string
}

var categoryTable = map[Category]categoryInfo{
	News:    {FieldNewsCount, FieldLatestNewCount, "Estão %d novas notícias para verificar."},
	Events:  {FieldEventsCreated, FieldLatestEventsCreated, "Estão %d novos eventos para verificar."},
	Changes: {FieldNumberOfChanges, FieldLatestNumberOfChanges, "Estão %d novas mudanças de horário para verificar."},
	Tasks:   {FieldTasksCount, FieldLatestTaskCount, "Estão %d novas tarefas para verificar."},
}

const unreadTemplate = "Estão %d novas mensagens por ler."

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryTable[c]; !ok {
		return "", fmt.Errorf("unknown activity category %q", s)
	}
	return c, nil
}

// CounterField is the document field holding the category's global counter.
func (c Category) CounterField() string { return categoryTable[c].counter }

// SnapshotField is the document field holding the user's last seen value.
func (c Category) SnapshotField() string { return categoryTable[c].snapshot }

// Counters is the counter state of one user document. Nil means the field
// has never been written.
type Counters struct {
	NewsCount       *int64
	EventsCreated   *int64
	NumberOfChanges *int64
	TasksCount      *int64

	LatestNewCount        *int64
	LatestEventsCreated   *int64
	LatestNumberOfChanges *int64
	LatestTaskCount       *int64

	MessagesSeen *int64
}

// Current returns the global counter for c.
func (s Counters) Current(c Category) *int64 {
	switch c {
	case News:
		return s.NewsCount
	case Events:
		return s.EventsCreated
	case Changes:
		return s.NumberOfChanges
	case Tasks:
		return s.TasksCount
	}
	return nil
}

// Latest returns the user's snapshot for c.
func (s Counters) Latest(c Category) *int64 {
	switch c {
	case News:
		return s.LatestNewCount
	case Events:
		return s.LatestEventsCreated
	case Changes:
		return s.LatestNumberOfChanges
	case Tasks:
		return s.LatestTaskCount
	}
	return nil
}

// Notification is one line of the home screen.
type Notification struct {
	Category Category `json:"category"`
	Count    int64    `json:"count"`
	Message  string   `json:"message"`
}

// Diff compares every counter with its snapshot and returns a notification
// for each category that grew. A category with either side missing is
// skipped rather than treated as starting from zero.
func Diff(s Counters) []Notification {
	var out []Notification
	for _, c := range Categories {
		cur, latest := s.Current(c), s.Latest(c)
		if cur == nil || latest == nil || *latest >= *cur {
			continue
		}
		delta := *cur - *latest
		out = append(out, Notification{
			Category: c,
			Count:    delta,
			Message:  fmt.Sprintf(categoryTable[c].template, delta),
		})
	}
	return out
}

// Unread returns how many chat messages the user has not loaded yet. The
// second result is false when there is nothing to report: messagesSeen was
// never written, or the total is not ahead of it.
func Unread(s Counters, totalMessages int64) (int64, bool) {
	if s.MessagesSeen == nil {
		return 0, false
	}
	n := totalMessages - *s.MessagesSeen
	if n <= 0 {
		return 0, false
	}
	return n, true
}

// UnreadNotification renders the unread-messages line.
func UnreadNotification(n int64) string {
	return fmt.Sprintf(unreadTemplate, n)
}

// Snapshot returns the snapshot update that marks everything as seen: each
// latest field takes its counter's value, absent counters as 0.
func Snapshot(s Counters) map[string]int64 {
	out := make(map[string]int64, len(Categories))
	for _, c := range Categories {
		var v int64
		if cur := s.Current(c); cur != nil {
			v = *cur
		}
		out[c.SnapshotField()] = v
	}
	return out
}

// Increment is where one created item of a category is counted.
type Increment struct {
	// Shared is set when the category total goes up by one.
	Shared bool
	// Users get their own counter raised by one instead.
	Users []string
}

// Plan returns the increment for a single created item of c. Tasks with
// assignees are counted on the assignees only; everything else, unassigned
// tasks included, is counted once on the shared total.
func Plan(c Category, assignees []string) Increment {
	if c == Tasks {
		if users := dedupe(assignees); len(users) > 0 {
			return Increment{Users: users}
		}
	}
	return Increment{Shared: true}
}

// Merge combines the shared totals with one user's profile counters into
// the counters that user sees. Snapshots and messagesSeen always come from
// the profile. The tasks counter is the shared unassigned total plus the
// user's own assignments, and stays absent only when both are.
func Merge(shared, own Counters) Counters {
	out := own
	out.NewsCount = shared.NewsCount
	out.EventsCreated = shared.EventsCreated
	out.NumberOfChanges = shared.NumberOfChanges
	out.TasksCount = sum(shared.TasksCount, own.TasksCount)
	return out
}

func sum(a, b *int64) *int64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return Int64(*b)
	case b == nil:
		return Int64(*a)
	}
	return Int64(*a + *b)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }
