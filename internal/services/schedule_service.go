package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/storage"
)

// ScheduleService manages the monthly schedule files and the log of
// schedule changes. Months are 0-based in paths and arguments.
type ScheduleService struct {
	announcer
	files   storage.Storage
	changes ChangeStore
	users   UserStore
	now     func() time.Time
}

func NewScheduleService(files storage.Storage, changes ChangeStore, users UserStore, act *ActivityService, push *NotificationService) *ScheduleService {
	return &ScheduleService{
		announcer: announcer{activity: act, push: push},
		files:     files,
		changes:   changes,
		users:     users,
		now:       time.Now,
	}
}

func schedulePrefix(year, month int) string {
	return fmt.Sprintf("horario/%d/%d/", year, month)
}

func checkMonth(year, month int) error {
	if month < 0 || month > 11 {
		return apperrors.BadRequest("schedule", "month must be between 0 and 11")
	}
	if year < 2000 || year > 9999 {
		return apperrors.BadRequest("schedule", "invalid year")
	}
	return nil
}

// Upload stores a new schedule file for the month. Earlier uploads are
// kept; the newest one is the month's schedule.
func (s *ScheduleService) Upload(ctx context.Context, year, month int, file *Upload) (*models.ScheduleFile, error) {
	if err := checkMonth(year, month); err != nil {
		return nil, err
	}
	name := path.Base(file.Filename)
	if name == "." || name == "/" {
		return nil, apperrors.BadRequest("schedule", "invalid file name")
	}

	p := schedulePrefix(year, month) + name + uuid.NewString()
	if err := s.files.Save(ctx, p, file.Body, file.ContentType); err != nil {
		return nil, errors.Wrap(err, "save schedule")
	}

	sf, err := s.describe(ctx, year, month, storage.ObjectInfo{Path: p, Created: s.now()})
	if err != nil {
		return nil, err
	}
	sf.Name = name

	s.push.Notify(ctx, models.PushMessage{
		Title:    "Novo horário",
		Body:     fmt.Sprintf("O horário de %s %d foi atualizado.", models.MonthNames[month], year),
		Category: activity.Changes,
	})
	return sf, nil
}

// Latest returns the most recently created schedule file of the month.
func (s *ScheduleService) Latest(ctx context.Context, year, month int) (*models.ScheduleFile, error) {
	if err := checkMonth(year, month); err != nil {
		return nil, err
	}
	objects, err := s.files.List(ctx, schedulePrefix(year, month))
	if err != nil {
		return nil, errors.Wrap(err, "list schedules")
	}
	if len(objects) == 0 {
		return nil, apperrors.NotFound("schedule", "no schedule for this month")
	}

	latest := objects[0]
	for _, o := range objects[1:] {
		if o.Created.After(latest.Created) || (o.Created.Equal(latest.Created) && o.Path > latest.Path) {
			latest = o
		}
	}
	return s.describe(ctx, year, month, latest)
}

func (s *ScheduleService) describe(ctx context.Context, year, month int, o storage.ObjectInfo) (*models.ScheduleFile, error) {
	u, err := s.files.GetURL(ctx, o.Path)
	if err != nil {
		return nil, errors.Wrap(err, "schedule url")
	}
	return &models.ScheduleFile{
		Path:      o.Path,
		Name:      displayName(o.Path),
		Year:      year,
		Month:     month,
		MonthName: models.MonthNames[month],
		URL:       u,
		Size:      o.Size,
		CreatedAt: o.Created,
	}, nil
}

// displayName strips the uuid suffix added on upload.
func displayName(p string) string {
	base := path.Base(p)
	if len(base) > 36 {
		if _, err := uuid.Parse(base[len(base)-36:]); err == nil {
			return base[:len(base)-36]
		}
	}
	return base
}

// Open returns the content of the month's latest schedule.
func (s *ScheduleService) Open(ctx context.Context, year, month int) (io.ReadCloser, *models.ScheduleFile, error) {
	sf, err := s.Latest(ctx, year, month)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.files.Get(ctx, sf.Path)
	if err != nil {
		return nil, nil, err
	}
	return r, sf, nil
}

// Delete removes the month's latest schedule, exposing the previous one if any.
func (s *ScheduleService) Delete(ctx context.Context, year, month int) error {
	sf, err := s.Latest(ctx, year, month)
	if err != nil {
		return err
	}
	return s.files.Delete(ctx, sf.Path)
}

// CreateChange logs a schedule swap and announces it.
func (s *ScheduleService) CreateChange(ctx context.Context, uid string, req *models.CreateChangeRequest) (*models.Change, error) {
	colaborador := strings.TrimSpace(req.Colaborador)
	mudancas := strings.TrimSpace(req.Mudancas)
	if colaborador == "" || mudancas == "" {
		return nil, apperrors.BadRequest("change", "colaborador and mudancas are required")
	}
	author, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	change := &models.Change{
		UserName:    author.Name,
		UserUID:     uid,
		Colaborador: colaborador,
		Mudancas:    mudancas,
		Timestamp:   s.now(),
	}
	if _, err := s.changes.Create(ctx, change); err != nil {
		return nil, err
	}

	s.announce(ctx, activity.Changes, nil, "Mudança de horário", fmt.Sprintf("%s trocou com %s", author.Name, colaborador))
	return change, nil
}

func (s *ScheduleService) Changes(ctx context.Context) ([]*models.Change, error) {
	list, err := s.changes.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Change{}
	}
	return list, nil
}

func (s *ScheduleService) DeleteChange(ctx context.Context, id string) error {
	return s.changes.Delete(ctx, id)
}
