package services

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/storage"
)

// Upload is a file received from a form.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type NewsService struct {
	announcer
	news  NewsStore
	users UserStore
	files storage.Storage
	now   func() time.Time
}

func NewNewsService(news NewsStore, users UserStore, files storage.Storage, act *ActivityService, push *NotificationService) *NewsService {
	return &NewsService{
		announcer: announcer{activity: act, push: push},
		news:      news,
		users:     users,
		files:     files,
		now:       time.Now,
	}
}

// Create stores the image under images/, writes the post and announces it.
// image may be nil for a text-only post.
func (s *NewsService) Create(ctx context.Context, uid string, req *models.CreateNewsRequest, image *Upload) (*models.News, error) {
	author, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	news := &models.News{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CreatedAt:   s.now(),
		Creator:     author.Name,
		CreatorUID:  uid,
	}
	if news.Title == "" {
		return nil, apperrors.BadRequest("news", "title is required")
	}

	if image != nil {
		name := path.Base(image.Filename)
		if name == "." || name == "/" {
			return nil, apperrors.BadRequest("news", "invalid image name")
		}
		// images of different posts may share a file name
		news.ImagePath = "images/" + uuid.NewString() + "-" + name
		if err := s.files.Save(ctx, news.ImagePath, image.Body, image.ContentType); err != nil {
			return nil, errors.Wrap(err, "save news image")
		}
		if news.ImageURL, err = s.files.GetURL(ctx, news.ImagePath); err != nil {
			return nil, errors.Wrap(err, "news image url")
		}
	}

	if _, err := s.news.Create(ctx, news); err != nil {
		return nil, err
	}

	s.announce(ctx, activity.News, nil, "Nova notícia", news.Title)
	return news, nil
}

// List returns the posts, newest first.
func (s *NewsService) List(ctx context.Context) ([]*models.News, error) {
	list, err := s.news.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.News{}
	}
	return list, nil
}

// Delete removes the post and then its image. A failure to remove the
// image is only logged.
func (s *NewsService) Delete(ctx context.Context, id string) error {
	news, err := s.news.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.news.Delete(ctx, id); err != nil {
		return err
	}

	if news.ImagePath != "" {
		if err := s.files.Delete(ctx, news.ImagePath); err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("delete news image", zap.String("path", news.ImagePath), zap.Error(err))
		}
	}
	return nil
}
