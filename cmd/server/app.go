package main

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/config"
	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
	"github.com/tommyfonseca7/teams-coms-public/internal/repository"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
	"github.com/tommyfonseca7/teams-coms-public/internal/storage"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg *config.Config
	fb  *config.Firebase

	messagesRepo *repository.MessageRepository
	changesRepo  *repository.ChangeRepository

	tokens   *services.TokenStore
	auth     *services.AuthService
	activity *services.ActivityService
	team     *services.TeamService
	news     *services.NewsService
	events   *services.EventService
	tasks    *services.TaskService
	schedule *services.ScheduleService
	chat     *services.ChatService
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Server.Env); err != nil {
		return nil, errors.Wrap(err, "init logger")
	}
	apperrors.Debug = cfg.Server.Env == "development"
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	fb, err := config.InitFirebase(ctx, cfg.Firebase)
	if err != nil {
		return nil, err
	}

	files, err := storage.New(ctx, storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	}, fb.Storage)
	if err != nil {
		fb.Close()
		return nil, errors.Wrap(err, "init storage")
	}
	logger.Info("storage initialized", zap.String("type", cfg.Storage.Type))

	db := fb.Firestore
	users := repository.NewUserRepository(db)
	messages := repository.NewMessageRepository(db)
	changes := repository.NewChangeRepository(db)

	var messenger services.Messenger
	if fb.Messaging != nil {
		messenger = fb.Messaging
	} else {
		logger.Warn("push notifications disabled")
	}
	var identity services.IdentityProvider
	if fb.Auth != nil {
		identity = fb.Auth
	}

	a := &app{
		cfg:          cfg,
		fb:           fb,
		messagesRepo: messages,
		changesRepo:  changes,
		tokens:       services.NewTokenStore(services.DefaultCleanupInterval),
	}

	push := services.NewNotificationService(messenger, users)
	a.activity = services.NewActivityService(users, repository.NewActivityRepository(db), messages)
	a.auth = services.NewAuthService(users, repository.NewCredentialRepository(db), identity, a.tokens, services.AuthConfig{
		Secret:      []byte(cfg.Auth.JWTSecret),
		TTL:         cfg.Auth.TokenTTL,
		AdminEmails: cfg.Auth.AdminEmails,
	})
	a.team = services.NewTeamService(users)
	a.news = services.NewNewsService(repository.NewNewsRepository(db), users, files, a.activity, push)
	a.events = services.NewEventService(repository.NewEventRepository(db), users, a.activity, push)
	a.tasks = services.NewTaskService(repository.NewTaskRepository(db), users, a.activity, push)
	a.schedule = services.NewScheduleService(files, changes, users, a.activity, push)
	a.chat = services.NewChatService(messages, users)
	return a, nil
}

func (a *app) Close() {
	a.tokens.Close()
	a.fb.Close()
}
