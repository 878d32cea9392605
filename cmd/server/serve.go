package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tommyfonseca7/teams-coms-public/internal/handlers"
	"github.com/tommyfonseca7/teams-coms-public/internal/live"
	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
)

const hubBufferSize = 64

func newServeCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serves the Aroeira Team API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *configFile)
		},
	}
}

func serve(parent context.Context, configFile string) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	hub := live.NewHub(hubBufferSize, live.TopicChat, live.TopicChanges)
	chatWatcher := live.NewWatcher(hub, live.TopicChat, a.messagesRepo.Query(), live.DecodeMessage)
	chatWatcher.Enrich = func(ctx context.Context, deltas []live.Delta) {
		if err := a.chat.ResolveNames(ctx, live.Messages(deltas)); err != nil {
			logger.Warn("resolve chat names", zap.Error(err))
		}
	}
	// whoever has the chat open has read everything in it
	chatWatcher.AfterPublish = func(ctx context.Context) {
		a.chat.MarkAllRead(ctx, hub.Subscribers(live.TopicChat), hub.Collection(live.TopicChat).Len())
	}
	changesWatcher := live.NewWatcher(hub, live.TopicChanges, a.changesRepo.Query(), live.DecodeChange)

	router, err := handlers.NewRouter(handlers.Deps{
		Auth:           a.auth,
		Activity:       a.activity,
		Team:           a.team,
		News:           a.news,
		Events:         a.events,
		Tasks:          a.tasks,
		Schedule:       a.schedule,
		Chat:           a.chat,
		Hub:            hub,
		LiveContext:    ctx,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxUploadSize:  cfg.Upload.MaxSize,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error { return chatWatcher.Run(gctx) })
	g.Go(func() error { return changesWatcher.Run(gctx) })
	g.Go(func() error {
		logger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
