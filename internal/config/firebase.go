package config

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"firebase.google.com/go/messaging"
	fbstorage "firebase.google.com/go/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
)

// Firebase bundles the managed backend clients. Auth and Messaging are nil
// when disabled in config.
type Firebase struct {
	App       *firebase.App
	Firestore *firestore.Client
	Auth      *auth.Client
	Messaging *messaging.Client
	Storage   *fbstorage.Client
}

// InitFirebase initializes the Firebase Admin SDK and the clients the
// service uses.
func InitFirebase(ctx context.Context, cfg FirebaseConfig) (*Firebase, error) {
	var opts []option.ClientOption
	if credentialsAvailable(cfg.CredentialsPath) {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	} else {
		logger.Warn("firebase credentials file not found, using application default credentials",
			zap.String("path", cfg.CredentialsPath))
	}

	fbCfg := &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}
	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "init firebase app")
	}
	fb := &Firebase{App: app}
	logger.Info("firebase app initialized")

	fb.Firestore, err = app.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "init firestore")
	}
	logger.Info("firestore client initialized")

	if cfg.AuthEnabled {
		fb.Auth, err = app.Auth(ctx)
		if err != nil {
			fb.Close()
			return nil, errors.Wrap(err, "init auth")
		}
		logger.Info("firebase auth client initialized")
	}

	if cfg.MessagingEnabled {
		fb.Messaging, err = app.Messaging(ctx)
		if err != nil {
			fb.Close()
			return nil, errors.Wrap(err, "init messaging")
		}
		logger.Info("firebase messaging client initialized")
	}

	fb.Storage, err = app.Storage(ctx)
	if err != nil {
		fb.Close()
		return nil, errors.Wrap(err, "init storage")
	}

	return fb, nil
}

// Close closes Firebase connections.
func (f *Firebase) Close() {
	if f.Firestore != nil {
		if err := f.Firestore.Close(); err != nil {
			logger.Warn("closing firestore", zap.Error(err))
			return
		}
		logger.Info("firestore connection closed")
	}
}
