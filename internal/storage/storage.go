package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	fbstorage "firebase.google.com/go/storage"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
)

// Storage is the blob store behind news images and schedule files.
type Storage interface {
	// Save stores the content of reader at path.
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Get opens the file at path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the file at path.
	Delete(ctx context.Context, path string) error

	// Exists checks whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns every file under prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// GetURL returns a URL the client can download the file from.
	GetURL(ctx context.Context, path string) (string, error)
}

// ObjectInfo describes a stored file.
type ObjectInfo struct {
	Path    string
	Size    int64
	Created time.Time
}

// Config holds storage configuration.
type Config struct {
	Type      string // firebase, s3, local
	BasePath  string // local
	BaseURL   string // public URL base for local and s3
	Bucket    string // firebase (optional, default bucket otherwise) and s3
	Region    string // s3
	Endpoint  string // s3-compatible endpoints such as R2
	AccessKey string
	SecretKey string
	URLExpiry time.Duration
}

// ErrNotFound is returned by Get and Delete for missing files.
var ErrNotFound = apperrors.NotFound("storage", "file not found")

// New creates the backend selected by cfg.Type. fb is only needed for the
// firebase backend.
func New(ctx context.Context, cfg Config, fb *fbstorage.Client) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "firebase":
		if fb == nil {
			return nil, fmt.Errorf("firebase storage requested without a firebase app")
		}
		return NewFirebaseStorage(ctx, cfg, fb)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
