package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	fbstorage "firebase.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// FirebaseStorage stores files in the Firebase project's Cloud Storage
// bucket, where the SPA used to put them directly.
type FirebaseStorage struct {
	bucket    *gcs.BucketHandle
	urlExpiry time.Duration
}

func NewFirebaseStorage(ctx context.Context, cfg Config, client *fbstorage.Client) (*FirebaseStorage, error) {
	var (
		bucket *gcs.BucketHandle
		err    error
	)
	if cfg.Bucket != "" {
		bucket, err = client.Bucket(cfg.Bucket)
	} else {
		bucket, err = client.DefaultBucket()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open storage bucket: %w", err)
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &FirebaseStorage{bucket: bucket, urlExpiry: expiry}, nil
}

func (s *FirebaseStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, reader); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish upload of %s: %w", path, err)
	}
	return nil
}

func (s *FirebaseStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	r, err := s.bucket.Object(path).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r, nil
}

func (s *FirebaseStorage) Delete(ctx context.Context, path string) error {
	err := s.bucket.Object(path).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (s *FirebaseStorage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.bucket.Object(path).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *FirebaseStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	it := s.bucket.Objects(ctx, &gcs.Query{Prefix: prefix})

	var out []ObjectInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		out = append(out, ObjectInfo{
			Path:    attrs.Name,
			Size:    attrs.Size,
			Created: attrs.Created,
		})
	}
	return out, nil
}

// GetURL returns a short-lived signed download URL.
func (s *FirebaseStorage) GetURL(ctx context.Context, path string) (string, error) {
	u, err := s.bucket.SignedURL(path, &gcs.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(s.urlExpiry),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign url for %s: %w", path, err)
	}
	return u, nil
}
