package storage

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/interfaces"
	"github.com/actio-dev/actio/pkg/utils/logging"
)

// Service stores attachment bytes in a Cloud Storage bucket
type Service struct {
	client *storage.Client
	bucket string
}

var _ interfaces.BlobStorage = &Service{}

func New(ctx context.Context, bucket string) (*Service, error) {
	if bucket == "" {
		return nil, goerr.New("storage bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	return &Service{
		client: client,
		bucket: bucket,
	}, nil
}

func (s *Service) Upload(ctx context.Context, path string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object", goerr.V("path", path))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("path", path))
	}
	return nil
}

func (s *Service) CreateSignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	url, err := s.client.Bucket(s.bucket).SignedURL(path, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign URL", goerr.V("path", path))
	}
	return url, nil
}

// Remove deletes the given paths, continuing past individual failures.
// Missing objects are treated as already removed.
func (s *Service) Remove(ctx context.Context, paths []string) error {
	var lastErr error
	for _, path := range paths {
		err := s.client.Bucket(s.bucket).Object(path).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			logging.From(ctx).Error("failed to remove object, continuing",
				"path", path, "error", err.Error())
			lastErr = goerr.Wrap(err, "failed to remove object", goerr.V("path", path))
		}
	}
	return lastErr
}

func (s *Service) Close() error {
	return s.client.Close()
}
