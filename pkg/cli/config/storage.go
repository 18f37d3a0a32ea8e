package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/actio-dev/actio/pkg/service/storage"
	"github.com/actio-dev/actio/pkg/utils/logging"
)

// Storage holds CLI flags for attachment blob storage
type Storage struct {
	bucket string
}

// Flags returns CLI flags for blob storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket for attachment bytes (empty disables blob storage)",
			Sources:     cli.EnvVars("ACTIO_STORAGE_BUCKET"),
			Destination: &s.bucket,
		},
	}
}

// Configure builds the blob storage service, or nil when no bucket is
// configured. The caller owns Close on the returned service.
func (s *Storage) Configure(ctx context.Context) (*storage.Service, error) {
	if s.bucket == "" {
		logging.Default().Info("Storage bucket not configured, attachments keep paths only")
		return nil, nil
	}

	svc, err := storage.New(ctx, s.bucket)
	if err != nil {
		return nil, err
	}

	logging.Default().Info("Using Cloud Storage for attachments", "bucket", s.bucket)
	return svc, nil
}
