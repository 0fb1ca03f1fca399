// Package storage persists sweet images in an object store, keyed by
// sweet id.
package storage

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/sweetshop/apiserver/config"
)

// Backend defines the object operations common to all stores.
type Backend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ImageStore stores one image per sweet.
type ImageStore struct {
	backend Backend
}

// New constructs an ImageStore for the backend named in cfg.Backend, or
// nil when no object storage is configured.
func New(ctx context.Context, cfg config.StorageConfig) (*ImageStore, error) {
	var backend Backend
	var err error

	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		backend, err = NewMinioBackend(cfg.Minio)
	case "gcs":
		backend, err = NewGCSBackend(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	return &ImageStore{backend: backend}, nil
}

// EnsureBucket ensures the configured bucket exists.
func (s *ImageStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// PutImage stores the image for a sweet, replacing any previous one.
func (s *ImageStore) PutImage(ctx context.Context, sweetID int64, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, imageKey(sweetID), r, size, contentType)
}

// GetImage opens a reader for the sweet's image.
func (s *ImageStore) GetImage(ctx context.Context, sweetID int64) (io.ReadCloser, error) {
	return s.backend.Get(ctx, imageKey(sweetID))
}

// DeleteImage removes the sweet's image, if any.
func (s *ImageStore) DeleteImage(ctx context.Context, sweetID int64) error {
	return s.backend.Delete(ctx, imageKey(sweetID))
}

func imageKey(sweetID int64) string {
	return "sweets/" + strconv.FormatInt(sweetID, 10) + "/image"
}
