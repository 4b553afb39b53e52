package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

// GCSStore reads and writes objects in a Google Cloud Storage bucket
type GCSStore struct {
	bucket  string
	service *gcs.Service
	logger  *slog.Logger
}

// NewGCSStore creates a bucket-backed store. Extra client options (credentials file,
// endpoint) are passed through to the API client.
func NewGCSStore(ctx context.Context, bucket string, logger *slog.Logger, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	svc, err := gcs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GCSStore{
		bucket:  bucket,
		service: svc,
		logger:  logger.With(slog.String("component", "gcs_store"), slog.String("bucket", bucket)),
	}, nil
}

// List pages through every object with the prefix
func (s *GCSStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	call := s.service.Objects.List(s.bucket).Prefix(prefix).Fields("items(name,size,updated),nextPageToken")
	err := call.Pages(ctx, func(page *gcs.Objects) error {
		for _, obj := range page.Items {
			updated, _ := time.Parse(time.RFC3339, obj.Updated)
			out = append(out, ObjectInfo{Key: obj.Name, Size: int64(obj.Size), LastModified: updated})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list gs://%s/%s: %w", s.bucket, prefix, err)
	}

	s.logger.DebugContext(ctx, "Listed objects", slog.String("prefix", prefix), slog.Int("count", len(out)))
	return out, nil
}

// Get downloads the object content
func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.service.Objects.Get(s.bucket, key).Context(ctx).Download()
	if err != nil {
		if isGoogleNotFound(err) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download gs://%s/%s: %w", s.bucket, key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", s.bucket, key, err)
	}
	return data, nil
}

// Put uploads data, replacing any existing object
func (s *GCSStore) Put(ctx context.Context, key string, data []byte) error {
	obj := &gcs.Object{Name: key, ContentType: contentType(key)}
	_, err := s.service.Objects.Insert(s.bucket, obj).Media(bytes.NewReader(data)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to upload gs://%s/%s: %w", s.bucket, key, err)
	}
	s.logger.InfoContext(ctx, "Stored object", slog.String("key", key), slog.Int("bytes", len(data)))
	return nil
}

func isGoogleNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

func contentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
