package storage

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes one stored object
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Name returns the last path segment of the key
func (o ObjectInfo) Name() string {
	return path.Base(o.Key)
}

// ObjectStore is the minimal storage capability the analytics core depends on
type ObjectStore interface {
	// List returns every object whose key starts with prefix
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Get returns the object content or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Put creates or replaces an object
	Put(ctx context.Context, key string, data []byte) error
}

// Key joins segments into an object key
func Key(segments ...string) string {
	cleaned := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return strings.Join(cleaned, "/")
}

// Prefix returns a key prefix ending with a slash
func Prefix(segments ...string) string {
	k := Key(segments...)
	if k == "" {
		return ""
	}
	return k + "/"
}

// IsNotFound reports whether err means the object does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
