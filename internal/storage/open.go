package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/option"
)

// Options selects and configures a backend
type Options struct {
	Backend         string
	Root            string
	Bucket          string
	CredentialsFile string
	Endpoint        string
}

// Open creates the configured backend: filesystem (default), memory or gcs
func Open(ctx context.Context, opts Options, logger *slog.Logger) (ObjectStore, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "filesystem", "fs":
		return NewFileStore(opts.Root, logger)
	case "memory":
		return NewMemoryStore(), nil
	case "gcs":
		var clientOpts []option.ClientOption
		if opts.CredentialsFile != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
		}
		if opts.Endpoint != "" {
			clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
		}
		return NewGCSStore(ctx, opts.Bucket, logger, clientOpts...)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
