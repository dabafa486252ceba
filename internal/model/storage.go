package model

import (
	"context"
	"io"
)

// Storage is the object store holding uploaded media.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// FileFetcher retrieves remotely-held content by the transport's file token.
type FileFetcher interface {
	Fetch(ctx context.Context, token string) ([]byte, error)
}
