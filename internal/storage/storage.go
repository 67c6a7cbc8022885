// Package storage holds document bodies in S3-compatible object storage.
// Implementations stream content and never touch local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned by Get when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the object store used for document bodies.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
