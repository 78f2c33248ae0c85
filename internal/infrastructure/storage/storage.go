// Package storage stores uploaded proof-of-payment files in S3-compatible
// object storage.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrEmptyKey is returned when an object key is missing
var ErrEmptyKey = errors.New("storage key is required")

// ObjectStorage stores objects by key
type ObjectStorage interface {
	// Put stores data under key and returns the object's URL
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes an object
	Delete(ctx context.Context, key string) error
	// DownloadURL returns a time-limited URL for reading an object
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// ObjectKey joins a folder and a file name into an object key
func ObjectKey(folder, name string) string {
	folder = strings.Trim(folder, "/")
	name = strings.TrimLeft(name, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// KeyFromURL recovers the object key from a URL returned by Put given the
// same base URL
func KeyFromURL(baseURL, objectURL string) (string, bool) {
	prefix := strings.TrimRight(baseURL, "/") + "/"
	if !strings.HasPrefix(objectURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(objectURL, prefix)
	return key, key != ""
}
