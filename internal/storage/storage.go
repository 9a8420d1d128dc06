package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"
	"time"
)

// Package storage contains read-only asset stores backing the /static route.
// Every store is rooted: keys are relative and can never address anything outside it.

var (
	// ErrNotFound is returned when a key does not resolve to a readable regular file
	// inside the root, including keys that try to leave it.
	ErrNotFound = errors.New("asset not found")
	// ErrUnreadable is returned when the asset exists but cannot be read.
	ErrUnreadable = errors.New("asset unreadable")
)

// ObjectInfo contains basic information about an asset.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage is a read-only asset store.
// Implementations are safe for concurrent use by multiple goroutines.
type Storage interface {
	// Get retrieves an asset's content as a streaming reader alongside its info.
	// The key must already be cleaned with CleanKey.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Ping reports whether the store's root is reachable.
	Ping(ctx context.Context) error
}

// CleanKey turns a client-supplied, possibly percent-encoded path into a store key.
//
// Undecodable input, NUL bytes, backslashes and any ".." segment are rejected with
// ErrNotFound rather than normalized away. The result never starts with "/" and is
// never empty.
func CleanKey(raw string) (string, error) {
	p, err := url.PathUnescape(raw)
	if err != nil {
		return "", ErrNotFound
	}
	if strings.ContainsAny(p, "\x00\\") {
		return "", ErrNotFound
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", ErrNotFound
		}
	}

	key := strings.TrimLeft(path.Clean("/"+p), "/")
	if key == "" || key == "." {
		return "", ErrNotFound
	}
	return key, nil
}
