package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("courtview/storage")

// Local serves assets from a directory on disk.
// Files are opened through an os.Root, so symlinks pointing outside the
// directory are refused by the kernel-level lookup as well.
type Local struct {
	dir  string
	root *os.Root
}

// NewLocal opens dir as the asset root. A missing or unreadable directory is a
// configuration error.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve static dir: %w", err)
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("open static dir: %w", err)
	}
	return &Local{dir: abs, root: root}, nil
}

// Dir returns the absolute path of the asset root.
func (l *Local) Dir() string { return l.dir }

// Get opens the file addressed by key.
func (l *Local) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	_, span := tracer.Start(ctx, "storage.local.get", trace.WithAttributes(attribute.String("asset.key", key)))
	defer span.End()

	f, err := l.root.Open(filepath.FromSlash(key))
	if err != nil {
		span.RecordError(err)
		return nil, ObjectInfo{}, classify(key, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		span.RecordError(err)
		return nil, ObjectInfo{}, classify(key, err)
	}
	if !st.Mode().IsRegular() {
		f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	info := ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		ETag:         weakETag(st),
		LastModified: st.ModTime().UTC(),
	}
	span.SetAttributes(attribute.Int64("asset.size", info.Size))
	return f, info, nil
}

// Ping checks that the root directory is still there.
func (l *Local) Ping(context.Context) error {
	st, err := l.root.Stat(".")
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", l.dir)
	}
	return nil
}

// Close releases the root handle.
func (l *Local) Close() error {
	return l.root.Close()
}

// classify maps filesystem errors onto the store's error kinds.
// os.Root reports escapes with a non-errno error; those are treated as absent.
func classify(key string, err error) error {
	var errno syscall.Errno
	switch {
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, syscall.ENOTDIR),
		errors.Is(err, syscall.ELOOP):
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w: %v", key, ErrUnreadable, err)
	case !errors.As(err, &errno):
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	default:
		return fmt.Errorf("%s: %w: %v", key, ErrUnreadable, err)
	}
}

func weakETag(st fs.FileInfo) string {
	return `W/"` + strconv.FormatInt(st.Size(), 16) + "-" + strconv.FormatInt(st.ModTime().UnixNano(), 16) + `"`
}
