package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/gofiber/fiber/v2/utils"

	"courtview/internal/storage"
)

var (
	ErrNotFound   = errors.New("asset not found")
	ErrUnreadable = errors.New("asset unreadable")
)

const octetStream = "application/octet-stream"

// Asset is an opened static file. Callers must close Body.
type Asset struct {
	Body io.ReadCloser
	Info storage.ObjectInfo
}

// AssetService defines the use cases for the static asset route.
type AssetService interface {
	// Open resolves a client-supplied path below the asset root.
	// It returns ErrNotFound for missing files and for paths that would leave the root,
	// and ErrUnreadable when the file exists but cannot be read.
	Open(ctx context.Context, rawPath string) (*Asset, error)

	// Ready reports whether the asset root is available.
	Ready(ctx context.Context) error
}

type assetService struct {
	store storage.Storage
}

// NewAssetService constructs a new AssetService over a store.
func NewAssetService(store storage.Storage) AssetService {
	return &assetService{store: store}
}

func (s *assetService) Open(ctx context.Context, rawPath string) (*Asset, error) {
	key, err := storage.CleanKey(rawPath)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", rawPath, ErrNotFound)
	}

	body, info, err := s.store.Get(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
	}

	info.ContentType = contentType(key, info.ContentType)
	return &Asset{Body: body, Info: info}, nil
}

func (s *assetService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// contentType infers the media type from the extension. The type recorded by
// the store is only used when the extension is unknown.
func contentType(key, stored string) string {
	if ct := utils.GetMIME(path.Ext(key)); ct != "" && ct != octetStream {
		return ct
	}
	if stored != "" {
		return stored
	}
	return octetStream
}
