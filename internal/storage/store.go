// Package storage holds the remote blob store drivers and the upload
// pipeline that feeds product images into them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/techplan/admin-server-go/internal/config"
)

// BlobStore persists image bytes under a key and returns a dereferenceable URL.
// The key doubles as the handle used to delete the blob later.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (url string, err error)
	Delete(ctx context.Context, key string) error
}

var ErrInvalidKey = errors.New("storage: invalid object key")

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.BlobConfig) (BlobStore, error) {
	switch cfg.Driver {
	case config.BlobDriverS3:
		return NewS3Store(ctx, cfg)
	case config.BlobDriverLocal, "":
		return NewLocalStore(cfg.LocalRoot, cfg.PublicURL)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

// cleanKey rejects keys that are absolute or escape the store root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
