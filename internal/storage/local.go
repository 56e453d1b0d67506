package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// LocalPrefix is where the local driver's files are served.
const LocalPrefix = "/uploads"

// LocalStore keeps blobs on disk. Meant for development; files are served
// by Handler under LocalPrefix.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if root == "" {
		root = "uploads"
	}
	if !filepath.IsAbs(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("storage/local: resolve root: %w", err)
		}
		root = abs
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: mkdir: %w", err)
	}
	if baseURL == "" {
		baseURL = LocalPrefix
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *LocalStore) abs(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(key))
}

func (d *LocalStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	full := d.abs(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage/local: mkdir: %w", err)
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("storage/local: write %s: %w", key, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("storage/local: rename %s: %w", key, err)
	}
	return joinURL(d.baseURL, key), nil
}

// Delete removes the blob. A missing file is not an error.
func (d *LocalStore) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(d.abs(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", key, err)
	}
	return nil
}

// Handler serves stored files. Directory listings are not exposed.
func (d *LocalStore) Handler() http.Handler {
	files := http.StripPrefix(LocalPrefix+"/", http.FileServer(http.Dir(d.root)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
