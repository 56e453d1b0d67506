package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/techplan/admin-server-go/internal/config"
	apperrors "github.com/techplan/admin-server-go/internal/errors"
	"github.com/techplan/admin-server-go/internal/metrics"
)

var (
	ErrTooLarge = errors.New("upload exceeds size limit")
	ErrNotImage = errors.New("upload is not an image")
)

// Uploaded is what the store handed back for one image.
type Uploaded struct {
	URL      string
	PublicID string
}

// Uploader buffers one file part, decides whether it is an image at all and
// forwards it to the blob store under the products folder.
type Uploader struct {
	store    BlobStore
	folder   string
	maxBytes int64
	metrics  *metrics.Metrics
	newID    func() string
}

func NewUploader(store BlobStore, maxBytes int64, m *metrics.Metrics) *Uploader {
	if maxBytes <= 0 {
		maxBytes = config.DefaultMaxUploadMB << 20
	}
	return &Uploader{
		store:    store,
		folder:   config.UploadFolder,
		maxBytes: maxBytes,
		metrics:  m,
		newID:    uuid.NewString,
	}
}

// Upload reads r once into memory. A zero-length part means no image was
// chosen and returns (nil, nil) without touching the store. Any other
// failure is an UPLOAD_FAILED AppError.
func (u *Uploader) Upload(ctx context.Context, r io.Reader) (*Uploaded, error) {
	if r == nil {
		u.metrics.ObserveUpload(metrics.ResultSkipped, 0)
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return nil, u.fail(apperrors.UploadFailed(fmt.Errorf("read part: %w", err)))
	}
	if len(data) == 0 {
		u.metrics.ObserveUpload(metrics.ResultSkipped, 0)
		return nil, nil
	}
	if int64(len(data)) > u.maxBytes {
		return nil, u.fail(apperrors.UploadFailed(ErrTooLarge))
	}

	mt := mimetype.Detect(data)
	if !isAllowedImage(mt) {
		return nil, u.fail(apperrors.UploadFailed(fmt.Errorf("%w: %s", ErrNotImage, mt.String())))
	}

	key := path.Join(u.folder, u.newID()+mt.Extension())
	url, err := u.store.Put(ctx, key, mt.String(), data)
	if err != nil {
		return nil, u.fail(apperrors.UploadFailed(err))
	}

	u.metrics.ObserveUpload(metrics.ResultSuccess, len(data))
	log.Debug().Str("public_id", key).Int("bytes", len(data)).Str("mime", mt.String()).Msg("Image uploaded")
	return &Uploaded{URL: url, PublicID: key}, nil
}

// Delete removes one blob. Failures are logged and returned so the caller
// can count them; they are never meant to abort the enclosing operation.
func (u *Uploader) Delete(ctx context.Context, publicID string) error {
	if err := u.store.Delete(ctx, publicID); err != nil {
		u.metrics.ObserveBlobDelete(metrics.ResultFailure)
		log.Warn().Err(err).Str("public_id", publicID).Msg("Failed to delete blob")
		return err
	}
	u.metrics.ObserveBlobDelete(metrics.ResultSuccess)
	return nil
}

func (u *Uploader) fail(err *apperrors.AppError) error {
	u.metrics.ObserveUpload(metrics.ResultFailure, 0)
	return err
}

// SVG is excluded: it can carry script and local files are served same-origin.
func isAllowedImage(mt *mimetype.MIME) bool {
	return strings.HasPrefix(mt.String(), "image/") && !mt.Is("image/svg+xml")
}
