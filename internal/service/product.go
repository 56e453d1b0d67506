package service

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	apperrors "github.com/techplan/admin-server-go/internal/errors"
	"github.com/techplan/admin-server-go/internal/metrics"
	"github.com/techplan/admin-server-go/internal/model"
	"github.com/techplan/admin-server-go/internal/repository"
	"github.com/techplan/admin-server-go/internal/storage"
)

// ImageUploader is the upload pipeline as the product service sees it.
type ImageUploader interface {
	Upload(ctx context.Context, r io.Reader) (*storage.Uploaded, error)
	Delete(ctx context.Context, publicID string) error
}

// DeleteReport describes what a product delete did to remote blobs.
type DeleteReport struct {
	BlobsAttempted int
	BlobsFailed    int
}

type ProductService struct {
	productRepo repository.ProductRepository
	uploader    ImageUploader
	metrics     *metrics.Metrics
}

func NewProductService(productRepo repository.ProductRepository, uploader ImageUploader, m *metrics.Metrics) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		uploader:    uploader,
		metrics:     m,
	}
}

func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if product == nil {
		return nil, apperrors.NotFound("Product")
	}
	return product, nil
}

// Create validates the form, persists the product and attaches the image
// when one was supplied. An image failure does not fail the create.
func (s *ProductService) Create(ctx context.Context, adminID string, form ProductForm, image io.Reader) (*model.Product, error) {
	fields, err := form.Fields()
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.Create(ctx, model.CreateProductParams{
		ProductFields: fields,
		AdminID:       adminID,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	s.metrics.ObserveProductChange("create")
	log.Info().Str("product_id", product.ID).Str("admin_id", adminID).Msg("Product created")

	s.attachImage(ctx, product, image)
	return product, nil
}

// Update changes the editable fields. A new image is added next to the
// existing ones, never in place of them.
func (s *ProductService) Update(ctx context.Context, id string, form ProductForm, image io.Reader) (*model.Product, error) {
	fields, err := form.Fields()
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.Update(ctx, id, fields)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if product == nil {
		return nil, apperrors.NotFound("Product")
	}

	s.metrics.ObserveProductChange("update")
	log.Info().Str("product_id", id).Msg("Product updated")

	s.attachImage(ctx, product, image)
	return product, nil
}

// Delete removes every remote blob of the product, then the product row.
// Blob deletes are attempted once each and never block the row delete.
func (s *ProductService) Delete(ctx context.Context, id string) (*DeleteReport, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if product == nil {
		return nil, apperrors.NotFound("Product")
	}

	report := &DeleteReport{}
	for _, img := range product.Images {
		report.BlobsAttempted++
		if err := s.uploader.Delete(ctx, img.PublicID); err != nil {
			report.BlobsFailed++
		}
	}

	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !deleted {
		return nil, apperrors.NotFound("Product")
	}

	s.metrics.ObserveProductChange("delete")
	ev := log.Info()
	if report.BlobsFailed > 0 {
		ev = log.Warn()
	}
	ev.Str("product_id", id).
		Int("blobs", report.BlobsAttempted).
		Int("blob_failures", report.BlobsFailed).
		Msg("Product deleted")

	return report, nil
}

// attachImage uploads image and records it on product. Failures are logged
// only.
func (s *ProductService) attachImage(ctx context.Context, product *model.Product, image io.Reader) {
	if image == nil {
		return
	}

	uploaded, err := s.uploader.Upload(ctx, image)
	if err != nil {
		log.Warn().Err(err).Str("product_id", product.ID).Msg("Image upload failed, product saved without it")
		return
	}
	if uploaded == nil {
		return
	}

	img, err := s.productRepo.AddImage(ctx, model.AddImageParams{
		ProductID: product.ID,
		URL:       uploaded.URL,
		PublicID:  uploaded.PublicID,
	})
	if err != nil {
		log.Error().Err(err).Str("product_id", product.ID).Str("public_id", uploaded.PublicID).Msg("Failed to record image")
		_ = s.uploader.Delete(ctx, uploaded.PublicID) // logged by the uploader
		return
	}

	product.Images = append(product.Images, *img)
}
