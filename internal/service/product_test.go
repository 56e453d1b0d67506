package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/techplan/admin-server-go/internal/errors"
	"github.com/techplan/admin-server-go/internal/model"
	"github.com/techplan/admin-server-go/internal/storage"
)

func widgetForm() ProductForm {
	return ProductForm{Name: "Widget", Price: "19.99"}
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	created := &model.Product{ID: "p1", Name: "Widget", Price: 19.99, AdminID: "admin-1"}

	expectCreate := func(repo *mockProductRepo) {
		repo.On("Create", ctx, model.CreateProductParams{
			ProductFields: model.ProductFields{Name: "Widget", Price: 19.99},
			AdminID:       "admin-1",
		}).Return(&model.Product{ID: created.ID, Name: created.Name, Price: created.Price, AdminID: created.AdminID}, nil)
	}

	t.Run("no image part persists product without images", func(t *testing.T) {
		repo := new(mockProductRepo)
		uploader := new(mockUploader)
		expectCreate(repo)

		product, err := NewProductService(repo, uploader, nil).Create(ctx, "admin-1", widgetForm(), nil)
		require.NoError(t, err)
		assert.Equal(t, "p1", product.ID)
		assert.Empty(t, product.Images)
		uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "AddImage", mock.Anything, mock.Anything)
	})

	t.Run("empty image part attaches nothing", func(t *testing.T) {
		repo := new(mockProductRepo)
		uploader := new(mockUploader)
		expectCreate(repo)
		uploader.On("Upload", ctx, mock.Anything).Return(nil, nil)

		product, err := NewProductService(repo, uploader, nil).Create(ctx, "admin-1", widgetForm(), bytes.NewReader(nil))
		require.NoError(t, err)
		assert.Empty(t, product.Images)
		repo.AssertNotCalled(t, "AddImage", mock.Anything, mock.Anything)
	})

	t.Run("uploaded image is attached", func(t *testing.T) {
		repo := new(mockProductRepo)
		uploader := new(mockUploader)
		expectCreate(repo)
		uploader.On("Upload", ctx, mock.Anything).
			Return(&storage.Uploaded{URL: "https://cdn/products/x.png", PublicID: "products/x.png"}, nil)
		repo.On("AddImage", ctx, model.AddImageParams{ProductID: "p1", URL: "https://cdn/products/x.png", PublicID: "products/x.png"}).
			Return(&model.ProductImage{ID: "i1", ProductID: "p1", URL: "https://cdn/products/x.png", PublicID: "products/x.png"}, nil)

		product, err := NewProductService(repo, uploader, nil).Create(ctx, "admin-1", widgetForm(), bytes.NewReader([]byte("img")))
		require.NoError(t, err)
		require.Len(t, product.Images, 1)
		assert.Equal(t, "i1", product.PrimaryImage().ID)
		repo.AssertExpectations(t)
	})

	t.Run("upload failure still creates product", func(t *testing.T) {
		repo := new(mockProductRepo)
		uploader := new(mockUploader)
		expectCreate(repo)
		uploader.On("Upload", ctx, mock.Anything).Return(nil, apperrors.UploadFailed(errors.New("quota")))

		product, err := NewProductService(repo, uploader, nil).Create(ctx, "admin-1", widgetForm(), bytes.NewReader([]byte("img")))
		require.NoError(t, err)
		assert.Equal(t, "p1", product.ID)
		assert.Empty(t, product.Images)
	})

	t.Run("failed image row removes the orphaned blob", func(t *testing.T) {
		repo := new(mockProductRepo)
		uploader := new(mockUploader)
		expectCreate(repo)
		uploader.On("Upload", ctx, mock.Anything).Return(&storage.Uploaded{URL: "u", PublicID: "products/x.png"}, nil)
		repo.On("AddImage", ctx, mock.Anything).Return(nil, errors.New("fk violation"))
		uploader.On("Delete", ctx, "products/x.png").Return(nil)

		_, err := NewProductService(repo, uploader, nil).Create(ctx, "admin-1", widgetForm(), bytes.NewReader([]byte("img")))
		require.NoError(t, err)
		uploader.AssertCalled(t, "Delete", ctx, "products/x.png")
	})

	t.Run("orphan cleanup failure does not fail the create", func(t *testing.T) {
		repo := new(mockProductRepo)
		uploader := new(mockUploader)
		expectCreate(repo)
		uploader.On("Upload", ctx, mock.Anything).Return(&storage.Uploaded{URL: "u", PublicID: "products/x.png"}, nil)
		repo.On("AddImage", ctx, mock.Anything).Return(nil, errors.New("fk violation"))
		uploader.On("Delete", ctx, "products/x.png").Return(errors.New("outage"))

		product, err := NewProductService(repo, uploader, nil).Create(ctx, "admin-1", widgetForm(), bytes.NewReader([]byte("img")))
		require.NoError(t, err)
		assert.Empty(t, product.Images)
		uploader.AssertNumberOfCalls(t, "Delete", 1)
	})

	t.Run("invalid form persists nothing", func(t *testing.T) {
		repo := new(mockProductRepo)
		uploader := new(mockUploader)

		_, err := NewProductService(repo, uploader, nil).Create(ctx, "admin-1", ProductForm{Name: "Widget"}, bytes.NewReader([]byte("img")))
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	fields := model.ProductFields{Name: "Widget", Price: 19.99}

	t.Run("unknown product is not found", func(t *testing.T) {
		repo := new(mockProductRepo)
		repo.On("Update", ctx, "missing", fields).Return(nil, nil)

		_, err := NewProductService(repo, new(mockUploader), nil).Update(ctx, "missing", widgetForm(), nil)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("new image is appended to existing ones", func(t *testing.T) {
		repo := new(mockProductRepo)
		uploader := new(mockUploader)
		existing := model.ProductImage{ID: "i1", ProductID: "p1"}
		repo.On("Update", ctx, "p1", fields).
			Return(&model.Product{ID: "p1", Name: "Widget", Images: []model.ProductImage{existing}}, nil)
		uploader.On("Upload", ctx, mock.Anything).Return(&storage.Uploaded{URL: "u2", PublicID: "products/2.png"}, nil)
		repo.On("AddImage", ctx, mock.Anything).Return(&model.ProductImage{ID: "i2", ProductID: "p1"}, nil)

		product, err := NewProductService(repo, uploader, nil).Update(ctx, "p1", widgetForm(), bytes.NewReader([]byte("img")))
		require.NoError(t, err)
		require.Len(t, product.Images, 2)
		assert.Equal(t, "i1", product.Images[0].ID)
		assert.Equal(t, "i2", product.Images[1].ID)
		uploader.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	product := &model.Product{
		ID: "p1",
		Images: []model.ProductImage{
			{ID: "i1", PublicID: "products/1.png"},
			{ID: "i2", PublicID: "products/2.png"},
			{ID: "i3", PublicID: "products/3.png"},
		},
	}

	t.Run("attempts every blob and the row despite failures", func(t *testing.T) {
		repo := new(mockProductRepo)
		uploader := new(mockUploader)
		repo.On("FindByID", ctx, "p1").Return(product, nil)
		uploader.On("Delete", ctx, "products/1.png").Return(errors.New("outage"))
		uploader.On("Delete", ctx, "products/2.png").Return(nil)
		uploader.On("Delete", ctx, "products/3.png").Return(errors.New("outage"))
		repo.On("Delete", ctx, "p1").Return(true, nil)

		report, err := NewProductService(repo, uploader, nil).Delete(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 3, report.BlobsAttempted)
		assert.Equal(t, 2, report.BlobsFailed)
		uploader.AssertNumberOfCalls(t, "Delete", 3)
		repo.AssertNumberOfCalls(t, "Delete", 1)
	})

	t.Run("already deleted product is not found", func(t *testing.T) {
		repo := new(mockProductRepo)
		uploader := new(mockUploader)
		repo.On("FindByID", ctx, "gone").Return(nil, nil)

		_, err := NewProductService(repo, uploader, nil).Delete(ctx, "gone")
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("row vanishing between read and delete is not found", func(t *testing.T) {
		repo := new(mockProductRepo)
		repo.On("FindByID", ctx, "p2").Return(&model.Product{ID: "p2"}, nil)
		repo.On("Delete", ctx, "p2").Return(false, nil)

		_, err := NewProductService(repo, new(mockUploader), nil).Delete(ctx, "p2")
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

func TestProductService_Get(t *testing.T) {
	ctx := context.Background()
	repo := new(mockProductRepo)
	repo.On("FindByID", ctx, "p1").Return(&model.Product{ID: "p1"}, nil)
	repo.On("FindByID", ctx, "nope").Return(nil, nil)

	svc := NewProductService(repo, new(mockUploader), nil)

	got, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)

	_, err = svc.Get(ctx, "nope")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestDashboardService_Stats(t *testing.T) {
	ctx := context.Background()
	products := new(mockProductRepo)
	admins := new(mockAdminRepo)

	products.On("Count", ctx).Return(12, nil)
	products.On("CountImages", ctx).Return(30, nil)
	products.On("ListRecent", ctx, 5).Return([]model.Product{{ID: "p12"}, {ID: "p11"}}, nil)
	admins.On("Count", ctx).Return(2, nil)

	stats, err := NewDashboardService(products, admins).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalProducts)
	assert.Equal(t, 2, stats.TotalAdmins)
	assert.Equal(t, 30, stats.TotalImages)
	assert.Len(t, stats.RecentProducts, 2)

	failing := new(mockProductRepo)
	failing.On("Count", ctx).Return(0, errors.New("down"))
	_, err = NewDashboardService(failing, admins).Stats(ctx)
	assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.GetCode(err))
}
