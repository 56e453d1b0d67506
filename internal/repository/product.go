package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/techplan/admin-server-go/internal/database"
	"github.com/techplan/admin-server-go/internal/model"
)

type ProductRepository interface {
	Count(ctx context.Context) (int, error)
	CountImages(ctx context.Context) (int, error)
	// List returns products newest first, each with its images oldest first.
	List(ctx context.Context) ([]model.Product, error)
	ListRecent(ctx context.Context, limit int) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	Create(ctx context.Context, params model.CreateProductParams) (*model.Product, error)
	// Update changes name, description and price only. Returns nil when the
	// product does not exist.
	Update(ctx context.Context, id string, fields model.ProductFields) (*model.Product, error)
	// Delete removes the product and, by cascade, its image rows. Reports
	// whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
	AddImage(ctx context.Context, params model.AddImageParams) (*model.ProductImage, error)
}

type productRepo struct {
	db database.DBTX
}

func NewProductRepository(db database.DBTX) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM products`)
	return count, err
}

func (r *productRepo) CountImages(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM product_images`)
	return count, err
}

func (r *productRepo) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.SelectContext(ctx, &products, `
		SELECT * FROM products
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	return r.attachImages(ctx, products)
}

func (r *productRepo) ListRecent(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.SelectContext(ctx, &products, `
		SELECT * FROM products
		ORDER BY created_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return r.attachImages(ctx, products)
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.db.GetContext(ctx, &product, `
		SELECT * FROM products WHERE id = $1
	`, id)
	found, err := HandleNotFound(&product, err)
	if err != nil || found == nil {
		return nil, err
	}

	images, err := r.imagesFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	found.Images = images[id]
	if found.Images == nil {
		found.Images = []model.ProductImage{}
	}
	return found, nil
}

func (r *productRepo) Create(ctx context.Context, params model.CreateProductParams) (*model.Product, error) {
	var product model.Product
	err := r.db.GetContext(ctx, &product, `
		INSERT INTO products (id, name, description, price, admin_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, uuid.NewString(), params.Name, params.Description, params.Price, params.AdminID)
	if err != nil {
		return nil, err
	}
	product.Images = []model.ProductImage{}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, id string, fields model.ProductFields) (*model.Product, error) {
	var product model.Product
	err := r.db.GetContext(ctx, &product, `
		UPDATE products SET
			name = $2,
			description = $3,
			price = $4,
			updated_at = $5
		WHERE id = $1
		RETURNING *
	`, id, fields.Name, fields.Description, fields.Price, time.Now())
	return HandleNotFound(&product, err)
}

func (r *productRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *productRepo) AddImage(ctx context.Context, params model.AddImageParams) (*model.ProductImage, error) {
	var image model.ProductImage
	err := r.db.GetContext(ctx, &image, `
		INSERT INTO product_images (id, url, public_id, product_id)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, uuid.NewString(), params.URL, params.PublicID, params.ProductID)
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *productRepo) attachImages(ctx context.Context, products []model.Product) ([]model.Product, error) {
	if len(products) == 0 {
		return []model.Product{}, nil
	}

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	images, err := r.imagesFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range products {
		products[i].Images = images[products[i].ID]
		if products[i].Images == nil {
			products[i].Images = []model.ProductImage{}
		}
	}
	return products, nil
}

func (r *productRepo) imagesFor(ctx context.Context, productIDs []string) (map[string][]model.ProductImage, error) {
	var images []model.ProductImage
	err := r.db.SelectContext(ctx, &images, `
		SELECT * FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY created_at ASC, id
	`, pq.Array(productIDs))
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string][]model.ProductImage, len(productIDs))
	for _, img := range images {
		byProduct[img.ProductID] = append(byProduct[img.ProductID], img)
	}
	return byProduct, nil
}
