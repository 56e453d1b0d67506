package model

import (
	"time"
)

type Product struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description *string        `db:"description" json:"description,omitempty"`
	Price       float64        `db:"price" json:"price"`
	AdminID     string         `db:"admin_id" json:"adminId"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
	Images      []ProductImage `db:"-" json:"images"`
}

// PrimaryImage returns the first image by creation order, or nil.
func (p *Product) PrimaryImage() *ProductImage {
	if len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}

type ProductImage struct {
	ID        string    `db:"id" json:"id"`
	URL       string    `db:"url" json:"url"`
	PublicID  string    `db:"public_id" json:"publicId"`
	ProductID string    `db:"product_id" json:"productId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ProductFields are the admin-editable columns of a product.
type ProductFields struct {
	Name        string
	Description *string
	Price       float64
}

type CreateProductParams struct {
	ProductFields
	AdminID string
}

type AddImageParams struct {
	ProductID string
	URL       string
	PublicID  string
}

type DashboardStats struct {
	TotalProducts  int       `json:"totalProducts"`
	TotalAdmins    int       `json:"totalAdmins"`
	TotalImages    int       `json:"totalImages"`
	RecentProducts []Product `json:"recentProducts"`
}
