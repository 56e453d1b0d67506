package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/techplan/admin-server-go/internal/database"
	"github.com/techplan/admin-server-go/internal/model"
)

type AdminRepository interface {
	// FindByEmail matches the stored email exactly (case-sensitive).
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	Create(ctx context.Context, params model.CreateAdminParams) (*model.Admin, error)
	Count(ctx context.Context) (int, error)
}

type adminRepo struct {
	db database.DBTX
}

func NewAdminRepository(db database.DBTX) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.GetContext(ctx, &admin, `
		SELECT * FROM admins WHERE email = $1
	`, email)
	return HandleNotFound(&admin, err)
}

func (r *adminRepo) Create(ctx context.Context, params model.CreateAdminParams) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.GetContext(ctx, &admin, `
		INSERT INTO admins (id, email, password, name)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, uuid.NewString(), params.Email, params.PasswordHash, params.Name)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admins`)
	return count, err
}
