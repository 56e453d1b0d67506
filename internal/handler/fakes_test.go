package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/techplan/admin-server-go/internal/model"
)

type memAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*model.Admin
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{admins: map[string]*model.Admin{}}
}

func (m *memAdminRepo) FindByEmail(_ context.Context, email string) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.admins[email]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *memAdminRepo) Create(_ context.Context, p model.CreateAdminParams) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &model.Admin{
		ID:           fmt.Sprintf("admin-%d", len(m.admins)+1),
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Name:         p.Name,
		CreatedAt:    time.Now(),
	}
	m.admins[p.Email] = a
	return a, nil
}

func (m *memAdminRepo) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.admins), nil
}

type memProductRepo struct {
	mu          sync.Mutex
	seq         int
	products    map[string]*model.Product
	deleteCalls int
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: map[string]*model.Product{}}
}

func (m *memProductRepo) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memProductRepo) copyOf(p *model.Product) model.Product {
	cp := *p
	cp.Images = append([]model.ProductImage{}, p.Images...)
	return cp
}

func (m *memProductRepo) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products), nil
}

func (m *memProductRepo) CountImages(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.products {
		n += len(p.Images)
	}
	return n, nil
}

func (m *memProductRepo) List(context.Context) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, m.copyOf(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memProductRepo) ListRecent(ctx context.Context, limit int) ([]model.Product, error) {
	all, _ := m.List(ctx)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memProductRepo) FindByID(_ context.Context, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := m.copyOf(p)
	return &cp, nil
}

func (m *memProductRepo) Create(_ context.Context, params model.CreateProductParams) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	p := &model.Product{
		ID:          m.nextID("product"),
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		AdminID:     params.AdminID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Images:      []model.ProductImage{},
	}
	m.products[p.ID] = p
	cp := m.copyOf(p)
	return &cp, nil
}

func (m *memProductRepo) Update(_ context.Context, id string, f model.ProductFields) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	p.Name, p.Description, p.Price = f.Name, f.Description, f.Price
	p.UpdatedAt = time.Now()
	cp := m.copyOf(p)
	return &cp, nil
}

func (m *memProductRepo) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if _, ok := m.products[id]; !ok {
		return false, nil
	}
	delete(m.products, id)
	return true, nil
}

func (m *memProductRepo) AddImage(_ context.Context, params model.AddImageParams) (*model.ProductImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[params.ProductID]
	if !ok {
		return nil, errors.New("product not found")
	}
	img := model.ProductImage{
		ID:        m.nextID("image"),
		URL:       params.URL,
		PublicID:  params.PublicID,
		ProductID: params.ProductID,
		CreatedAt: time.Now(),
	}
	p.Images = append(p.Images, img)
	return &img, nil
}

// blobStore records calls and fails deletes when deleteErr is set.
type blobStore struct {
	mu        sync.Mutex
	puts      map[string][]byte
	deletes   []string
	deleteErr error
}

func newBlobStore() *blobStore {
	return &blobStore{puts: map[string][]byte{}}
}

func (b *blobStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.puts[key] = append([]byte(nil), data...)
	return "https://cdn.example.com/" + key, nil
}

func (b *blobStore) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, key)
	return b.deleteErr
}
