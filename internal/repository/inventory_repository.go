package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"stock-service/internal/models"
)

// ProductRepositoryInterface is the product store used by the stock ledger
type ProductRepositoryInterface interface {
	Save(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
	FindByCategory(ctx context.Context, category string) ([]models.Product, error)
	SearchByName(ctx context.Context, name string) ([]models.Product, error)
	FindLowStock(ctx context.Context) ([]models.Product, error)
}

type ProductRepository struct {
	*Store[models.Product, *models.Product]
	db    *gorm.DB
	cache *ProductCache
}

func NewProductRepository(db *gorm.DB, cache *ProductCache) *ProductRepository {
	return &ProductRepository{
		Store: NewStore[models.Product](db),
		db:    db,
		cache: cache,
	}
}

var _ ProductRepositoryInterface = (*ProductRepository)(nil)

// ========== Cached Operations ==========

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var cached models.Product
	if r.cache.Get(ctx, id, &cached) {
		return &cached, nil
	}

	product, err := r.Store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, id, product)
	return product, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := r.Store.Update(ctx, product); err != nil {
		return err
	}
	r.cache.Invalidate(ctx, product.ID)
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.Store.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.Invalidate(ctx, id)
	return nil
}

// ========== Queries ==========

func (r *ProductRepository) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("LOWER(category) = ?", strings.ToLower(category)))
}

func (r *ProductRepository) SearchByName(ctx context.Context, name string) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(name) + "%"
	return r.find(ctx, r.db.WithContext(ctx).Where("LOWER(name) LIKE ?", pattern))
}

// FindLowStock returns products at or below their minimum stock level, out of stock included
func (r *ProductRepository) FindLowStock(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("quantity <= min_stock_level"))
}
