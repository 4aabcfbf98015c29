package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"stock-service/internal/models"
)

type SupplierRepositoryInterface interface {
	Save(ctx context.Context, supplier *models.Supplier) error
	Update(ctx context.Context, supplier *models.Supplier) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Supplier, error)
	FindAll(ctx context.Context) ([]models.Supplier, error)
	Exists(ctx context.Context, id string) (bool, error)
	SearchByName(ctx context.Context, name string) ([]models.Supplier, error)
	FindActive(ctx context.Context) ([]models.Supplier, error)
}

type SupplierRepository struct {
	*Store[models.Supplier, *models.Supplier]
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{Store: NewStore[models.Supplier](db), db: db}
}

var _ SupplierRepositoryInterface = (*SupplierRepository)(nil)

func (r *SupplierRepository) SearchByName(ctx context.Context, name string) ([]models.Supplier, error) {
	pattern := "%" + strings.ToLower(name) + "%"
	return r.find(ctx, r.db.WithContext(ctx).Where("LOWER(name) LIKE ?", pattern))
}

func (r *SupplierRepository) FindActive(ctx context.Context) ([]models.Supplier, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("active = ?", true))
}
