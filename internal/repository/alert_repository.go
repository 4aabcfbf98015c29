package repository

import (
	"context"

	"gorm.io/gorm"

	"stock-service/internal/models"
)

// AlertFilter narrows alert listings; zero values match everything
type AlertFilter struct {
	ProductID string
	Type      models.AlertType
	Priority  models.AlertPriority
	Resolved  *bool
}

type AlertRepositoryInterface interface {
	Save(ctx context.Context, alert *models.Alert) error
	Update(ctx context.Context, alert *models.Alert) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Alert, error)
	FindAll(ctx context.Context) ([]models.Alert, error)
	Exists(ctx context.Context, id string) (bool, error)
	Find(ctx context.Context, filter AlertFilter) ([]models.Alert, error)
	FindUnresolvedByProduct(ctx context.Context, productID string, types ...models.AlertType) ([]models.Alert, error)
	CountUnresolved(ctx context.Context) (int64, error)
}

type AlertRepository struct {
	*Store[models.Alert, *models.Alert]
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{Store: NewStore[models.Alert](db), db: db}
}

var _ AlertRepositoryInterface = (*AlertRepository)(nil)

func (r *AlertRepository) Find(ctx context.Context, filter AlertFilter) ([]models.Alert, error) {
	query := r.db.WithContext(ctx)
	if filter.ProductID != "" {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Resolved != nil {
		query = query.Where("resolved = ?", *filter.Resolved)
	}
	return r.find(ctx, query)
}

// FindUnresolvedByProduct returns the product's open alerts, limited to types when given
func (r *AlertRepository) FindUnresolvedByProduct(ctx context.Context, productID string, types ...models.AlertType) ([]models.Alert, error) {
	query := r.db.WithContext(ctx).Where("product_id = ? AND resolved = ?", productID, false)
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}
	return r.find(ctx, query)
}

func (r *AlertRepository) CountUnresolved(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Alert{}).Where("resolved = ?", false).Count(&count).Error
	if err != nil {
		return 0, storageErr("count", err)
	}
	return count, nil
}
