package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock-service/internal/models"
)

// TransactionFilter narrows transaction queries. Time bounds are inclusive
// and a nil bound is open.
type TransactionFilter struct {
	ProductID string
	Type      *models.TransactionType
	From      *time.Time
	To        *time.Time
}

// TransactionRepositoryInterface is append-only: transactions are never
// updated or deleted once saved.
type TransactionRepositoryInterface interface {
	Save(ctx context.Context, tx *models.Transaction) error
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	FindAll(ctx context.Context) ([]models.Transaction, error)
	Exists(ctx context.Context, id string) (bool, error)
	Find(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)
	Count(ctx context.Context, filter TransactionFilter) (int64, error)
}

type TransactionRepository struct {
	store *Store[models.Transaction, *models.Transaction]
	db    *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{store: NewStore[models.Transaction](db), db: db}
}

var _ TransactionRepositoryInterface = (*TransactionRepository)(nil)

func (r *TransactionRepository) Save(ctx context.Context, tx *models.Transaction) error {
	return r.store.Save(ctx, tx)
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	return r.store.FindByID(ctx, id)
}

func (r *TransactionRepository) FindAll(ctx context.Context) ([]models.Transaction, error) {
	return r.store.FindAll(ctx)
}

func (r *TransactionRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.store.Exists(ctx, id)
}

func (r *TransactionRepository) IDs(ctx context.Context) ([]string, error) {
	return r.store.IDs(ctx)
}

func (r *TransactionRepository) Find(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.filtered(ctx, filter).Order("timestamp ASC, id ASC").Find(&txs).Error
	if err != nil {
		return nil, storageErr("find", err)
	}
	return txs, nil
}

func (r *TransactionRepository) Count(ctx context.Context, filter TransactionFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Model(&models.Transaction{}).Count(&count).Error; err != nil {
		return 0, storageErr("count", err)
	}
	return count, nil
}

// SumTotalAmount adds up TotalAmount over the matching transactions
func SumTotalAmount(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.TotalAmount)
	}
	return total
}

func (r *TransactionRepository) filtered(ctx context.Context, filter TransactionFilter) *gorm.DB {
	query := r.db.WithContext(ctx)
	if filter.ProductID != "" {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	// stored timestamps are UTC; sqlite compares them as text
	if filter.From != nil {
		query = query.Where("timestamp >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("timestamp <= ?", filter.To.UTC())
	}
	return query
}
