package services

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"stock-service/internal/clock"
	"stock-service/internal/idgen"
	"stock-service/internal/models"
	"stock-service/internal/repository"
)

// SupplierService is the supplier ledger: order counts, rolling ratings and
// supplier records.
type SupplierService struct {
	suppliers repository.SupplierRepositoryInterface
	ids       IDGenerator
	clock     clock.Clock
	logger    *logrus.Entry

	mu sync.Mutex
}

var _ SupplierLedger = (*SupplierService)(nil)

func NewSupplierService(suppliers repository.SupplierRepositoryInterface, ids IDGenerator, clk clock.Clock, logger *logrus.Logger) *SupplierService {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SupplierService{
		suppliers: suppliers,
		ids:       ids,
		clock:     clk,
		logger:    logger.WithField("component", "supplier-ledger"),
	}
}

func (s *SupplierService) CreateSupplier(ctx context.Context, req models.CreateSupplierRequest) (*models.Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("supplier name is required")
	}

	now := s.clock.Now()
	supplier := &models.Supplier{
		ID:            s.ids.Next(idgen.KindSupplier),
		Name:          name,
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	err := s.suppliers.Save(ctx, supplier)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"supplierId": supplier.ID,
		"name":       supplier.Name,
	}).Info("Supplier created")
	return supplier, nil
}

func (s *SupplierService) UpdateSupplier(ctx context.Context, supplierID string, req models.UpdateSupplierRequest) (*models.Supplier, error) {
	return s.mutate(ctx, supplierID, func(sup *models.Supplier) error {
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return validationError("supplier name is required")
			}
			sup.Name = name
		}
		if req.ContactPerson != nil {
			sup.ContactPerson = strings.TrimSpace(*req.ContactPerson)
		}
		if req.Phone != nil {
			sup.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Email != nil {
			sup.Email = strings.TrimSpace(*req.Email)
		}
		if req.Address != nil {
			sup.Address = strings.TrimSpace(*req.Address)
		}
		return nil
	})
}

func (s *SupplierService) DeleteSupplier(ctx context.Context, supplierID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.suppliers.Delete(ctx, supplierID); err != nil {
		return err
	}
	s.logger.WithField("supplierId", supplierID).Info("Supplier deleted")
	return nil
}

// IncrementOrderCount counts one more completed purchase
func (s *SupplierService) IncrementOrderCount(ctx context.Context, supplierID string) (*models.Supplier, error) {
	return s.mutate(ctx, supplierID, func(sup *models.Supplier) error {
		sup.IncrementOrderCount()
		return nil
	})
}

// UpdateRating folds rating into the supplier's running mean. It is only
// called explicitly; recording a purchase does not rate the supplier.
func (s *SupplierService) UpdateRating(ctx context.Context, supplierID string, rating float64) (*models.Supplier, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, validationError("rating must be between %.1f and %.1f, got %g", models.MinRating, models.MaxRating, rating)
	}
	supplier, err := s.mutate(ctx, supplierID, func(sup *models.Supplier) error {
		sup.ApplyRating(rating)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"supplierId": supplierID,
		"input":      rating,
		"rating":     supplier.Rating,
	}).Info("Supplier rating updated")
	return supplier, nil
}

func (s *SupplierService) Activate(ctx context.Context, supplierID string) (*models.Supplier, error) {
	return s.mutate(ctx, supplierID, func(sup *models.Supplier) error {
		sup.Active = true
		return nil
	})
}

func (s *SupplierService) Deactivate(ctx context.Context, supplierID string) (*models.Supplier, error) {
	return s.mutate(ctx, supplierID, func(sup *models.Supplier) error {
		sup.Active = false
		return nil
	})
}

func (s *SupplierService) mutate(ctx context.Context, supplierID string, fn func(sup *models.Supplier) error) (*models.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if err := fn(supplier); err != nil {
		return nil, err
	}
	supplier.Touch(s.clock.Now())
	if err := s.suppliers.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// ========== Queries ==========

func (s *SupplierService) GetSupplier(ctx context.Context, supplierID string) (*models.Supplier, error) {
	return s.suppliers.FindByID(ctx, supplierID)
}

func (s *SupplierService) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return s.suppliers.FindAll(ctx)
}

func (s *SupplierService) SearchSuppliers(ctx context.Context, name string) ([]models.Supplier, error) {
	return s.suppliers.SearchByName(ctx, strings.TrimSpace(name))
}

func (s *SupplierService) ActiveSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return s.suppliers.FindActive(ctx)
}

func (s *SupplierService) SupplierExists(ctx context.Context, supplierID string) (bool, error) {
	return s.suppliers.Exists(ctx, supplierID)
}
