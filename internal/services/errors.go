package services

import (
	"errors"
	"fmt"

	"stock-service/internal/repository"
)

var (
	ErrNotFound          = repository.ErrNotFound
	ErrAlreadyExists     = repository.ErrAlreadyExists
	ErrStorageFailure    = repository.ErrStorage
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyResolved   = errors.New("alert is already resolved")
	ErrValidation        = errors.New("validation failed")
)

// InsufficientStockError reports how much stock was actually available.
// It matches ErrInsufficientStock under errors.Is.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func invalidAmount(amount int) error {
	return fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
}
