package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// record is satisfied by pointers to the entity models
type record[T any] interface {
	*T
	EntityID() string
}

// Store is the keyed entity store shared by every repository. Each call holds
// the store mutex for its whole read-check-write cycle.
type Store[T any, P record[T]] struct {
	db *gorm.DB
	mu sync.Mutex
}

func NewStore[T any, P record[T]](db *gorm.DB) *Store[T, P] {
	return &Store[T, P]{db: db}
}

// Save inserts a new entity; the identifier must not be present yet
func (s *Store[T, P]) Save(ctx context.Context, entity P) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.exists(ctx, entity.EntityID())
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s: %w", entity.EntityID(), ErrAlreadyExists)
	}
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return storageErr("save", err)
	}
	return nil
}

// Update overwrites every column of an existing entity
func (s *Store[T, P]) Update(ctx context.Context, entity P) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.exists(ctx, entity.EntityID())
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s: %w", entity.EntityID(), ErrNotFound)
	}
	if err := s.db.WithContext(ctx).Model(entity).Select("*").Updates(entity).Error; err != nil {
		return storageErr("update", err)
	}
	return nil
}

func (s *Store[T, P]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(P(new(T)))
	if result.Error != nil {
		return storageErr("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store[T, P]) FindByID(ctx context.Context, id string) (P, error) {
	var entity T
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, storageErr("find", err)
	}
	return P(&entity), nil
}

// FindAll returns every entity ordered by identifier
func (s *Store[T, P]) FindAll(ctx context.Context) ([]T, error) {
	return s.find(ctx, s.db.WithContext(ctx))
}

func (s *Store[T, P]) Exists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, id)
}

func (s *Store[T, P]) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(P(new(T))).Count(&count).Error; err != nil {
		return 0, storageErr("count", err)
	}
	return count, nil
}

// IDs lists every stored identifier, used to seed the ID generator
func (s *Store[T, P]) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(P(new(T))).Pluck("id", &ids).Error; err != nil {
		return nil, storageErr("ids", err)
	}
	return ids, nil
}

func (s *Store[T, P]) exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(P(new(T))).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, storageErr("exists", err)
	}
	return count > 0, nil
}

func (s *Store[T, P]) find(ctx context.Context, query *gorm.DB) ([]T, error) {
	var entities []T
	if err := query.Order("id ASC").Find(&entities).Error; err != nil {
		return nil, storageErr("find", err)
	}
	return entities, nil
}
