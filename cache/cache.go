// Package cache is the explicit read cache for menu, categories and
// tables. Entries are invalidated by entity type from the write paths;
// nothing else in the app holds cached state.
package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	KeyMenu         = "menu_all"
	KeyCategories   = "categories_all"
	KeyTablesActive = "tables_active"

	dishKeyPrefix = "dish_"
)

const (
	MenuTTL       = 10 * time.Minute
	CategoriesTTL = time.Hour
	TablesTTL     = 5 * time.Minute
)

func DishKey(dishID uint) string {
	return fmt.Sprintf("%s%d", dishKeyPrefix, dishID)
}

// Store is a key-value cache backend. Values are JSON-encoded so the
// memory and redis implementations behave identically.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Service bundles the invalidation hooks the write paths call. Keys stay
// private to this package so controllers cannot invent their own.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Store() Store {
	return s.store
}

func (s *Service) InvalidateMenu(ctx context.Context) error {
	return s.store.Delete(ctx, KeyMenu)
}

func (s *Service) InvalidateDish(ctx context.Context, dishID uint) error {
	return s.store.Delete(ctx, DishKey(dishID), KeyMenu)
}

func (s *Service) InvalidateCategories(ctx context.Context) error {
	return s.store.Delete(ctx, KeyCategories)
}

func (s *Service) InvalidateTables(ctx context.Context) error {
	return s.store.Delete(ctx, KeyTablesActive)
}

func (s *Service) InvalidateAll(ctx context.Context) error {
	return s.store.Delete(ctx, KeyMenu, KeyCategories, KeyTablesActive)
}
