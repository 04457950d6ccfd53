package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/restokorp/restaurant-app/cache"
	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/utils"
)

// CacheWarmer refills the read cache with the data menu browsing hits
// hardest. Runs as a periodic job; each pass simply overwrites the keys.
type CacheWarmer struct {
	db    *gorm.DB
	cache *cache.Service
}

func NewCacheWarmer(db *gorm.DB, cacheSvc *cache.Service) *CacheWarmer {
	return &CacheWarmer{db: db, cache: cacheSvc}
}

func (w *CacheWarmer) Warm() error {
	ctx := context.Background()
	store := w.cache.Store()

	var dishes []models.Dish
	if err := w.db.Preload("Category").
		Where("is_available = ? AND is_deleted = ?", true, false).
		Find(&dishes).Error; err != nil {
		return fmt.Errorf("failed to load menu for warmup: %w", err)
	}
	if err := store.Set(ctx, cache.KeyMenu, dishes, cache.MenuTTL); err != nil {
		return err
	}

	var categories []models.DishCategory
	if err := w.db.Find(&categories).Error; err != nil {
		return fmt.Errorf("failed to load categories for warmup: %w", err)
	}
	if err := store.Set(ctx, cache.KeyCategories, categories, cache.CategoriesTTL); err != nil {
		return err
	}

	var tables []models.Table
	if err := w.db.Where("is_active = ?", true).Find(&tables).Error; err != nil {
		return fmt.Errorf("failed to load tables for warmup: %w", err)
	}
	if err := store.Set(ctx, cache.KeyTablesActive, tables, cache.TablesTTL); err != nil {
		return err
	}

	utils.InfoLogger.Printf("Cache warmed: %d dishes, %d categories, %d tables",
		len(dishes), len(categories), len(tables))
	return nil
}
