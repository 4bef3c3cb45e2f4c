package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/food-ordering-app/models"
	"gorm.io/gorm"
)

// CatalogLookup dipakai cart untuk mengambil snapshot harga/nama
type CatalogLookup interface {
	FindOrderableFood(ctx context.Context, foodID uint) (*models.Food, error)
}

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// FindOrderableFood returns nil without error when the food is missing or unavailable.
func (s *CatalogService) FindOrderableFood(ctx context.Context, foodID uint) (*models.Food, error) {
	var food models.Food
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_available = ?", foodID, true).
		First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &food, nil
}

type FoodFilter struct {
	CategoryID *uint
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Available  *bool
	Page       int
	PageSize   int
}

func (f *FoodFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 12
	}
}

func (s *CatalogService) ListFoods(ctx context.Context, f FoodFilter) ([]models.Food, int64, error) {
	f.normalize()

	q := s.db.WithContext(ctx).Model(&models.Food{})
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Available != nil {
		q = q.Where("is_available = ?", *f.Available)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var foods []models.Food
	err := q.Preload("Category").
		Order("name ASC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&foods).Error
	return foods, total, err
}

func (s *CatalogService) PopularFoods(ctx context.Context, limit int) ([]models.Food, error) {
	if limit <= 0 {
		limit = 8
	}
	var foods []models.Food
	err := s.db.WithContext(ctx).
		Where("is_available = ?", true).
		Order("view_count DESC, id ASC").
		Limit(limit).
		Find(&foods).Error
	return foods, err
}

// FoodDetail menambah view_count lalu mengembalikan food dan maksimal 4 food
// lain dari kategori yang sama
func (s *CatalogService) FoodDetail(ctx context.Context, foodID uint) (*models.Food, []models.Food, error) {
	db := s.db.WithContext(ctx)

	var food models.Food
	if err := db.Preload("Category").First(&food, foodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrFoodNotFound
		}
		return nil, nil, err
	}

	if err := db.Model(&models.Food{}).Where("id = ?", food.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
		return nil, nil, err
	}
	food.ViewCount++

	var related []models.Food
	err := db.Where("category_id = ? AND id <> ? AND is_available = ?", food.CategoryID, food.ID, true).
		Order("view_count DESC").
		Limit(4).
		Find(&related).Error
	return &food, related, err
}

func (s *CatalogService) ActiveCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&cats).Error
	return cats, err
}
