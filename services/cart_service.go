package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/utils"
)

// CartRepository menyimpan cart per session (implementasi: cache.CartRepository)
type CartRepository interface {
	Load(ctx context.Context, sessionID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type CartService struct {
	repo    CartRepository
	catalog CatalogLookup
}

func NewCartService(repo CartRepository, catalog CatalogLookup) *CartService {
	return &CartService{repo: repo, catalog: catalog}
}

func cartLog(sessionID string) *logrus.Entry {
	return utils.InfoLogger.WithField("session_id", sessionID)
}

// Get never fails: a missing or unreadable cart is returned as an empty cart.
func (s *CartService) Get(ctx context.Context, sessionID string) *models.Cart {
	cart, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		utils.ErrorLogger.WithField("session_id", sessionID).Errorf("load cart: %v", err)
	}
	if cart == nil {
		cart = &models.Cart{}
	}
	cart.SessionID = sessionID
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	return cart
}

// Add menambah quantity jika food sudah ada, atau baris baru dengan snapshot
// nama/harga. Food yang tidak ada / tidak tersedia diabaikan.
func (s *CartService) Add(ctx context.Context, sessionID string, foodID uint, quantity int) (*models.Cart, error) {
	cart := s.Get(ctx, sessionID)
	if quantity <= 0 {
		return cart, nil
	}

	food, err := s.catalog.FindOrderableFood(ctx, foodID)
	if err != nil {
		utils.ErrorLogger.WithField("food_id", foodID).Errorf("catalog lookup: %v", err)
		return cart, nil
	}
	if food == nil {
		cartLog(sessionID).WithField("food_id", foodID).Warn("add to cart ignored: food missing or unavailable")
		return cart, nil
	}

	if i := cart.Find(foodID); i >= 0 {
		cart.Lines[i].Quantity += quantity
	} else {
		cart.Lines = append(cart.Lines, models.CartLine{
			FoodID:    food.ID,
			Name:      food.Name,
			UnitPrice: food.Price,
			Quantity:  quantity,
			ImageUrl:  food.ImageUrl,
		})
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return cart, err
	}
	return cart, nil
}

// UpdateQuantity: quantity <= 0 menghapus baris, food yang tidak ada di cart diabaikan
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, foodID uint, quantity int) (*models.Cart, error) {
	cart := s.Get(ctx, sessionID)
	i := cart.Find(foodID)
	if i < 0 {
		return cart, nil
	}

	if quantity <= 0 {
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	} else {
		cart.Lines[i].Quantity = quantity
	}
	return cart, s.persist(ctx, cart)
}

func (s *CartService) Remove(ctx context.Context, sessionID string, foodID uint) (*models.Cart, error) {
	cart := s.Get(ctx, sessionID)
	i := cart.Find(foodID)
	if i < 0 {
		return cart, nil
	}
	cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	return cart, s.persist(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}

// persist menghapus key jika cart kosong supaya tidak ada sisa di Redis
func (s *CartService) persist(ctx context.Context, cart *models.Cart) error {
	if cart.IsEmpty() {
		return s.repo.Delete(ctx, cart.SessionID)
	}
	return s.repo.Save(ctx, cart)
}
