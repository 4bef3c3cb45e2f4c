package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/food-ordering-app/models"
)

// CartRepository menyimpan cart per session sebagai JSON di Redis.
// TTL diperpanjang setiap kali cart ditulis.
type CartRepository struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{Client: client, TTL: ttl}
}

func (r *CartRepository) Key(sessionID string) string {
	return fmt.Sprintf("foodorder:cart:%s", sessionID)
}

// Load returns nil when the session has no cart.
func (r *CartRepository) Load(ctx context.Context, sessionID string) (*models.Cart, error) {
	raw, err := r.Client.Get(ctx, r.Key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	cart.SessionID = sessionID
	return &cart, nil
}

func (r *CartRepository) Save(ctx context.Context, cart *models.Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, r.Key(cart.SessionID), payload, r.TTL).Err()
}

func (r *CartRepository) Delete(ctx context.Context, sessionID string) error {
	return r.Client.Del(ctx, r.Key(sessionID)).Err()
}
