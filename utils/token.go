package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist menyimpan token yang sudah logout di Redis sampai kadaluarsa
type TokenBlacklist struct {
	Client *redis.Client
}

func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{Client: client}
}

func (b *TokenBlacklist) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "foodorder:blacklist:" + hex.EncodeToString(sum[:])
}

func (b *TokenBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.Client.Set(ctx, b.key(token), "1", ttl).Err()
}

func (b *TokenBlacklist) Contains(ctx context.Context, token string) bool {
	n, err := b.Client.Exists(ctx, b.key(token)).Result()
	if err != nil {
		ErrorLogger.Printf("blacklist lookup failed: %v", err)
		return false
	}
	return n > 0
}
