package utils

import (
	"Samagra/cache"
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// ResetCodeExpiry is how long a password reset code stays valid.
const ResetCodeExpiry = 15 * time.Minute

// GenerateResetCode generates a random 6-digit reset code.
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ResetCodeStore keeps pending reset codes in Redis, keyed by email.
type ResetCodeStore struct {
	cache *cache.Cache
}

func NewResetCodeStore(cache *cache.Cache) *ResetCodeStore {
	return &ResetCodeStore{cache: cache}
}

func (s *ResetCodeStore) Set(ctx context.Context, email, code string) error {
	return s.cache.Set(ctx, resetCodeKey(email), code, ResetCodeExpiry)
}

// Get returns "" when no code is pending.
func (s *ResetCodeStore) Get(ctx context.Context, email string) (string, error) {
	return s.cache.Get(ctx, resetCodeKey(email))
}

func (s *ResetCodeStore) Delete(ctx context.Context, email string) error {
	return s.cache.Delete(ctx, resetCodeKey(email))
}

func resetCodeKey(email string) string {
	return "reset_code:" + email
}
