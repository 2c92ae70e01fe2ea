package dummydb

import (
	"sync"
	"time"

	"github.com/masolab/soko/core/user"
)

// tokenRepository keeps revoked token IDs in memory. Expired entries are
// pruned opportunistically on writes.
type tokenRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

var _ user.TokenRepository = (*tokenRepository)(nil) // interface compliance check

func NewTokenRepository() user.TokenRepository {
	return &tokenRepository{revoked: make(map[string]time.Time)}
}

func (repo *tokenRepository) RevokeToken(jti string, expiresAt time.Time) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	now := time.Now()
	for id, exp := range repo.revoked {
		if exp.Before(now) {
			delete(repo.revoked, id)
		}
	}

	if exp, ok := repo.revoked[jti]; ok && exp.After(now) {
		return user.ErrTokenRevoked
	}
	repo.revoked[jti] = expiresAt
	return nil
}

func (repo *tokenRepository) IsTokenRevoked(jti string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	exp, ok := repo.revoked[jti]
	if !ok {
		return false, nil
	}
	if exp.Before(time.Now()) {
		delete(repo.revoked, jti)
		return false, nil
	}
	return true, nil
}
