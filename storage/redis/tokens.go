// Package redisrepos keeps short-lived auth state in Redis.
package redisrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/masolab/soko/core"
	"github.com/masolab/soko/core/user"
)

const revokedTokenKeyPrefix = "revoked-token:"

func Open(conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// tokenRepository blacklists token IDs until their natural expiry;
// Redis drops each key once the token would no longer verify anyway.
type tokenRepository struct {
	client *redis.Client
}

var _ user.TokenRepository = (*tokenRepository)(nil) // interface compliance check

func NewTokenRepository(client *redis.Client) user.TokenRepository {
	return &tokenRepository{client: client}
}

func (repo *tokenRepository) RevokeToken(jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	ctx := context.Background()
	set, err := repo.client.SetNX(ctx, revokedTokenKeyPrefix+jti, 1, ttl).Result()
	if err != nil {
		return errors.Wrap(err, "revoking token")
	}
	if !set {
		return user.ErrTokenRevoked
	}
	return nil
}

func (repo *tokenRepository) IsTokenRevoked(jti string) (bool, error) {
	ctx := context.Background()
	n, err := repo.client.Exists(ctx, revokedTokenKeyPrefix+jti).Result()
	if err != nil {
		return false, errors.Wrap(err, "checking token revocation")
	}
	return n > 0, nil
}
