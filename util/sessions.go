package util

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jagwell/jagwell/config"
	"github.com/redis/go-redis/v9"
)

func revokedTokenKey(jti string) string { return "revoked:" + jti }

func revokedBeforeKey(userID uint) string { return fmt.Sprintf("revoked_before:%d", userID) }

// RevokeToken blacklists a single token id for ttl (its remaining lifetime).
// It is a no-op without Redis or when the token has already expired.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, revokedTokenKey(jti), "1", ttl).Err()
}

// RevokeUserTokens invalidates every token of userID issued up to and
// including the second of at. The marker lives as long as the longest possible token.
func RevokeUserTokens(ctx context.Context, userID uint, at time.Time) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	return rdb.Set(ctx, revokedBeforeKey(userID), at.Unix(), TokenTTL).Err()
}

// IsRevoked reports whether the token was revoked by logout or by a
// per-user cutoff. Without Redis nothing is revoked.
func IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	rdb := config.GetRedisClient()
	if rdb == nil || claims == nil {
		return false, nil
	}
	if claims.ID != "" {
		n, err := rdb.Exists(ctx, revokedTokenKey(claims.ID)).Result()
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}

	ident, err := claims.Identity()
	if err != nil {
		return true, nil
	}
	raw, err := rdb.Get(ctx, revokedBeforeKey(ident.ID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	cutoff, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, nil
	}
	if claims.IssuedAt == nil {
		return true, nil
	}
	// iat has whole-second precision, so a token from the cutoff second may predate it.
	return claims.IssuedAt.Unix() <= cutoff, nil
}
