package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpRateLimitPrefix = "otp_rate_limit:"

// OTPLimiter caps how many verification emails one address can trigger.
type OTPLimiter interface {
	Allow(ctx context.Context, email string) error
}

type redisOTPLimiter struct {
	rdb     *redis.Client
	perHour int
}

func NewRedisOTPLimiter(rdb *redis.Client, perHour int) OTPLimiter {
	return &redisOTPLimiter{rdb: rdb, perHour: perHour}
}

func (l *redisOTPLimiter) Allow(ctx context.Context, email string) error {
	key := otpRateLimitPrefix + email
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("otp rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, time.Hour).Err(); err != nil {
			return fmt.Errorf("otp rate limit expire: %w", err)
		}
	}
	if count > int64(l.perHour) {
		l.rdb.Decr(ctx, key)
		return ErrOTPRateLimited
	}
	return nil
}
