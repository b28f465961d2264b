package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// LoggedPrincipal resolves a login token. Unknown and expired tokens are not an error.
func (c *LoginChecker) LoggedPrincipal(ctx context.Context, token string) (_ Principal, logged bool, err error) {
	raw, err := c.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return Principal{}, false, nil
	}
	if err != nil {
		return Principal{}, false, err
	}

	session, err := decodeSession(raw)
	if err != nil {
		return Principal{}, false, err
	}

	if session.expired(c.ttl, time.Now()) || !session.IsAuthenticated() {
		return Principal{}, false, nil
	}

	return session.Principal, true, nil
}
