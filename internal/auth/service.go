package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/befit/internal/telemetry/tracing"
	"github.com/2beens/befit/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var ErrWrongPassword = errors.New("wrong credentials")

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth

type usersRepo interface {
	GetByUsername(ctx context.Context, username string) (_ User, err error)
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Service struct {
	users       usersRepo
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(
	users usersRepo,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		users:          users,
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// Login checks the credentials and opens a session for the user, returning its token.
func (as *Service) Login(ctx context.Context, creds Credentials, createdAt time.Time) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("username", creds.Username))

	user, err := as.users.GetByUsername(ctx, creds.Username)
	if errors.Is(err, ErrUserNotFound) {
		return "", ErrWrongPassword
	}
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	if !pkg.CheckPasswordHash(creds.Password, user.PasswordHash) {
		return "", ErrWrongPassword
	}

	token, err := as.RandStringFunc(35)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	session, err := encodeSession(user.Principal(), createdAt)
	if err != nil {
		return "", err
	}

	if err := as.redisClient.Set(ctx, sessionKeyPrefix+token, session, 0).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	// add token to list of sessions
	if err := as.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", fmt.Errorf("register session token: %w", err)
	}

	return token, nil
}

// Logout removes the session; the bool reports whether it existed.
func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	deleted, err := as.redisClient.Del(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}

	// remove token from the list of sessions
	if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, err
	}

	return deleted > 0, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (as *Service) ScanAndClean(ctx context.Context) {
	sessionTokens, err := as.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionTokens) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	now := time.Now()
	var toRemove []string
	for _, token := range sessionTokens {
		raw, err := as.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
		if errors.Is(err, redis.Nil) {
			// session key already gone, only the set entry is left
			toRemove = append(toRemove, token)
			continue
		}
		if err != nil {
			log.Errorf("auth service, scan and clean token %s: %s", token, err)
			continue
		}

		session, err := decodeSession(raw)
		if err != nil {
			log.Errorf("auth service, scan and clean token %s: %s", token, err)
			toRemove = append(toRemove, token)
			continue
		}

		if session.expired(as.ttl, now) {
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if _, err := as.Logout(ctx, token); err != nil {
			log.Errorf("auth service, clean token %s: %s", token, err)
		}
	}
	log.Debugf("auth service, scan and clean done, removed %d sessions", len(toRemove))
}
