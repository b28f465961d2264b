package auth

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "befit-session||"
	tokensSetKey     = "befit-sessions"
)

// loginSession is the redis value stored under sessionKeyPrefix + token.
type loginSession struct {
	Principal
	CreatedAt int64 `json:"createdAt"`
}

func (s loginSession) expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(time.Unix(s.CreatedAt, 0)) > ttl
}

func encodeSession(p Principal, createdAt time.Time) (string, error) {
	raw, err := json.Marshal(loginSession{Principal: p, CreatedAt: createdAt.Unix()})
	if err != nil {
		return "", fmt.Errorf("marshal login session: %w", err)
	}
	return string(raw), nil
}

func decodeSession(raw string) (loginSession, error) {
	var s loginSession
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return loginSession{}, fmt.Errorf("unmarshal login session: %w", err)
	}
	return s, nil
}
