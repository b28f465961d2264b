package auth

import "context"

// TokenHeader carries the login session token on every authenticated request.
const TokenHeader = "X-BEFIT-TOKEN"

var _ Checker = (*LoginChecker)(nil)

type Checker interface {
	LoggedPrincipal(ctx context.Context, token string) (_ Principal, logged bool, err error)
}
