package auth

import (
	"context"
	"slices"
)

const RoleAdministrator = "Administrator"

// Principal is the authenticated caller. Services receive it as an explicit argument.
type Principal struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

func (p Principal) IsAuthenticated() bool {
	return p.UserID != ""
}

type principalCtxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the principal the auth middleware attached to the request.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok && p.IsAuthenticated()
}
