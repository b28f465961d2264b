package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/2beens/befit/internal/auth"
	"github.com/2beens/befit/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type loginChecker interface {
	LoggedPrincipal(ctx context.Context, token string) (_ auth.Principal, logged bool, err error)
}

type AuthMiddlewareHandler struct {
	loginChecker loginChecker
	allowedPaths map[string]bool
	// GET-only public prefixes
	publicReadPrefixes []string
}

func NewAuthMiddlewareHandler(loginChecker loginChecker) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		loginChecker: loginChecker,
		allowedPaths: map[string]bool{
			"/":        true,
			"/version": true,
			"/a/login": true,
		},
		publicReadPrefixes: []string{
			"/gymstats/exercises",
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(r *http.Request) bool {
	if h.allowedPaths[r.URL.Path] {
		return true
	}
	if r.Method != http.MethodGet {
		return false
	}
	for _, prefix := range h.publicReadPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// AuthCheck attaches the logged in principal to the request context.
// Requests to non-public paths without a valid session are rejected.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			// a non-standard req. header is set, and thus - browser makes a preflight/OPTIONS request:
			//	https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS#preflighted_requests
			if authToken := r.Header.Get(auth.TokenHeader); authToken != "" {
				principal, logged, err := h.loginChecker.LoggedPrincipal(ctx, authToken)
				if err != nil {
					log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
					http.Error(w, "no can do", http.StatusUnauthorized)
					span.SetStatus(codes.Error, "check-logged-err")
					span.RecordError(err)
					return
				}
				if logged {
					span.SetStatus(codes.Ok, "ok")
					next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
					return
				}
			}

			if h.pathIsAlwaysAllowed(r) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			log.Tracef("[missing or invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
			http.Error(w, "no can do", http.StatusUnauthorized)
			span.SetStatus(codes.Error, "unauthorized")
		})
	}
}
