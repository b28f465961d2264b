package misc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/befit/internal/auth"
	"github.com/2beens/befit/internal/middleware"
	"github.com/2beens/befit/internal/telemetry/metrics"
	"github.com/2beens/befit/internal/telemetry/tracing"
	"github.com/2beens/befit/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type authenticator interface {
	Login(ctx context.Context, creds auth.Credentials, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type Handler struct {
	versionInfo    string
	authService    authenticator
	metricsManager *metrics.Manager
}

func NewHandler(
	versionInfo string,
	authService authenticator,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		versionInfo:    versionInfo,
		authService:    authService,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loginsAllowedPerMin int,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	loginSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	loginSubrouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "POST", "OPTIONS").Name("logout")

	// rate limit the /login and /logout endpoints to prevent abuse
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "login", loginsAllowedPerMin, handler.metricsManager))
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func (handler *Handler) loginOutcome(outcome string) {
	if handler.metricsManager != nil {
		handler.metricsManager.CounterLogins.WithLabelValues(outcome).Inc()
	}
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var creds auth.Credentials
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			handler.loginOutcome("bad_request")
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			handler.loginOutcome("bad_request")
			http.Error(w, "parse form error", http.StatusBadRequest)
			return
		}
		creds = auth.Credentials{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}

	if creds.Username == "" {
		handler.loginOutcome("bad_request")
		http.Error(w, "error, username empty", http.StatusBadRequest)
		return
	}
	if creds.Password == "" {
		handler.loginOutcome("bad_request")
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("username", creds.Username))

	token, err := handler.authService.Login(ctx, creds, time.Now())
	if errors.Is(err, auth.ErrWrongPassword) {
		log.Tracef("failed login attempt for user: %s", creds.Username)
		handler.loginOutcome("wrong_credentials")
		span.SetStatus(codes.Error, "wrong-credentials")
		http.Error(w, "error, wrong credentials", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("login failed for user %s: %s", creds.Username, err)
		handler.loginOutcome("error")
		span.RecordError(err)
		http.Error(w, "login error", http.StatusInternalServerError)
		return
	}

	log.Tracef("new login success: %s", creds.Username)
	handler.loginOutcome("success")
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"token": "%s"}`, token))
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken := r.Header.Get(auth.TokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("[failed logout] => %s: %s", r.URL.Path, err)
		span.RecordError(err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}
