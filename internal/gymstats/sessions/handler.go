package sessions

import (
	"encoding/json"
	"net/http"

	"github.com/2beens/befit/internal/auth"
	"github.com/2beens/befit/internal/gymstats/guard"
	"github.com/2beens/befit/internal/telemetry/metrics"
	"github.com/2beens/befit/internal/telemetry/tracing"
	"github.com/2beens/befit/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service   *Service
	responder guard.Responder
}

func NewHandler(service *Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service: service,
		responder: guard.Responder{
			Entity:  "session",
			Metrics: metricsManager,
		},
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc(guard.SessionListPath, handler.HandleList).Methods("GET", "OPTIONS").Name("list-sessions")
	r.HandleFunc(guard.SessionListPath+"/{id:[0-9]+}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-session")
	r.HandleFunc(guard.SessionListPath, handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-session")
	r.HandleFunc(guard.SessionListPath+"/{id:[0-9]+}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-session")
	r.HandleFunc(guard.SessionListPath+"/{id:[0-9]+}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-session")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.sessions.list")
	defer span.End()

	principal, _ := auth.PrincipalFromContext(ctx)
	sessions, err := handler.service.List(ctx, principal)
	if err != nil {
		handler.responder.Error(w, err, nil)
		return
	}
	pkg.WriteJSON(w, sessions, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.sessions.get")
	defer span.End()

	id, err := guard.PathID(r, "id")
	if err != nil {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return
	}

	principal, _ := auth.PrincipalFromContext(ctx)
	session, err := handler.service.Get(ctx, principal, id)
	if err != nil {
		handler.responder.Error(w, err, nil)
		return
	}
	pkg.WriteJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.sessions.create")
	defer span.End()

	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	principal, _ := auth.PrincipalFromContext(ctx)
	session, err := handler.service.Create(ctx, principal, in)
	if err != nil {
		handler.responder.Error(w, err, in)
		return
	}
	handler.responder.Created(w, session, guard.SessionListPath)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.sessions.update")
	defer span.End()

	id, err := guard.PathID(r, "id")
	if err != nil {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return
	}
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	principal, _ := auth.PrincipalFromContext(ctx)
	session, err := handler.service.Update(ctx, principal, id, in)
	if err != nil {
		handler.responder.Error(w, err, in)
		return
	}
	handler.responder.Updated(w, session, guard.SessionListPath)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.sessions.delete")
	defer span.End()

	id, err := guard.PathID(r, "id")
	if err != nil {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return
	}

	principal, _ := auth.PrincipalFromContext(ctx)
	if err := handler.service.Delete(ctx, principal, id); err != nil {
		handler.responder.Error(w, err, nil)
		return
	}
	handler.responder.Redirect(w, guard.SessionListPath)
}

func decodeInput(w http.ResponseWriter, r *http.Request) (SessionInput, bool) {
	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return SessionInput{}, false
	}

	var in SessionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Errorf("session input, unmarshal json: %s", err)
		http.Error(w, "invalid session payload", http.StatusBadRequest)
		return SessionInput{}, false
	}
	return in, true
}
