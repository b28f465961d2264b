package details

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

const detailListPath = "/gymstats/details"

type Handler struct {
	service   *Service
	responder guard.Responder
}

func NewHandler(service *Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service: service,
		responder: guard.Responder{
			Entity:  "detail",
			Metrics: metricsManager,
		},
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc(guard.SessionListPath+"/{id:[0-9]+}/details", handler.HandleList).Methods("GET", "OPTIONS").Name("list-details")
	r.HandleFunc(detailListPath+"/{id:[0-9]+}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-detail")
	r.HandleFunc(detailListPath, handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-detail")
	r.HandleFunc(detailListPath+"/{id:[0-9]+}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-detail")
	r.HandleFunc(detailListPath+"/{id:[0-9]+}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-detail")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.details.list")
	defer span.End()

	sessionID, err := guard.PathID(r, "id")
	if err != nil {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return
	}

	principal, _ := auth.PrincipalFromContext(ctx)
	views, err := handler.service.List(ctx, principal, sessionID)
	if err != nil {
		handler.responder.Error(w, err, nil)
		return
	}
	pkg.WriteJSON(w, views, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.details.get")
	defer span.End()

	id, err := guard.PathID(r, "id")
	if err != nil {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return
	}

	principal, _ := auth.PrincipalFromContext(ctx)
	view, err := handler.service.Get(ctx, principal, id)
	if err != nil {
		handler.responder.Error(w, err, nil)
		return
	}
	pkg.WriteJSON(w, view, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.details.create")
	defer span.End()

	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	principal, _ := auth.PrincipalFromContext(ctx)
	detail, err := handler.service.Create(ctx, principal, in)
	if err != nil {
		handler.responder.Error(w, err, in)
		return
	}
	handler.responder.Created(w, detail, guard.SessionPath(detail.TrainingSessionID))
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.details.update")
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
	detail, err := handler.service.Update(ctx, principal, id, in)
	if err != nil {
		handler.responder.Error(w, err, in)
		return
	}
	handler.responder.Updated(w, detail, guard.SessionPath(detail.TrainingSessionID))
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.details.delete")
	defer span.End()

	id, err := guard.PathID(r, "id")
	if err != nil {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return
	}

	principal, _ := auth.PrincipalFromContext(ctx)
	target, err := handler.service.Delete(ctx, principal, id)
	if err != nil {
		handler.responder.Error(w, err, nil)
		return
	}
	handler.responder.Redirect(w, target)
}

func decodeInput(w http.ResponseWriter, r *http.Request) (DetailInput, bool) {
	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return DetailInput{}, false
	}

	var in DetailInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Errorf("detail input, unmarshal json: %s", err)
		http.Error(w, "invalid detail payload", http.StatusBadRequest)
		return DetailInput{}, false
	}
	return in, true
}
