package exercises

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
			Entity:  "exercise",
			Metrics: metricsManager,
		},
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc(guard.ExerciseListPath, handler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc(guard.ExerciseListPath+"/lookup", handler.HandleLookup).Methods("GET", "OPTIONS").Name("lookup-exercises")
	r.HandleFunc(guard.ExerciseListPath+"/{id:[0-9]+}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	r.HandleFunc(guard.ExerciseListPath, handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc(guard.ExerciseListPath+"/{id:[0-9]+}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-exercise")
	r.HandleFunc(guard.ExerciseListPath+"/{id:[0-9]+}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.exercises.list")
	defer span.End()

	exercises, err := handler.service.List(ctx)
	if err != nil {
		handler.responder.Error(w, err, nil)
		return
	}
	pkg.WriteJSON(w, exercises, http.StatusOK)
}

func (handler *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.exercises.lookup")
	defer span.End()

	items, err := handler.service.Lookup(ctx)
	if err != nil {
		handler.responder.Error(w, err, nil)
		return
	}
	pkg.WriteJSON(w, items, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.exercises.get")
	defer span.End()

	id, err := guard.PathID(r, "id")
	if err != nil {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return
	}

	ex, err := handler.service.Get(ctx, id)
	if err != nil {
		handler.responder.Error(w, err, nil)
		return
	}
	pkg.WriteJSON(w, ex, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.exercises.create")
	defer span.End()

	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	principal, _ := auth.PrincipalFromContext(ctx)
	ex, err := handler.service.Create(ctx, principal, in)
	if err != nil {
		handler.responder.Error(w, err, in)
		return
	}
	handler.responder.Created(w, ex, guard.ExerciseListPath)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.exercises.update")
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
	ex, err := handler.service.Update(ctx, principal, id, in)
	if err != nil {
		handler.responder.Error(w, err, in)
		return
	}
	handler.responder.Updated(w, ex, guard.ExerciseListPath)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.exercises.delete")
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
	handler.responder.Redirect(w, guard.ExerciseListPath)
}

func decodeInput(w http.ResponseWriter, r *http.Request) (ExerciseInput, bool) {
	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return ExerciseInput{}, false
	}

	var in ExerciseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Errorf("exercise input, unmarshal json: %s", err)
		http.Error(w, "invalid exercise payload", http.StatusBadRequest)
		return ExerciseInput{}, false
	}
	return in, true
}
