package stats

import (
	"net/http"

	"github.com/2beens/befit/internal/auth"
	"github.com/2beens/befit/internal/gymstats/guard"
	"github.com/2beens/befit/internal/telemetry/metrics"
	"github.com/2beens/befit/internal/telemetry/tracing"
	"github.com/2beens/befit/pkg"

	"github.com/gorilla/mux"
)

type Handler struct {
	service   *Service
	responder guard.Responder
}

func NewHandler(service *Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service: service,
		responder: guard.Responder{
			Entity:  "statistics",
			Metrics: metricsManager,
		},
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/gymstats/stats", handler.HandleUserStatistics).Methods("GET", "OPTIONS").Name("user-statistics")
}

func (handler *Handler) HandleUserStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.stats.user")
	defer span.End()

	principal, _ := auth.PrincipalFromContext(ctx)
	report, err := handler.service.UserStatistics(ctx, principal)
	if err != nil {
		handler.responder.Error(w, err, nil)
		return
	}
	pkg.WriteJSON(w, report, http.StatusOK)
}
