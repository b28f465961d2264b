package guard

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/2beens/befit/internal/telemetry/metrics"
	"github.com/2beens/befit/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// redirect targets
const (
	ExerciseListPath = "/gymstats/exercises"
	SessionListPath  = "/gymstats/sessions"
)

func SessionPath(sessionID int) string {
	return fmt.Sprintf("%s/%d", SessionListPath, sessionID)
}

func ExercisePath(exerciseID int) string {
	return fmt.Sprintf("%s/%d", ExerciseListPath, exerciseID)
}

// StatusCode maps a service error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrHasDependents):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type validationResponse struct {
	Errors map[string]string `json:"errors"`
	Input  any               `json:"input,omitempty"`
}

// Responder writes service outcomes for one entity kind.
type Responder struct {
	Entity  string
	Metrics *metrics.Manager
}

// Error writes err as a response. Validation failures echo the rejected input back.
func (rs Responder) Error(w http.ResponseWriter, err error, input any) {
	status := StatusCode(err)
	switch status {
	case http.StatusUnprocessableEntity:
		var ve *ValidationError
		errors.As(err, &ve)
		pkg.WriteJSON(w, validationResponse{Errors: ve.Fields, Input: input}, status)
	case http.StatusForbidden:
		if rs.Metrics != nil {
			rs.Metrics.CounterAccessDenied.WithLabelValues(rs.Entity).Inc()
		}
		log.Debugf("[%s] access denied: %s", rs.Entity, err)
		http.Error(w, "forbidden", status)
	case http.StatusUnauthorized:
		http.Error(w, "no can do", status)
	case http.StatusNotFound:
		http.Error(w, rs.Entity+" not found", status)
	case http.StatusConflict:
		http.Error(w, err.Error(), status)
	default:
		log.Errorf("[%s] request failed: %s", rs.Entity, err)
		http.Error(w, "internal error", status)
	}
}

// Created writes a 201 with the body and points Location at the redirect target.
func (rs Responder) Created(w http.ResponseWriter, body any, location string) {
	w.Header().Set("Location", location)
	pkg.WriteJSON(w, body, http.StatusCreated)
}

// Updated writes a 200 with the body and points Location at the redirect target.
func (rs Responder) Updated(w http.ResponseWriter, body any, location string) {
	w.Header().Set("Location", location)
	pkg.WriteJSON(w, body, http.StatusOK)
}

// Redirect answers with 303 See Other to target.
func (rs Responder) Redirect(w http.ResponseWriter, target string) {
	w.Header().Set("Location", target)
	w.WriteHeader(http.StatusSeeOther)
}

// PathID reads a numeric route variable.
func PathID(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	if raw == "" {
		return 0, fmt.Errorf("%s empty", name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s not a number: %w", name, err)
	}
	return id, nil
}
