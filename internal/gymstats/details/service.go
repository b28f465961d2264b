package details

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/befit/internal/auth"
	"github.com/2beens/befit/internal/gymstats/guard"
	"github.com/2beens/befit/internal/gymstats/sessions"
	"github.com/2beens/befit/internal/telemetry/metrics"
	"github.com/2beens/befit/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=details

type detailsRepo interface {
	ListBySession(ctx context.Context, sessionID int) (_ []DetailView, err error)
	Get(ctx context.Context, id int) (_ DetailView, err error)
	ExistsOwned(ctx context.Context, id int, userID string) (_ bool, err error)
	Add(ctx context.Context, d TrainingDetail) (_ TrainingDetail, err error)
	Update(ctx context.Context, d TrainingDetail) (_ TrainingDetail, err error)
	Delete(ctx context.Context, id int) (err error)
}

type sessionsRepo interface {
	Get(ctx context.Context, id int) (_ sessions.TrainingSession, err error)
}

type exerciseCatalog interface {
	Exists(ctx context.Context, id int) (bool, error)
}

// Service manages training details. A detail belongs to whoever owns its parent session.
type Service struct {
	repo           detailsRepo
	sessions       sessionsRepo
	exercises      exerciseCatalog
	metricsManager *metrics.Manager
}

func NewService(
	repo detailsRepo,
	sessions sessionsRepo,
	exercises exerciseCatalog,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		repo:           repo,
		sessions:       sessions,
		exercises:      exercises,
		metricsManager: metricsManager,
	}
}

func (s *Service) List(ctx context.Context, principal auth.Principal, sessionID int) (_ []DetailView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.details.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", sessionID))

	if err := guard.RequireAuthenticated(principal); err != nil {
		return nil, err
	}
	if err := s.requireSessionOwner(ctx, principal, sessionID); err != nil {
		return nil, err
	}

	return s.repo.ListBySession(ctx, sessionID)
}

func (s *Service) Get(ctx context.Context, principal auth.Principal, id int) (_ DetailView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.details.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	if err := guard.RequireAuthenticated(principal); err != nil {
		return DetailView{}, err
	}
	return s.owned(ctx, principal, id)
}

func (s *Service) Create(ctx context.Context, principal auth.Principal, in DetailInput) (_ TrainingDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.details.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := guard.RequireAuthenticated(principal); err != nil {
		return TrainingDetail{}, err
	}
	if err := s.requireSessionOwner(ctx, principal, in.TrainingSessionID); err != nil {
		return TrainingDetail{}, err
	}
	if err := s.validate(ctx, in, nil); err != nil {
		return TrainingDetail{}, err
	}

	detail, err := s.repo.Add(ctx, in.toDetail())
	if err != nil {
		return TrainingDetail{}, referenceError(in, err)
	}
	s.metricsManager.CounterDetailsCreated.Inc()

	log.Debugf("training detail %d added to session %d", detail.ID, detail.TrainingSessionID)
	return detail, nil
}

func (s *Service) Update(ctx context.Context, principal auth.Principal, routeID int, in DetailInput) (_ TrainingDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.details.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", routeID))

	if err := guard.RequireAuthenticated(principal); err != nil {
		return TrainingDetail{}, err
	}
	if routeID != in.ID {
		return TrainingDetail{}, fmt.Errorf("%w: route id %d, payload id %d", guard.ErrNotFound, routeID, in.ID)
	}

	original, err := s.owned(ctx, principal, in.ID)
	if err != nil {
		return TrainingDetail{}, err
	}
	if in.TrainingSessionID != original.TrainingSessionID {
		if err := s.requireSessionOwner(ctx, principal, in.TrainingSessionID); err != nil {
			return TrainingDetail{}, err
		}
	}
	if err := s.validate(ctx, in, guard.RequireVersion(in.Version)); err != nil {
		return TrainingDetail{}, err
	}

	detail, err := s.repo.Update(ctx, in.toDetail())
	if errors.Is(err, ErrStaleVersion) {
		return TrainingDetail{}, guard.ResolveConflict(ctx, func(ctx context.Context) (bool, error) {
			return s.repo.ExistsOwned(ctx, in.ID, principal.UserID)
		}, err)
	}
	if err != nil {
		return TrainingDetail{}, referenceError(in, err)
	}

	return detail, nil
}

// Delete removes an owned detail and returns where the client should go next:
// the parent session, or the session list when the detail is already gone.
func (s *Service) Delete(ctx context.Context, principal auth.Principal, id int) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.details.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	if err := guard.RequireAuthenticated(principal); err != nil {
		return "", err
	}

	view, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrDetailNotFound) {
		return guard.SessionListPath, nil
	}
	if err != nil {
		return "", err
	}
	if err := guard.RequireOwner(principal, view.OwnerID); err != nil {
		return "", fmt.Errorf("detail %d: %w", id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrDetailNotFound) {
			return guard.SessionListPath, nil
		}
		return "", err
	}

	return guard.SessionPath(view.TrainingSessionID), nil
}

func (s *Service) owned(ctx context.Context, principal auth.Principal, id int) (DetailView, error) {
	view, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrDetailNotFound) {
		return DetailView{}, fmt.Errorf("%w: detail %d", guard.ErrNotFound, id)
	}
	if err != nil {
		return DetailView{}, err
	}
	if err := guard.RequireOwner(principal, view.OwnerID); err != nil {
		return DetailView{}, fmt.Errorf("detail %d: %w", id, err)
	}
	return view, nil
}

// requireSessionOwner treats a missing session like a foreign one.
func (s *Service) requireSessionOwner(ctx context.Context, principal auth.Principal, sessionID int) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, sessions.ErrSessionNotFound) {
		return fmt.Errorf("%w: session %d not found", guard.ErrForbidden, sessionID)
	}
	if err != nil {
		return err
	}
	if err := guard.RequireOwner(principal, session.UserID); err != nil {
		return fmt.Errorf("session %d: %w", sessionID, err)
	}
	return nil
}

func (s *Service) validate(ctx context.Context, in DetailInput, extra *guard.ValidationError) error {
	ve := guard.Merge(in.validate(), extra)
	if in.ExerciseID != 0 {
		exists, err := s.exercises.Exists(ctx, in.ExerciseID)
		if err != nil {
			return fmt.Errorf("exercise lookup: %w", err)
		}
		if !exists {
			ve = guard.Merge(ve, guard.NewValidationError("exerciseId", "unknown exercise"))
		}
	}
	if ve != nil {
		return ve
	}
	return nil
}

// referenceError translates a parent row that vanished after the checks above.
func referenceError(in DetailInput, err error) error {
	switch {
	case errors.Is(err, ErrMissingExercise):
		return guard.NewValidationError("exerciseId", "unknown exercise")
	case errors.Is(err, ErrMissingSession):
		return fmt.Errorf("%w: session %d not found", guard.ErrForbidden, in.TrainingSessionID)
	}
	return err
}
