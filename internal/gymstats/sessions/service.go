package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/befit/internal/auth"
	"github.com/2beens/befit/internal/gymstats/guard"
	"github.com/2beens/befit/internal/telemetry/metrics"
	"github.com/2beens/befit/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=sessions

type sessionsRepo interface {
	ListByUser(ctx context.Context, userID string) (_ []TrainingSession, err error)
	Get(ctx context.Context, id int) (_ TrainingSession, err error)
	ExistsOwned(ctx context.Context, id int, userID string) (_ bool, err error)
	CountDetails(ctx context.Context, id int) (_ int, err error)
	Add(ctx context.Context, s TrainingSession) (_ TrainingSession, err error)
	Update(ctx context.Context, s TrainingSession) (_ TrainingSession, err error)
	Delete(ctx context.Context, id int, userID string) (err error)
}

// Service exposes a user's own training sessions. Other users' sessions are never visible.
type Service struct {
	repo           sessionsRepo
	metricsManager *metrics.Manager
}

func NewService(repo sessionsRepo, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (s *Service) List(ctx context.Context, principal auth.Principal) (_ []TrainingSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.sessions.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := guard.RequireAuthenticated(principal); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, principal.UserID)
}

func (s *Service) Get(ctx context.Context, principal auth.Principal, id int) (_ TrainingSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.sessions.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	if err := guard.RequireAuthenticated(principal); err != nil {
		return TrainingSession{}, err
	}
	return s.owned(ctx, principal, id)
}

func (s *Service) Create(ctx context.Context, principal auth.Principal, in SessionInput) (_ TrainingSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.sessions.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := guard.RequireAuthenticated(principal); err != nil {
		return TrainingSession{}, err
	}
	if ve := guard.Validate(in); ve != nil {
		return TrainingSession{}, ve
	}

	session, err := s.repo.Add(ctx, in.toSession(principal.UserID))
	if err != nil {
		return TrainingSession{}, err
	}
	s.metricsManager.CounterSessionsCreated.Inc()

	log.Debugf("training session %d added for %s", session.ID, principal.Username)
	return session, nil
}

func (s *Service) Update(ctx context.Context, principal auth.Principal, routeID int, in SessionInput) (_ TrainingSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.sessions.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", routeID))

	if err := guard.RequireAuthenticated(principal); err != nil {
		return TrainingSession{}, err
	}
	if routeID != in.ID {
		return TrainingSession{}, fmt.Errorf("%w: route id %d, payload id %d", guard.ErrNotFound, routeID, in.ID)
	}

	stored, err := s.owned(ctx, principal, in.ID)
	if err != nil {
		return TrainingSession{}, err
	}
	if ve := guard.Merge(guard.Validate(in), guard.RequireVersion(in.Version)); ve != nil {
		return TrainingSession{}, ve
	}

	// owner comes from the stored row, never from the caller
	session, err := s.repo.Update(ctx, in.toSession(stored.UserID))
	if errors.Is(err, ErrStaleVersion) {
		return TrainingSession{}, guard.ResolveConflict(ctx, func(ctx context.Context) (bool, error) {
			return s.repo.ExistsOwned(ctx, in.ID, principal.UserID)
		}, err)
	}
	if err != nil {
		return TrainingSession{}, err
	}

	return session, nil
}

// Delete removes an owned session without details. A missing or foreign session is a silent no-op.
func (s *Service) Delete(ctx context.Context, principal auth.Principal, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.sessions.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	if err := guard.RequireAuthenticated(principal); err != nil {
		return err
	}

	session, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if session.UserID != principal.UserID {
		log.Debugf("delete of session %d by non-owner %s ignored", id, principal.Username)
		return nil
	}

	count, err := s.repo.CountDetails(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: session %d has %d details", guard.ErrHasDependents, id, count)
	}

	err = s.repo.Delete(ctx, id, principal.UserID)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return nil
	case errors.Is(err, ErrSessionHasDetails):
		return fmt.Errorf("%w: %w", guard.ErrHasDependents, err)
	}
	return err
}

func (s *Service) owned(ctx context.Context, principal auth.Principal, id int) (TrainingSession, error) {
	session, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return TrainingSession{}, fmt.Errorf("%w: session %d", guard.ErrNotFound, id)
	}
	if err != nil {
		return TrainingSession{}, err
	}
	if err := guard.RequireOwner(principal, session.UserID); err != nil {
		return TrainingSession{}, fmt.Errorf("session %d: %w", id, err)
	}
	return session, nil
}
