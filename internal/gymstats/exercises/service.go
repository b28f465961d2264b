package exercises

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/befit/internal/auth"
	"github.com/2beens/befit/internal/gymstats/guard"
	"github.com/2beens/befit/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=exercises

type exercisesRepo interface {
	List(ctx context.Context) (_ []Exercise, err error)
	Lookup(ctx context.Context) (_ []LookupItem, err error)
	Get(ctx context.Context, id int) (_ Exercise, err error)
	Exists(ctx context.Context, id int) (_ bool, err error)
	Add(ctx context.Context, ex Exercise) (_ Exercise, err error)
	Update(ctx context.Context, ex Exercise) (_ Exercise, err error)
	Delete(ctx context.Context, id int) (err error)
}

// Service manages the exercise catalog. Reads are public, writes need the Administrator role.
type Service struct {
	repo        exercisesRepo
	lookupCache *LookupCache
}

func NewService(repo exercisesRepo, lookupCache *LookupCache) *Service {
	return &Service{
		repo:        repo,
		lookupCache: lookupCache,
	}
}

func (s *Service) List(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	ex, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrExerciseNotFound) {
		return Exercise{}, fmt.Errorf("%w: exercise %d", guard.ErrNotFound, id)
	}
	return ex, err
}

// Lookup returns the id/name pairs sorted by name, from cache when possible.
func (s *Service) Lookup(ctx context.Context) (_ []LookupItem, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.exercises.lookup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if items, ok := s.lookupCache.Get(); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return items, nil
	}

	items, err := s.repo.Lookup(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.lookupCache.Set(items); err != nil {
		log.Warnf("exercise lookup not cached: %s", err)
	}

	return items, nil
}

// Exists reports whether id is part of the current lookup list.
func (s *Service) Exists(ctx context.Context, id int) (bool, error) {
	items, err := s.Lookup(ctx)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) Create(ctx context.Context, principal auth.Principal, in ExerciseInput) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.exercises.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := guard.RequireRole(principal, auth.RoleAdministrator); err != nil {
		return Exercise{}, err
	}
	if ve := guard.Validate(in); ve != nil {
		return Exercise{}, ve
	}

	ex, err := s.repo.Add(ctx, in.toExercise())
	if err != nil {
		return Exercise{}, err
	}
	s.lookupCache.Invalidate()

	log.Debugf("exercise %d [%s] added by %s", ex.ID, ex.Name, principal.Username)
	return ex, nil
}

func (s *Service) Update(ctx context.Context, principal auth.Principal, routeID int, in ExerciseInput) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", routeID))

	if err := guard.RequireRole(principal, auth.RoleAdministrator); err != nil {
		return Exercise{}, err
	}
	if routeID != in.ID {
		return Exercise{}, fmt.Errorf("%w: route id %d, payload id %d", guard.ErrNotFound, routeID, in.ID)
	}
	if ve := guard.Merge(guard.Validate(in), guard.RequireVersion(in.Version)); ve != nil {
		return Exercise{}, ve
	}

	ex, err := s.repo.Update(ctx, in.toExercise())
	if errors.Is(err, ErrStaleVersion) {
		return Exercise{}, guard.ResolveConflict(ctx, func(ctx context.Context) (bool, error) {
			return s.repo.Exists(ctx, in.ID)
		}, err)
	}
	if err != nil {
		return Exercise{}, err
	}
	s.lookupCache.Invalidate()

	return ex, nil
}

func (s *Service) Delete(ctx context.Context, principal auth.Principal, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	if err := guard.RequireRole(principal, auth.RoleAdministrator); err != nil {
		return err
	}

	err = s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, ErrExerciseNotFound):
		return fmt.Errorf("%w: exercise %d", guard.ErrNotFound, id)
	case errors.Is(err, ErrExerciseInUse):
		return fmt.Errorf("%w: %w", guard.ErrHasDependents, err)
	case err != nil:
		return err
	}
	s.lookupCache.Invalidate()

	return nil
}
