package stats

import (
	"context"
	"time"

	"github.com/2beens/befit/internal/auth"
	"github.com/2beens/befit/internal/gymstats/guard"
	"github.com/2beens/befit/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

const (
	Window        = 28 * 24 * time.Hour
	NoDataMessage = "no training data in the last 4 weeks to generate statistics"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=stats

type entriesRepo interface {
	EntriesSince(ctx context.Context, userID string, since time.Time) (_ []Entry, err error)
}

type Report struct {
	WindowStart time.Time            `json:"windowStart"`
	Statistics  []ExerciseStatistics `json:"statistics"`
	Message     string               `json:"message,omitempty"`
}

type Service struct {
	repo entriesRepo
	now  func() time.Time
}

func NewService(repo entriesRepo) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// UserStatistics summarizes the principal's training of the last four weeks.
func (s *Service) UserStatistics(ctx context.Context, principal auth.Principal) (_ Report, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.gymstats.stats.user")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := guard.RequireAuthenticated(principal); err != nil {
		return Report{}, err
	}

	windowStart := s.now().UTC().Add(-Window)
	entries, err := s.repo.EntriesSince(ctx, principal.UserID, windowStart)
	if err != nil {
		return Report{}, err
	}
	span.SetAttributes(attribute.Int("entries", len(entries)))

	report := Report{
		WindowStart: windowStart,
		Statistics:  Aggregate(entries),
	}
	if len(entries) == 0 {
		report.Message = NoDataMessage
	}

	return report, nil
}
