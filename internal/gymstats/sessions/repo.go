package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/befit/internal/telemetry/tracing"
	"github.com/2beens/befit/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrSessionNotFound   = errors.New("training session not found")
	ErrSessionHasDetails = errors.New("training session still has details")
	ErrStaleVersion      = errors.New("training session version is stale")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) ListByUser(ctx context.Context, userID string) (_ []TrainingSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.sessions.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, start_time, end_time, user_id, version
			FROM training_session
			WHERE user_id = $1
			ORDER BY start_time DESC, id DESC
		`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sessions [query]: %w", err)
	}
	defer rows.Close()

	sessions := []TrainingSession{}
	for rows.Next() {
		var s TrainingSession
		if err := rows.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.UserID, &s.Version); err != nil {
			return nil, fmt.Errorf("sessions [rows scan]: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int) (_ TrainingSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.sessions.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var s TrainingSession
	err = r.db.QueryRow(
		ctx,
		`
			SELECT id, start_time, end_time, user_id, version
			FROM training_session
			WHERE id = $1
		`,
		id,
	).Scan(&s.ID, &s.StartTime, &s.EndTime, &s.UserID, &s.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return TrainingSession{}, ErrSessionNotFound
	}
	if err != nil {
		return TrainingSession{}, fmt.Errorf("session [query row]: %w", err)
	}

	return s, nil
}

// ExistsOwned reports whether session id exists and belongs to userID.
func (r *Repo) ExistsOwned(ctx context.Context, id int, userID string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.sessions.existsowned")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var exists bool
	err = r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM training_session WHERE id = $1 AND user_id = $2)`,
		id, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("session exists [query row]: %w", err)
	}
	return exists, nil
}

func (r *Repo) CountDetails(ctx context.Context, id int) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.sessions.countdetails")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM training_detail WHERE training_session_id = $1`,
		id,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count details [query row]: %w", err)
	}
	return count, nil
}

func (r *Repo) Add(ctx context.Context, s TrainingSession) (_ TrainingSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.sessions.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO training_session (start_time, end_time, user_id)
			VALUES ($1, $2, $3)
			RETURNING id, version
		`,
		s.StartTime, s.EndTime, s.UserID,
	).Scan(&s.ID, &s.Version)
	if err != nil {
		return TrainingSession{}, fmt.Errorf("add session [query row]: %w", err)
	}

	return s, nil
}

// Update writes the times of s if the stored row still has s.Version and is owned by s.UserID.
func (r *Repo) Update(ctx context.Context, s TrainingSession) (_ TrainingSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.sessions.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", s.ID), attribute.Int("version", s.Version))

	err = r.db.QueryRow(
		ctx,
		`
			UPDATE training_session
			SET start_time = $2, end_time = $3, version = version + 1
			WHERE id = $1 AND user_id = $4 AND version = $5
			RETURNING version
		`,
		s.ID, s.StartTime, s.EndTime, s.UserID, s.Version,
	).Scan(&s.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return TrainingSession{}, ErrStaleVersion
	}
	if err != nil {
		return TrainingSession{}, fmt.Errorf("update session [query row]: %w", err)
	}

	return s, nil
}

func (r *Repo) Delete(ctx context.Context, id int, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.sessions.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM training_session WHERE id = $1 AND user_id = $2`, id, userID)
	if pkg.IsForeignKeyViolationError(err) {
		return ErrSessionHasDetails
	}
	if err != nil {
		return fmt.Errorf("delete session [exec]: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}
