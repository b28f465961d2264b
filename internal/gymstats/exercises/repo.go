package exercises

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
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseInUse    = errors.New("exercise is used by training details")
	ErrStaleVersion     = errors.New("exercise version is stale")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) List(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, name, COALESCE(description, ''), version
			FROM exercise
			ORDER BY name, id
		`,
	)
	if err != nil {
		return nil, fmt.Errorf("exercises [query]: %w", err)
	}
	defer rows.Close()

	exercises := []Exercise{}
	for rows.Next() {
		var ex Exercise
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.Description, &ex.Version); err != nil {
			return nil, fmt.Errorf("exercises [rows scan]: %w", err)
		}
		exercises = append(exercises, ex)
	}

	return exercises, rows.Err()
}

func (r *Repo) Lookup(ctx context.Context) (_ []LookupItem, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.exercises.lookup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `SELECT id, name FROM exercise ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("exercise lookup [query]: %w", err)
	}
	defer rows.Close()

	items := []LookupItem{}
	for rows.Next() {
		var item LookupItem
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, fmt.Errorf("exercise lookup [rows scan]: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var ex Exercise
	err = r.db.QueryRow(
		ctx,
		`
			SELECT id, name, COALESCE(description, ''), version
			FROM exercise
			WHERE id = $1
		`,
		id,
	).Scan(&ex.ID, &ex.Name, &ex.Description, &ex.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return Exercise{}, ErrExerciseNotFound
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("exercise [query row]: %w", err)
	}

	return ex, nil
}

func (r *Repo) Exists(ctx context.Context, id int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.exercises.exists")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM exercise WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("exercise exists [query row]: %w", err)
	}
	return exists, nil
}

func (r *Repo) Add(ctx context.Context, ex Exercise) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO exercise (name, description)
			VALUES ($1, NULLIF($2, ''))
			RETURNING id, version
		`,
		ex.Name, ex.Description,
	).Scan(&ex.ID, &ex.Version)
	if err != nil {
		return Exercise{}, fmt.Errorf("add exercise [query row]: %w", err)
	}

	return ex, nil
}

// Update writes ex only if the stored version still equals ex.Version.
func (r *Repo) Update(ctx context.Context, ex Exercise) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", ex.ID), attribute.Int("version", ex.Version))

	err = r.db.QueryRow(
		ctx,
		`
			UPDATE exercise
			SET name = $2, description = NULLIF($3, ''), version = version + 1
			WHERE id = $1 AND version = $4
			RETURNING version
		`,
		ex.ID, ex.Name, ex.Description, ex.Version,
	).Scan(&ex.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return Exercise{}, ErrStaleVersion
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("update exercise [query row]: %w", err)
	}

	return ex, nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM exercise WHERE id = $1`, id)
	if pkg.IsForeignKeyViolationError(err) {
		return ErrExerciseInUse
	}
	if err != nil {
		return fmt.Errorf("delete exercise [exec]: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}

	return nil
}
