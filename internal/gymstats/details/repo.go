package details

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/befit/internal/telemetry/tracing"
	"github.com/2beens/befit/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrDetailNotFound  = errors.New("training detail not found")
	ErrStaleVersion    = errors.New("training detail version is stale")
	ErrMissingSession  = errors.New("referenced training session does not exist")
	ErrMissingExercise = errors.New("referenced exercise does not exist")
)

// postgres default name for the exercise_id reference in schema.sql
const exerciseForeignKey = "training_detail_exercise_id_fkey"

const selectDetailViews = `
	SELECT td.id, td.training_session_id, td.exercise_id, td.load::text, td.sets, td.repetitions, td.version,
		e.name, ts.start_time, ts.end_time, ts.user_id
	FROM training_detail td
	JOIN training_session ts ON ts.id = td.training_session_id
	JOIN exercise e ON e.id = td.exercise_id
`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func scanDetailView(row pgx.Row) (DetailView, error) {
	var (
		v       DetailView
		loadStr string
	)
	if err := row.Scan(
		&v.ID, &v.TrainingSessionID, &v.ExerciseID, &loadStr, &v.Sets, &v.Repetitions, &v.Version,
		&v.ExerciseName, &v.SessionStart, &v.SessionEnd, &v.OwnerID,
	); err != nil {
		return DetailView{}, err
	}

	load, err := decimal.NewFromString(loadStr)
	if err != nil {
		return DetailView{}, fmt.Errorf("parse load %q: %w", loadStr, err)
	}
	v.Load = load

	return v, nil
}

// ListBySession returns the details of a session sorted by exercise name.
func (r *Repo) ListBySession(ctx context.Context, sessionID int) (_ []DetailView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.details.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", sessionID))

	rows, err := r.db.Query(
		ctx,
		selectDetailViews+`
			WHERE td.training_session_id = $1
			ORDER BY e.name, td.id
		`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("details [query]: %w", err)
	}
	defer rows.Close()

	views := []DetailView{}
	for rows.Next() {
		v, err := scanDetailView(rows)
		if err != nil {
			return nil, fmt.Errorf("details [rows scan]: %w", err)
		}
		views = append(views, v)
	}

	return views, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int) (_ DetailView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.details.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	v, err := scanDetailView(r.db.QueryRow(ctx, selectDetailViews+` WHERE td.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return DetailView{}, ErrDetailNotFound
	}
	if err != nil {
		return DetailView{}, fmt.Errorf("detail [query row]: %w", err)
	}

	return v, nil
}

// ExistsOwned reports whether detail id exists and its session belongs to userID.
func (r *Repo) ExistsOwned(ctx context.Context, id int, userID string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.details.existsowned")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var exists bool
	err = r.db.QueryRow(
		ctx,
		`
			SELECT EXISTS (
				SELECT 1
				FROM training_detail td
				JOIN training_session ts ON ts.id = td.training_session_id
				WHERE td.id = $1 AND ts.user_id = $2
			)
		`,
		id, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("detail exists [query row]: %w", err)
	}
	return exists, nil
}

func (r *Repo) Add(ctx context.Context, d TrainingDetail) (_ TrainingDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.details.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO training_detail (training_session_id, exercise_id, load, sets, repetitions)
			VALUES ($1, $2, $3::numeric, $4, $5)
			RETURNING id, version
		`,
		d.TrainingSessionID, d.ExerciseID, d.Load.String(), d.Sets, d.Repetitions,
	).Scan(&d.ID, &d.Version)
	if refErr := missingReference(err); refErr != nil {
		return TrainingDetail{}, refErr
	}
	if err != nil {
		return TrainingDetail{}, fmt.Errorf("add detail [query row]: %w", err)
	}

	return d, nil
}

// Update writes d only if the stored version still equals d.Version.
func (r *Repo) Update(ctx context.Context, d TrainingDetail) (_ TrainingDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.details.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", d.ID), attribute.Int("version", d.Version))

	err = r.db.QueryRow(
		ctx,
		`
			UPDATE training_detail
			SET training_session_id = $2, exercise_id = $3, load = $4::numeric, sets = $5, repetitions = $6,
				version = version + 1
			WHERE id = $1 AND version = $7
			RETURNING version
		`,
		d.ID, d.TrainingSessionID, d.ExerciseID, d.Load.String(), d.Sets, d.Repetitions, d.Version,
	).Scan(&d.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return TrainingDetail{}, ErrStaleVersion
	}
	if refErr := missingReference(err); refErr != nil {
		return TrainingDetail{}, refErr
	}
	if err != nil {
		return TrainingDetail{}, fmt.Errorf("update detail [query row]: %w", err)
	}

	return d, nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.details.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM training_detail WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete detail [exec]: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDetailNotFound
	}

	return nil
}

// missingReference maps a foreign key violation on training_detail to the sentinel of the missing parent.
func missingReference(err error) error {
	if !pkg.IsForeignKeyViolationError(err) {
		return nil
	}
	if pkg.ViolatedConstraint(err) == exerciseForeignKey {
		return ErrMissingExercise
	}
	return ErrMissingSession
}
