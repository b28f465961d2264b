package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/befit/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// EntriesSince lists the user's training details whose session started at or after since.
func (r *Repo) EntriesSince(ctx context.Context, userID string, since time.Time) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gymstats.stats.entries")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT td.exercise_id, e.name, td.load::text, td.sets, td.repetitions
			FROM training_detail td
			JOIN training_session ts ON ts.id = td.training_session_id
			JOIN exercise e ON e.id = td.exercise_id
			WHERE ts.user_id = $1 AND ts.start_time >= $2
		`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("stats entries [query]: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			loadStr string
		)
		if err := rows.Scan(&e.ExerciseID, &e.ExerciseName, &loadStr, &e.Sets, &e.Repetitions); err != nil {
			return nil, fmt.Errorf("stats entries [rows scan]: %w", err)
		}
		if e.Load, err = decimal.NewFromString(loadStr); err != nil {
			return nil, fmt.Errorf("parse load %q: %w", loadStr, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
