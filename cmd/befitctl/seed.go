package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/2beens/befit/internal/auth"
	"github.com/2beens/befit/internal/gymstats/details"
	"github.com/2beens/befit/internal/gymstats/exercises"
	"github.com/2beens/befit/internal/gymstats/sessions"
	"github.com/2beens/befit/internal/telemetry/metrics"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var defaultCatalog = []exercises.Exercise{
	{Name: "Squat", Description: "barbell back squat"},
	{Name: "Bench Press", Description: "flat barbell bench press"},
	{Name: "Deadlift", Description: "conventional deadlift"},
	{Name: "Overhead Press", Description: "standing barbell press"},
	{Name: "Barbell Row", Description: "bent over row"},
	{Name: "Pull Up"},
}

var (
	seedUser     string
	seedSessions int
	seedDetails  int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate fake training sessions for a user",
	Long: `Generate fake training sessions spread over the last 4 weeks.

The exercise catalog gets a default set of exercises when it is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedUser == "" {
			return errors.New("--user is required")
		}
		ctx := cmd.Context()

		user, err := auth.NewUsersRepo(dbPool).GetByUsername(ctx, seedUser)
		if err != nil {
			return fmt.Errorf("resolve user %s: %w", seedUser, err)
		}
		principal := user.Principal()

		exercisesRepo := exercises.NewRepo(dbPool)
		catalog, err := ensureCatalog(cmd, exercisesRepo)
		if err != nil {
			return err
		}

		// counters of this run are not exported anywhere
		metricsManager := metrics.NewManager("befit", "ctl", prometheus.NewRegistry())
		sessionsRepo := sessions.NewRepo(dbPool)
		sessionsService := sessions.NewService(sessionsRepo, metricsManager)
		detailsService := details.NewService(
			details.NewRepo(dbPool),
			sessionsRepo,
			exercises.NewService(exercisesRepo, exercises.NewLookupCache(cfg.ExerciseLookupCacheMB, time.Minute)),
			metricsManager,
		)

		now := time.Now().UTC()
		detailsAdded := 0
		for i := 0; i < seedSessions; i++ {
			start := gofakeit.DateRange(now.Add(-27*24*time.Hour), now.Add(-2*time.Hour)).Truncate(time.Minute)
			session, err := sessionsService.Create(ctx, principal, sessions.SessionInput{
				StartTime: start,
				EndTime:   start.Add(time.Duration(gofakeit.Number(40, 110)) * time.Minute),
			})
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}

			for j := 0; j < seedDetails; j++ {
				ex := catalog[gofakeit.Number(0, len(catalog)-1)]
				_, err := detailsService.Create(ctx, principal, details.DetailInput{
					TrainingSessionID: session.ID,
					ExerciseID:        ex.ID,
					Load:              decimal.NewFromFloat(gofakeit.Float64Range(20, 160)).Round(1),
					Sets:              gofakeit.Number(2, 5),
					Repetitions:       gofakeit.Number(4, 12),
				})
				if err != nil {
					return fmt.Errorf("create detail for session %d: %w", session.ID, err)
				}
				detailsAdded++
			}
		}

		color.Green("✓ seeded %d sessions with %d details for %s", seedSessions, detailsAdded, user.Username)
		return nil
	},
}

func ensureCatalog(cmd *cobra.Command, repo *exercises.Repo) ([]exercises.Exercise, error) {
	existing, err := repo.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	added := make([]exercises.Exercise, 0, len(defaultCatalog))
	for _, ex := range defaultCatalog {
		stored, err := repo.Add(cmd.Context(), ex)
		if err != nil {
			return nil, fmt.Errorf("add exercise %s: %w", ex.Name, err)
		}
		added = append(added, stored)
	}
	color.New(color.Faint).Printf("  catalog was empty, added %d exercises\n", len(added))
	return added, nil
}

func init() {
	seedCmd.Flags().StringVarP(&seedUser, "user", "u", "", "username owning the generated sessions")
	seedCmd.Flags().IntVarP(&seedSessions, "sessions", "n", 8, "number of sessions")
	seedCmd.Flags().IntVar(&seedDetails, "details", 4, "details per session")
}
