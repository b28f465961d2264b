// Package main runs the befit MCP server over stdio (for local editor/agent use).
// Statistics are always reported for the user given with -user.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/2beens/befit/internal/auth"
	"github.com/2beens/befit/internal/config"
	"github.com/2beens/befit/internal/db"
	"github.com/2beens/befit/internal/gymstats/exercises"
	gymstatsmcp "github.com/2beens/befit/internal/gymstats/mcp"
	"github.com/2beens/befit/internal/gymstats/stats"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	username := flag.String("user", "", "befit username whose training data is exposed")
	flag.Parse()

	if *username == "" {
		log.Fatal("-user is required")
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     os.Getenv("BEFIT_POSTGRES_PASS"),
		TracingEnabled: false,
	})
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer dbPool.Close()

	user, err := auth.NewUsersRepo(dbPool).GetByUsername(ctx, *username)
	if err != nil {
		log.Fatalf("resolve user %s: %v", *username, err)
	}

	catalog := exercises.NewService(
		exercises.NewRepo(dbPool),
		exercises.NewLookupCache(cfg.ExerciseLookupCacheMB, time.Duration(cfg.ExerciseLookupTTLSeconds)*time.Second),
	)
	svc := gymstatsmcp.NewContextService(
		gymstatsmcp.NewPoolSchemaRepo(dbPool),
		catalog,
		stats.NewService(stats.NewRepo(dbPool)),
		user.Principal(),
	)
	server := gymstatsmcp.NewServer(svc, "v1")

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
