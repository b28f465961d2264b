package testing

import (
	"context"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"github.com/2beens/befit/internal/db"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
)

const testDBName = "befit_test"

// PostgresPool returns a pool to a database with the befit schema applied.
// POSTGRES_HOST points the tests at an already running server (CI service container),
// otherwise a throwaway postgres container is started with dockertest.
func PostgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	host, port := os.Getenv("POSTGRES_HOST"), "5432"
	if host == "" {
		host = "localhost"
		port = startContainer(t, &dockertest.RunOptions{
			Repository: "postgres",
			Tag:        "16",
			Env: []string{
				"POSTGRES_USER=postgres",
				"POSTGRES_DB=" + testDBName,
				"POSTGRES_HOST_AUTH_METHOD=trust",
			},
		}, "5432/tcp", func(port string) error {
			pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{DBHost: host, DBPort: port, DBName: testDBName})
			if err != nil {
				return err
			}
			defer pool.Close()
			return pool.Ping(ctx)
		})
	}
	t.Logf("using postgres: %s:%s", host, port)

	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: host,
		DBPort: port,
		DBName: testDBName,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.ApplySchema(ctx, pool))
	return pool
}

// RedisAddr returns host:port of a redis without password, started with dockertest
// unless REDIS_HOST is set.
func RedisAddr(t *testing.T) string {
	t.Helper()

	if host := os.Getenv("REDIS_HOST"); host != "" {
		return net.JoinHostPort(host, "6379")
	}

	port := startContainer(t, &dockertest.RunOptions{
		Repository: "redis",
		Tag:        "6.2",
	}, "6379/tcp", func(port string) error {
		rdb := redis.NewClient(&redis.Options{Addr: net.JoinHostPort("localhost", port)})
		defer rdb.Close()
		return rdb.Ping(context.Background()).Err()
	})
	return net.JoinHostPort("localhost", port)
}

func startContainer(
	t *testing.T,
	opts *dockertest.RunOptions,
	exposedPort string,
	ready func(port string) error,
) string {
	t.Helper()

	dockerPool, err := dockertest.NewPool("")
	require.NoError(t, err, "could not create dockertest pool")
	require.NoError(t, dockerPool.Client.Ping(), "could not ping docker")
	dockerPool.MaxWait = time.Minute

	resource, err := dockerPool.RunWithOptions(opts, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, fmt.Sprintf("run %s", opts.Repository))
	t.Cleanup(func() {
		if err := dockerPool.Purge(resource); err != nil {
			t.Logf("%s teardown: %s", opts.Repository, err)
		}
	})

	port := resource.GetPort(exposedPort)
	require.NoError(t, dockerPool.Retry(func() error {
		return ready(port)
	}))
	return port
}
