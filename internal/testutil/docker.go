// Package testutil starts throwaway PostgreSQL and Redis containers for
// integration tests. Tests are skipped under -short or without Docker.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	_ "github.com/lib/pq"
)

func newPool(t *testing.T) *dockertest.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping docker integration test in short mode")
	}
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	pool.MaxWait = 90 * time.Second
	return pool
}

func run(t *testing.T, pool *dockertest.Pool, opts *dockertest.RunOptions) *dockertest.Resource {
	t.Helper()
	resource, err := pool.RunWithOptions(opts, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start %s: %v", opts.Repository, err)
	}
	_ = resource.Expire(300)
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge %s: %v", opts.Repository, err)
		}
	})
	return resource
}

// StartPostgres mengembalikan URL postgres:// yang siap dipakai.
func StartPostgres(t *testing.T) string {
	t.Helper()
	pool := newPool(t)
	resource := run(t, pool, &dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=todo",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=todo_test",
		},
	})

	url := fmt.Sprintf("postgres://todo:secret@%s/todo_test?sslmode=disable", resource.GetHostPort("5432/tcp"))
	if err := pool.Retry(func() error {
		db, err := sql.Open("postgres", url)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Ping()
	}); err != nil {
		t.Fatalf("Could not connect to postgres: %v", err)
	}
	return url
}

// StartRedis mengembalikan alamat host:port Redis.
func StartRedis(t *testing.T) string {
	t.Helper()
	pool := newPool(t)
	resource := run(t, pool, &dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	})

	addr := resource.GetHostPort("6379/tcp")
	if err := pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	}); err != nil {
		t.Fatalf("Could not connect to redis: %v", err)
	}
	return addr
}
