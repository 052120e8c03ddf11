// Package common provides shared container infrastructure for store tests
package common

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Container wraps a started testcontainers instance and its mapped endpoint
type Container struct {
	container testcontainers.Container
	host      string
	port      string
}

// Host returns the host the container is reachable on
func (c *Container) Host() string { return c.host }

// Port returns the mapped service port
func (c *Container) Port() string { return c.port }

// Cleanup terminates the container. Call from TestMain if needed.
func (c *Container) Cleanup() {
	if c != nil && c.container != nil {
		c.container.Terminate(context.Background())
	}
}

// shared holds one container per image for the whole test process
type shared struct {
	once sync.Once
	c    *Container
	err  error
}

func (s *shared) start(t *testing.T, req testcontainers.ContainerRequest, port nat.Port) *Container {
	t.Helper()

	s.once.Do(func() {
		ctx := context.Background()

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			s.err = fmt.Errorf("start %s container: %w", req.Image, err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			container.Terminate(ctx)
			s.err = fmt.Errorf("get %s host: %w", req.Image, err)
			return
		}

		mappedPort, err := container.MappedPort(ctx, port)
		if err != nil {
			container.Terminate(ctx)
			s.err = fmt.Errorf("get %s port: %w", req.Image, err)
			return
		}

		s.c = &Container{container: container, host: host, port: mappedPort.Port()}
	})

	if s.err != nil {
		t.Fatalf("container failed: %v", s.err)
	}
	return s.c
}

var surreal shared

const surrealPort nat.Port = "8000/tcp"

// SurrealDBContainer is a running SurrealDB instance
type SurrealDBContainer struct {
	*Container
}

// StartSurrealDB starts a shared SurrealDB container for the test run
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()

	c := surreal.start(t, testcontainers.ContainerRequest{
		Image:        "surrealdb/surrealdb:v3.0.0",
		ExposedPorts: []string{string(surrealPort)},
		Cmd:          []string{"start", "--user", "root", "--pass", "root"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(surrealPort),
			wait.ForLog("Started web server"),
		).WithDeadline(60 * time.Second),
	}, surrealPort)

	return &SurrealDBContainer{Container: c}
}

// Address returns the WebSocket RPC address for SurrealDB.
func (c *SurrealDBContainer) Address() string {
	return fmt.Sprintf("ws://%s:%s/rpc", c.host, c.port)
}

var postgres shared

const postgresPort nat.Port = "5432/tcp"

// PostgresContainer is a running Postgres instance with an "advisor" database
type PostgresContainer struct {
	*Container
}

// StartPostgres starts a shared Postgres container for the test run
func StartPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	c := postgres.start(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_USER":     "advisor",
			"POSTGRES_PASSWORD": "advisor",
			"POSTGRES_DB":       "advisor",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(postgresPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(60 * time.Second),
	}, postgresPort)

	return &PostgresContainer{Container: c}
}

// DSN returns a lib/pq connection string
func (c *PostgresContainer) DSN() string {
	return fmt.Sprintf("postgres://advisor:advisor@%s:%s/advisor?sslmode=disable", c.host, c.port)
}
