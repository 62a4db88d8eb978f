//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors the production migrations: tenant-scoped tables, cascade
// delete of relationships with their endpoints, and the unique indexes
// that backstop the relationship validator against concurrent writers.
const schema = `
CREATE TABLE IF NOT EXISTS persons (
    id          UUID PRIMARY KEY,
    owner_id    UUID NOT NULL,
    first_name  TEXT NOT NULL,
    last_name   TEXT NOT NULL,
    birth_name  TEXT NOT NULL DEFAULT '',
    nickname    TEXT NOT NULL DEFAULT '',
    birth_date  TEXT NOT NULL DEFAULT '',
    death_date  TEXT NOT NULL DEFAULT '',
    gender      TEXT NOT NULL DEFAULT '',
    photo_ref   TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS persons_owner_idx ON persons (owner_id);

CREATE TABLE IF NOT EXISTS relationships (
    id           UUID PRIMARY KEY,
    owner_id     UUID NOT NULL,
    endpoint1    UUID NOT NULL REFERENCES persons (id) ON DELETE CASCADE,
    endpoint2    UUID NOT NULL REFERENCES persons (id) ON DELETE CASCADE,
    kinship_type TEXT NOT NULL,
    role         TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS relationships_owner_idx ON relationships (owner_id);
CREATE UNIQUE INDEX IF NOT EXISTS relationships_parent_role_uq
    ON relationships (owner_id, endpoint2, role)
    WHERE kinship_type = 'parentOf';
CREATE UNIQUE INDEX IF NOT EXISTS relationships_pair_uq
    ON relationships (owner_id, kinship_type,
                      least(endpoint1, endpoint2), greatest(endpoint1, endpoint2));

CREATE TABLE IF NOT EXISTS audit_events (
    id          UUID PRIMARY KEY,
    owner_id    UUID NOT NULL,
    action      TEXT NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL,
    payload     JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_events_owner_idx ON audit_events (owner_id, occurred_at);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	Pool      *pgxpool.Pool
}

// NewPostgresContainer starts a PostgreSQL container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("lineage"),
		tcpostgres.WithUsername("lineage"),
		tcpostgres.WithPassword("lineage"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open pgx pool: %v", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		URL:       url,
		Pool:      pool,
	}
}

// Truncate empties all tables. Use between tests to ensure isolation.
func (p *PostgresContainer) Truncate(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `TRUNCATE relationships, persons, audit_events`)
	return err
}
