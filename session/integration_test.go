//go:build integration

package session_test

import (
	"context"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/syssam/rowmap/dialect"
	"github.com/syssam/rowmap/dialect/sql"
	"github.com/syssam/rowmap/session"
)

func TestPostgresRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("rowmap"),
		postgres.WithUsername("rowmap"),
		postgres.WithPassword("rowmap"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)
	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	drv, err := sql.OpenDriver(dialect.Postgres, "pgx", dsn)
	require.NoError(t, err)
	defer drv.Close()

	s := session.New(drv, people())
	require.NoError(t, s.CreateTables(ctx))
	defer func() { assert.NoError(t, s.DropTables(ctx)) }()

	p := &Person{Name: "pg", Age: 7, Active: true, Address: &Address{City: "Oslo"}}
	require.NoError(t, s.Insert(ctx, p))
	require.Positive(t, p.ID, "key read through RETURNING")
	assert.True(t, p.Created.IsZero(), "created is set by the server")

	got := &Person{ID: p.ID}
	found, err := s.Load(ctx, got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "pg", got.Name)
	assert.True(t, got.Active)
	assert.Equal(t, "Oslo", got.Address.City)
	assert.False(t, got.Created.IsZero())

	got.Age = 8
	n, err := s.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := session.List(ctx, s, &Person{Age: 8}, session.Limit(10))
	require.NoError(t, err)
	require.Len(t, list, 1)

	deleted, err := s.Delete(ctx, got)
	require.NoError(t, err)
	assert.True(t, deleted)
}
