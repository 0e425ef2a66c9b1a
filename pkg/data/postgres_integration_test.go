//go:build integration

package data

import (
	"context"
	"testing"

	"github.com/rafianfasaa/stunting/pkg/growth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("who"),
		postgres.WithUsername("who"),
		postgres.WithPassword("who"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, Init(dsn))
	require.NoError(t, Init(dsn), "schema creation is idempotent")

	db, err := GetDB(dsn)
	require.NoError(t, err)
	defer db.Close()
	assert.True(t, isPostgres(db))

	for _, sex := range growth.Sexes {
		require.NoError(t, SaveTable(db, testTable(t, sex, growth.Length, 0, 24, 49.5), "length.csv"))
		require.NoError(t, SaveTable(db, testTable(t, sex, growth.Height, 24, 60, 86.5), "height.csv"))
	}

	rs, err := GetReferenceSet(db)
	require.NoError(t, err)

	tbl, ok := rs.Table(growth.Female, growth.Height)
	require.True(t, ok)
	r, err := tbl.Exact(30)
	require.NoError(t, err)
	assert.InDelta(t, 92.5, r.M, 1e-9)

	imports, err := GetImports(db)
	require.NoError(t, err)
	assert.Len(t, imports, 4)

	n, err := DeleteAll(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2*25+2*37), n)
}
