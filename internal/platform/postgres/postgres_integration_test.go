//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custody/internal/platform/postgres"
	"custody/pkg/testutil/containers"
)

func TestMigrateIsRepeatable(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)
	ctx := context.Background()

	// The container manager already migrated once.
	require.NoError(t, postgres.Migrate(ctx, pg.DB))

	var version int
	var dirty bool
	require.NoError(t, pg.DB.QueryRowContext(ctx,
		`SELECT version, dirty FROM custody_schema_migrations`).Scan(&version, &dirty))
	assert.Equal(t, 3, version)
	assert.False(t, dirty)

	for _, table := range []string{"actors", "assets", "asset_holders", "outbox", "token_revocations"} {
		var exists bool
		require.NoError(t, pg.DB.QueryRowContext(ctx,
			`SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists))
		assert.True(t, exists, table)
	}
}
