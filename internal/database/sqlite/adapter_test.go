package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Lumos-Labs-HQ/execseed/internal/database/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schema = `CREATE TABLE execution_configs (
    config_id TEXT PRIMARY KEY,
    config_type TEXT NOT NULL,
    default_configs TEXT,
    config TEXT NOT NULL
)`

func newAdapter(t *testing.T) *Adapter {
	t.Helper()
	ctx := context.Background()

	a := New("execution_configs")
	require.NoError(t, a.Connect(ctx, "sqlite://"+filepath.Join(t.TempDir(), "test.sqlite")))
	t.Cleanup(func() { a.Close() })
	require.NoError(t, a.Ping(ctx))

	_, err := a.ExecuteQuery(ctx, schema)
	require.NoError(t, err)
	return a
}

func TestTransaction(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)

	tx, err := a.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertConfig(ctx, common.ConfigRow{ConfigID: "default1", ConfigType: "default", Config: "{}"}))
	require.NoError(t, tx.InsertConfig(ctx, common.ConfigRow{
		ConfigID:       "proposer1",
		ConfigType:     "proposer",
		DefaultConfigs: []string{"default1", "default2"},
		Config:         "{}",
	}))

	err = tx.InsertConfig(ctx, common.ConfigRow{ConfigID: "default1", ConfigType: "default", Config: "{}"})
	require.Error(t, err)
	assert.True(t, common.IsUniqueViolation(err))

	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, tx.Rollback(ctx), "rollback after commit is a no-op")

	total, err := a.CountConfigs(ctx, common.CountFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	bound, err := a.CountConfigs(ctx, common.CountFilter{ConfigType: "proposer", WithDefaults: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), bound)

	res, err := a.ExecuteQuery(ctx, "SELECT default_configs FROM execution_configs WHERE config_id = 'proposer1'")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, `{"default1","default2"}`, res.Rows[0]["default_configs"])
}

func TestRollbackDiscardsRows(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)

	tx, err := a.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertConfig(ctx, common.ConfigRow{ConfigID: "default1", ConfigType: "default", Config: "{}"}))
	require.NoError(t, tx.Rollback(ctx))

	total, err := a.CountConfigs(ctx, common.CountFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
