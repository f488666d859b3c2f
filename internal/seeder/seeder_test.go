package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Lumos-Labs-HQ/execseed/internal/database"
	"github.com/Lumos-Labs-HQ/execseed/internal/metrics"
	"github.com/Lumos-Labs-HQ/execseed/template"
	"github.com/lib/pq"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTable = "execution_configs"

func openSQLite(t *testing.T) database.DatabaseAdapter {
	t.Helper()

	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "seed.sqlite")
	adapter, err := database.Open(ctx, "sqlite", testTable, url)
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	_, err = adapter.ExecuteQuery(ctx, template.NewProjectTemplate(template.SQLite).GetSchema(testTable))
	require.NoError(t, err)

	return adapter
}

func TestSeedEndToEnd(t *testing.T) {
	ctx := context.Background()
	adapter := openSQLite(t)

	const standalone = 50
	plan := Plan{Defaults: 10, BoundProposers: 20, Proposers: 20 + standalone}
	m := metrics.New()

	result, err := New(adapter, WithGenerator(NewDataGenerator(11)), WithMetrics(m)).Seed(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Defaults)
	assert.Equal(t, 20, result.BoundProposers)
	assert.Equal(t, standalone, result.StandaloneProposers)

	stats, err := CollectStats(ctx, adapter)
	require.NoError(t, err)
	assert.Equal(t, &TableStats{
		Total:        30 + standalone,
		Defaults:     10,
		Proposers:    20 + standalone,
		WithDefaults: 20,
	}, stats)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.RowsInserted.WithLabelValues(metrics.KindDefault)))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.RowsInserted.WithLabelValues(metrics.KindBoundProposer)))
	assert.Equal(t, float64(standalone), testutil.ToFloat64(m.RowsInserted.WithLabelValues(metrics.KindStandaloneProposer)))
	assert.Greater(t, testutil.ToFloat64(m.LastSuccess), 0.0)

	t.Run("bound proposers reference two distinct inserted defaults", func(t *testing.T) {
		res, err := adapter.ExecuteQuery(ctx, "SELECT config_id, default_configs, config FROM execution_configs WHERE default_configs IS NOT NULL")
		require.NoError(t, err)
		require.Len(t, res.Rows, 20)

		defaults, err := adapter.ExecuteQuery(ctx, "SELECT config_id FROM execution_configs WHERE config_type = 'default'")
		require.NoError(t, err)
		known := map[string]bool{}
		for _, row := range defaults.Rows {
			known[row["config_id"].(string)] = true
		}
		require.Len(t, known, 10)

		for _, row := range res.Rows {
			var ids pq.StringArray
			require.NoError(t, ids.Scan(row["default_configs"]))
			require.Len(t, ids, 2, row["config_id"])
			assert.NotEqual(t, ids[0], ids[1])
			assert.True(t, known[ids[0]])
			assert.True(t, known[ids[1]])

			var cfg ExecutionConfig
			require.NoError(t, json.Unmarshal([]byte(row["config"].(string)), &cfg))
			assert.Equal(t, []string(ids), cfg.DefaultConfigs)
			assert.NotNil(t, cfg.ResetRelays)
		}
	})

	t.Run("stored configs decode and respect their ranges", func(t *testing.T) {
		res, err := adapter.ExecuteQuery(ctx, "SELECT config_type, config FROM execution_configs")
		require.NoError(t, err)
		require.Len(t, res.Rows, 30+standalone)

		for _, row := range res.Rows {
			var cfg ExecutionConfig
			require.NoError(t, json.Unmarshal([]byte(row["config"].(string)), &cfg))
			assert.Regexp(t, addressPattern, cfg.FeeRecipient.String())
			if row["config_type"] == string(ConfigTypeDefault) {
				assert.GreaterOrEqual(t, cfg.GasLimit, 1_000_000)
			} else {
				assert.LessOrEqual(t, cfg.GasLimit, 500_000)
			}
		}
	})

	// Uniqueness is left to the primary key: a second run with the same id
	// scheme must fail and leave the first run's rows untouched.
	t.Run("re-running against a seeded table fails on the primary key", func(t *testing.T) {
		_, err := New(adapter, WithGenerator(NewDataGenerator(12))).Seed(ctx, plan)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateConfig)
		assert.True(t, database.IsUniqueViolation(err))

		after, err := CollectStats(ctx, adapter)
		require.NoError(t, err)
		assert.Equal(t, stats, after)
	})
}

func TestSeedRollsBackWhenSamplingFails(t *testing.T) {
	ctx := context.Background()
	adapter := openSQLite(t)

	_, err := New(adapter, WithGenerator(NewDataGenerator(13))).Seed(ctx, Plan{Defaults: 1, BoundProposers: 1, Proposers: 3})
	require.ErrorIs(t, err, ErrSampleOutOfRange)

	stats, err := CollectStats(ctx, adapter)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total, "default1 must not survive the rollback")
}

type fakeTx struct {
	rows       []database.ConfigRow
	failAfter  int
	failWith   error
	committed  bool
	rolledBack bool
}

func (f *fakeTx) InsertConfig(ctx context.Context, row database.ConfigRow) error {
	if f.failAfter >= 0 && len(f.rows) == f.failAfter {
		return f.failWith
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

type fakeAdapter struct {
	database.DatabaseAdapter
	tx       *fakeTx
	beginErr error
}

func (f *fakeAdapter) Begin(ctx context.Context) (database.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

func TestSeedTransactionBoundary(t *testing.T) {
	plan := Plan{Defaults: 3, BoundProposers: 2, Proposers: 4}

	t.Run("it commits once after every row", func(t *testing.T) {
		tx := &fakeTx{failAfter: -1}
		_, err := New(&fakeAdapter{tx: tx}, WithGenerator(NewDataGenerator(14))).Seed(context.Background(), plan)
		require.NoError(t, err)

		assert.True(t, tx.committed)
		assert.False(t, tx.rolledBack)
		require.Len(t, tx.rows, 7)

		assert.Equal(t, "default1", tx.rows[0].ConfigID)
		assert.Equal(t, "default", tx.rows[0].ConfigType)
		assert.Nil(t, tx.rows[0].DefaultConfigs)
		assert.Len(t, tx.rows[3].DefaultConfigs, 2)
		assert.Len(t, tx.rows[4].DefaultConfigs, 2)
		assert.Nil(t, tx.rows[5].DefaultConfigs)
		assert.Equal(t, "proposer4", tx.rows[6].ConfigID)
	})

	t.Run("it rolls back and stops on the first insert error", func(t *testing.T) {
		boom := errors.New("connection reset")
		tx := &fakeTx{failAfter: 4, failWith: boom}
		m := metrics.New()
		_, err := New(&fakeAdapter{tx: tx}, WithGenerator(NewDataGenerator(15)), WithMetrics(m)).Seed(context.Background(), plan)

		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "proposer2")
		assert.NotErrorIs(t, err, ErrDuplicateConfig)
		assert.False(t, tx.committed)
		assert.True(t, tx.rolledBack)
		assert.Len(t, tx.rows, 4)
		assert.Greater(t, testutil.ToFloat64(m.LastFailure), 0.0)
		assert.Equal(t, 0.0, testutil.ToFloat64(m.LastSuccess))
	})

	t.Run("it reports begin failures", func(t *testing.T) {
		boom := errors.New("too many connections")
		_, err := New(&fakeAdapter{beginErr: boom}).Seed(context.Background(), plan)
		assert.ErrorIs(t, err, boom)
	})
}

func TestSeedReportsThroughLogger(t *testing.T) {
	var stdout bytes.Buffer
	prev := color.Output
	color.Output = &stdout
	t.Cleanup(func() { color.Output = prev })

	plan := Plan{Defaults: 3, BoundProposers: 2, Proposers: 4}

	t.Run("a committed run logs its counts and prints nothing", func(t *testing.T) {
		log, hook := logtest.NewNullLogger()
		_, err := New(&fakeAdapter{tx: &fakeTx{failAfter: -1}},
			WithGenerator(NewDataGenerator(16)),
			WithLogger(logrus.NewEntry(log)),
		).Seed(context.Background(), plan)
		require.NoError(t, err)

		assert.Empty(t, stdout.String())
		last := hook.LastEntry()
		require.NotNil(t, last)
		assert.Equal(t, "seed run committed", last.Message)
		assert.Equal(t, 3, last.Data["defaults"])
		assert.Equal(t, 2, last.Data["bound_proposers"])
		assert.Equal(t, 2, last.Data["standalone_proposers"])
	})

	t.Run("a rolled back run logs the rollback", func(t *testing.T) {
		log, hook := logtest.NewNullLogger()
		_, err := New(&fakeAdapter{tx: &fakeTx{failAfter: 1, failWith: errors.New("disk full")}},
			WithGenerator(NewDataGenerator(17)),
			WithLogger(logrus.NewEntry(log)),
		).Seed(context.Background(), plan)
		require.Error(t, err)

		assert.Empty(t, stdout.String())
		last := hook.LastEntry()
		require.NotNil(t, last)
		assert.Equal(t, logrus.WarnLevel, last.Level)
		assert.Equal(t, "transaction rolled back", last.Message)
	})
}
