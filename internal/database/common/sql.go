package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

const (
	ColConfigID       = "config_id"
	ColConfigType     = "config_type"
	ColDefaultConfigs = "default_configs"
	ColConfig         = "config"
)

// BuildInsert renders the INSERT for row. encodeArray converts the default
// config ids into whatever the driver accepts for the array column.
func BuildInsert(qb squirrel.StatementBuilderType, table string, row ConfigRow, encodeArray func([]string) interface{}) (string, []interface{}, error) {
	if !IsValidIdentifier(table) {
		return "", nil, fmt.Errorf("invalid table name: %s", table)
	}

	insert := qb.Insert(table)
	if len(row.DefaultConfigs) > 0 {
		insert = insert.
			Columns(ColConfigID, ColConfigType, ColDefaultConfigs, ColConfig).
			Values(row.ConfigID, row.ConfigType, encodeArray(row.DefaultConfigs), row.Config)
	} else {
		insert = insert.
			Columns(ColConfigID, ColConfigType, ColConfig).
			Values(row.ConfigID, row.ConfigType, row.Config)
	}

	return insert.ToSql()
}

func BuildCount(qb squirrel.StatementBuilderType, table string, filter CountFilter) (string, []interface{}, error) {
	if !IsValidIdentifier(table) {
		return "", nil, fmt.Errorf("invalid table name: %s", table)
	}

	query := qb.Select("COUNT(*)").From(table)
	if filter.ConfigType != "" {
		query = query.Where(squirrel.Eq{ColConfigType: filter.ConfigType})
	}
	if filter.WithDefaults {
		query = query.Where(squirrel.NotEq{ColDefaultConfigs: nil})
	}

	return query.ToSql()
}

// PostgresArray encodes ids as a Postgres array literal such as
// {"default1","default7"}. Drivers without native array support store the
// literal as text.
func PostgresArray(ids []string) interface{} {
	return pq.Array(ids)
}

// SQLTx adapts *sql.Tx to Tx for the database/sql based adapters.
type SQLTx struct {
	tx       *sql.Tx
	qb       squirrel.StatementBuilderType
	table    string
	classify func(error) error
	done     bool
}

func NewSQLTx(tx *sql.Tx, qb squirrel.StatementBuilderType, table string, classify func(error) error) *SQLTx {
	return &SQLTx{tx: tx, qb: qb, table: table, classify: classify}
}

func (t *SQLTx) InsertConfig(ctx context.Context, row ConfigRow) error {
	query, args, err := BuildInsert(t.qb, t.table, row, PostgresArray)
	if err != nil {
		return err
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		if t.classify != nil {
			return t.classify(err)
		}
		return err
	}
	return nil
}

func (t *SQLTx) Commit(ctx context.Context) error {
	t.done = true
	return t.tx.Commit()
}

func (t *SQLTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func CountSQL(ctx context.Context, db *sql.DB, qb squirrel.StatementBuilderType, table string, filter CountFilter) (int64, error) {
	query, args, err := BuildCount(qb, table, filter)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

func QuerySQL(ctx context.Context, db *sql.DB, query string) (*QueryResult, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &QueryResult{
		Columns: columns,
		Rows:    results,
	}, nil
}
