package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/execseed/internal/database/common"
	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
)

type Adapter struct {
	db    *sql.DB
	qb    squirrel.StatementBuilderType
	table string
}

func New(table string) *Adapter {
	return &Adapter{
		qb:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		table: table,
	}
}

func (s *Adapter) Connect(ctx context.Context, url string) error {
	dbPath := strings.TrimPrefix(url, "sqlite://")
	if !strings.Contains(dbPath, "?") {
		dbPath += "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite serialises writers; a single connection keeps the seeding
	// transaction and later reads on the same file handle.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	s.db = db
	return nil
}

func (s *Adapter) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Adapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Adapter) Begin(ctx context.Context) (common.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return common.NewSQLTx(tx, s.qb, s.table, classify), nil
}

func (s *Adapter) CountConfigs(ctx context.Context, filter common.CountFilter) (int64, error) {
	return common.CountSQL(ctx, s.db, s.qb, s.table, filter)
}

func (s *Adapter) ExecuteQuery(ctx context.Context, query string) (*common.QueryResult, error) {
	return common.QuerySQL(ctx, s.db, query)
}

func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique) {
		return common.UniqueViolation(err)
	}
	return err
}
