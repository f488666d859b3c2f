package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/execseed/internal/database/mysql"
	"github.com/Lumos-Labs-HQ/execseed/internal/database/postgres"
	"github.com/Lumos-Labs-HQ/execseed/internal/database/sqlite"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrInvalidURL = errors.New("malformed database URL")

func NewAdapter(provider, table string) DatabaseAdapter {
	switch provider {
	case "postgresql", "postgres":
		return postgres.New(table)
	case "mysql":
		return mysql.New(table)
	case "sqlite", "sqlite3":
		return sqlite.New(table)
	default:
		return postgres.New(table)
	}
}

// ValidateURL checks that the provider's driver can parse url without
// opening a connection.
func ValidateURL(provider, url string) error {
	var err error
	switch provider {
	case "mysql":
		_, err = gomysql.ParseDSN(mysql.ToDSN(url))
	case "sqlite", "sqlite3":
		if strings.TrimPrefix(url, "sqlite://") == "" {
			err = errors.New("empty sqlite path")
		}
	default:
		_, err = pgconn.ParseConfig(url)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return nil
}

// Open creates, connects and pings an adapter. The caller owns Close.
func Open(ctx context.Context, provider, table, url string) (DatabaseAdapter, error) {
	adapter := NewAdapter(provider, table)

	if err := adapter.Connect(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := adapter.Ping(ctx); err != nil {
		adapter.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return adapter, nil
}
