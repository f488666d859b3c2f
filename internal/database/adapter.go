package database

import (
	"context"

	"github.com/Lumos-Labs-HQ/execseed/internal/database/common"
)

type (
	ConfigRow   = common.ConfigRow
	CountFilter = common.CountFilter
	QueryResult = common.QueryResult
	Tx          = common.Tx
)

var ErrUniqueViolation = common.ErrUniqueViolation

// DatabaseAdapter is bound to one table at construction. Connect must be
// called before any other method.
type DatabaseAdapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	Begin(ctx context.Context) (Tx, error)
	CountConfigs(ctx context.Context, filter CountFilter) (int64, error)

	ExecuteQuery(ctx context.Context, query string) (*QueryResult, error)
}

func IsValidIdentifier(name string) bool {
	return common.IsValidIdentifier(name)
}

func IsUniqueViolation(err error) bool {
	return common.IsUniqueViolation(err)
}
