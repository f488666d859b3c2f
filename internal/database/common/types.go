package common

import (
	"context"
	"regexp"
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsValidIdentifier reports whether name can be used unquoted as a table name.
func IsValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

type QueryResult struct {
	Columns []string
	Rows    []map[string]interface{}
}

// ConfigRow is one execution_configs row. A nil or empty DefaultConfigs
// leaves the default_configs column out of the INSERT.
type ConfigRow struct {
	ConfigID       string
	ConfigType     string
	DefaultConfigs []string
	Config         string
}

// CountFilter narrows CountConfigs. Zero value counts every row.
type CountFilter struct {
	ConfigType   string
	WithDefaults bool
}

// Tx is a single seeding transaction. Rollback after Commit is a no-op.
type Tx interface {
	InsertConfig(ctx context.Context, row ConfigRow) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
