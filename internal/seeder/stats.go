package seeder

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/execseed/internal/database"
)

type TableStats struct {
	Total        int64 `json:"total" yaml:"total"`
	Defaults     int64 `json:"defaults" yaml:"defaults"`
	Proposers    int64 `json:"proposers" yaml:"proposers"`
	WithDefaults int64 `json:"with_defaults" yaml:"with_defaults"`
}

func CollectStats(ctx context.Context, adapter database.DatabaseAdapter) (*TableStats, error) {
	var stats TableStats

	counts := []struct {
		dst    *int64
		filter database.CountFilter
	}{
		{&stats.Total, database.CountFilter{}},
		{&stats.Defaults, database.CountFilter{ConfigType: string(ConfigTypeDefault)}},
		{&stats.Proposers, database.CountFilter{ConfigType: string(ConfigTypeProposer)}},
		{&stats.WithDefaults, database.CountFilter{WithDefaults: true}},
	}

	for _, c := range counts {
		n, err := adapter.CountConfigs(ctx, c.filter)
		if err != nil {
			return nil, fmt.Errorf("failed to collect stats: %w", err)
		}
		*c.dst = n
	}

	return &stats, nil
}
