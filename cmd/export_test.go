package cmd

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/Lumos-Labs-HQ/execseed/internal/seeder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFile(t *testing.T) {
	plan := seeder.Plan{Defaults: 2, BoundProposers: 1, Proposers: 3}
	path := filepath.Join(t.TempDir(), "configs.jsonl")

	n, err := exportFile(path, seeder.FormatJSON, seeder.NewDataGenerator(31), plan)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	for scanner := bufio.NewScanner(f); scanner.Scan(); {
		lines++
	}
	assert.Equal(t, 5, lines)

	_, err = exportFile(filepath.Join(t.TempDir(), "missing", "out.yaml"), seeder.FormatYAML, seeder.NewDataGenerator(32), plan)
	assert.ErrorContains(t, err, "failed to create")
}
