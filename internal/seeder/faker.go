package seeder

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

var ErrSampleOutOfRange = errors.New("sample larger than population")

const (
	defaultGasLimitMin  = 1_000_000
	defaultGasLimitMax  = 10_000_000
	proposerGasLimitMin = 200_000
	proposerGasLimitMax = 500_000
	graceMin            = 500
	graceMax            = 1000

	// defaultsPerProposer is how many default configs a bound proposer references.
	defaultsPerProposer = 2
)

type DataGenerator struct {
	rand *rand.Rand
}

// NewDataGenerator returns a generator seeded with seed, or with the current
// time when seed is 0.
func NewDataGenerator(seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (g *DataGenerator) Address() Address {
	var a Address
	g.rand.Read(a[:])
	return a
}

func (g *DataGenerator) DefaultConfig() ExecutionConfig {
	return ExecutionConfig{
		FeeRecipient: g.Address(),
		GasLimit:     g.intn(defaultGasLimitMin, defaultGasLimitMax),
		MinValue:     g.minValue(),
		Grace:        g.intn(graceMin, graceMax),
		Relays:       map[string]Relay{},
	}
}

func (g *DataGenerator) Proposer() ExecutionConfig {
	return ExecutionConfig{
		FeeRecipient: g.Address(),
		GasLimit:     g.intn(proposerGasLimitMin, proposerGasLimitMax),
		MinValue:     g.minValue(),
		Grace:        g.intn(graceMin, graceMax),
		Relays:       map[string]Relay{},
	}
}

// ProposerWithDefaults returns a proposer config bound to two distinct ids
// drawn from pool.
func (g *DataGenerator) ProposerWithDefaults(pool []string) (ExecutionConfig, error) {
	cfg := g.Proposer()
	reset := g.rand.Intn(2) == 1
	cfg.ResetRelays = &reset

	defaults, err := g.Sample(pool, defaultsPerProposer)
	if err != nil {
		return ExecutionConfig{}, err
	}
	cfg.DefaultConfigs = defaults
	return cfg, nil
}

// Sample picks n distinct entries of pool without replacement. pool is not
// modified.
func (g *DataGenerator) Sample(pool []string, n int) ([]string, error) {
	if n < 0 || n > len(pool) {
		return nil, fmt.Errorf("%w: want %d of %d", ErrSampleOutOfRange, n, len(pool))
	}

	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	for i := 0; i < n; i++ {
		j := i + g.rand.Intn(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n], nil
}

// Generate walks plan in insertion order (defaults, bound proposers,
// standalone proposers) and hands each record to emit as soon as it is built.
// It stops at the first error from emit.
func (g *DataGenerator) Generate(plan Plan, emit func(Record) error) error {
	pool := make([]string, 0, plan.Defaults)
	for i := 1; i <= plan.Defaults; i++ {
		rec := Record{
			ID:     fmt.Sprintf("default%d", i),
			Type:   ConfigTypeDefault,
			Config: g.DefaultConfig(),
		}
		if err := emit(rec); err != nil {
			return err
		}
		pool = append(pool, rec.ID)
	}

	for i := 1; i <= plan.Proposers; i++ {
		rec := Record{
			ID:   fmt.Sprintf("proposer%d", i),
			Type: ConfigTypeProposer,
		}
		if i <= plan.BoundProposers {
			cfg, err := g.ProposerWithDefaults(pool)
			if err != nil {
				return fmt.Errorf("failed to generate %s: %w", rec.ID, err)
			}
			rec.Config = cfg
		} else {
			rec.Config = g.Proposer()
		}
		if err := emit(rec); err != nil {
			return err
		}
	}

	return nil
}

func (g *DataGenerator) intn(lo, hi int) int {
	return lo + g.rand.Intn(hi-lo+1)
}

func (g *DataGenerator) minValue() float64 {
	return math.Round(g.rand.Float64()*100) / 100
}
