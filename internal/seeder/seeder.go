package seeder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/execseed/internal/database"
	"github.com/Lumos-Labs-HQ/execseed/internal/logger"
	"github.com/Lumos-Labs-HQ/execseed/internal/metrics"
	"github.com/sirupsen/logrus"
)

var ErrDuplicateConfig = errors.New("config id already exists")

const progressEvery = 10000

type Seeder struct {
	adapter   database.DatabaseAdapter
	generator *DataGenerator
	log       *logrus.Entry
	metrics   *metrics.Metrics
}

type Option func(*Seeder)

func WithGenerator(g *DataGenerator) Option {
	return func(s *Seeder) { s.generator = g }
}

func WithLogger(log *logrus.Entry) Option {
	return func(s *Seeder) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Seeder) { s.metrics = m }
}

// New returns a Seeder writing through adapter, which must already be
// connected. The caller keeps ownership of the adapter.
func New(adapter database.DatabaseAdapter, opts ...Option) *Seeder {
	s := &Seeder{
		adapter: adapter,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.generator == nil {
		s.generator = NewDataGenerator(0)
	}
	return s
}

// Seed generates plan and inserts every record inside one transaction. The
// transaction is committed only after the last insert; any failure rolls it
// back and nothing from the run is kept. Progress goes to the logger only.
func (s *Seeder) Seed(ctx context.Context, plan Plan) (result *Result, err error) {
	start := time.Now()
	s.log.WithFields(logrus.Fields{
		"defaults":        plan.Defaults,
		"bound_proposers": plan.BoundProposers,
		"proposers":       plan.Proposers,
	}).Info("seed run started")

	if s.metrics != nil {
		defer func() { s.metrics.Finish(time.Since(start), err) }()
	}

	tx, err := s.adapter.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.log.Debug("transaction started")

	committed := false
	defer func() {
		if committed {
			return
		}
		// ctx may already be cancelled; the rollback must still reach the server.
		if rbErr := tx.Rollback(context.Background()); rbErr != nil {
			s.log.WithError(rbErr).Error("rollback failed")
			err = fmt.Errorf("seed failed and rollback failed: %v (original: %w)", rbErr, err)
			return
		}
		s.log.Warn("transaction rolled back")
	}()

	result = &Result{}
	err = s.generator.Generate(plan, func(rec Record) error {
		return s.insert(ctx, tx, rec, result)
	})
	if err != nil {
		s.log.WithError(err).WithField("inserted", result.Total()).Error("seed run aborted")
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	result.Duration = time.Since(start)
	s.log.WithFields(logrus.Fields{
		"defaults":             result.Defaults,
		"bound_proposers":      result.BoundProposers,
		"standalone_proposers": result.StandaloneProposers,
		"duration":             result.Duration.String(),
	}).Info("seed run committed")

	return result, nil
}

func (s *Seeder) insert(ctx context.Context, tx database.Tx, rec Record, result *Result) error {
	body, err := json.Marshal(rec.Config)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", rec.ID, err)
	}

	row := database.ConfigRow{
		ConfigID:       rec.ID,
		ConfigType:     string(rec.Type),
		DefaultConfigs: rec.Config.DefaultConfigs,
		Config:         string(body),
	}

	if err := tx.InsertConfig(ctx, row); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s: %w", ErrDuplicateConfig, rec.ID, err)
		}
		return fmt.Errorf("failed to insert %s: %w", rec.ID, err)
	}

	kind := metrics.KindStandaloneProposer
	switch {
	case rec.Type == ConfigTypeDefault:
		kind = metrics.KindDefault
		result.Defaults++
	case len(rec.Config.DefaultConfigs) > 0:
		kind = metrics.KindBoundProposer
		result.BoundProposers++
	default:
		result.StandaloneProposers++
	}
	if s.metrics != nil {
		s.metrics.IncRow(kind)
	}

	if n := result.Total(); n%progressEvery == 0 {
		s.log.WithField("inserted", n).Info("seed progress")
	}
	return nil
}
