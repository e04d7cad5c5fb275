package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kailas-cloud/staysearch/internal/dataset"
	dombatch "github.com/kailas-cloud/staysearch/internal/domain/batch"
	"github.com/kailas-cloud/staysearch/internal/domain/listing"
	"github.com/kailas-cloud/staysearch/internal/metrics"
)

// DefaultProgressEvery is how often progress is logged, in records.
const DefaultProgressEvery = 100

// Service sets up the index and loads the dataset.
type Service struct {
	repo          Repository
	schema        Schema
	logger        *zap.Logger
	progressEvery int
}

// New creates an ingestion service.
func New(repo Repository, schema Schema, logger *zap.Logger) *Service {
	return &Service{
		repo:          repo,
		schema:        schema,
		logger:        logger,
		progressEvery: DefaultProgressEvery,
	}
}

// WithProgressEvery configures the progress log cadence.
func (s *Service) WithProgressEvery(n int) *Service {
	if n > 0 {
		s.progressEvery = n
	}
	return s
}

// Setup creates the index. An existing index is not an error.
func (s *Service) Setup(ctx context.Context) error {
	created, err := s.schema.EnsureIndex(ctx)
	if err != nil {
		return fmt.Errorf("setup index: %w", err)
	}
	if created {
		s.logger.Info("Index created")
	} else {
		s.logger.Info("Index already exists")
	}
	return nil
}

// Loaded reports whether the store already holds any key, in which case a
// load is skipped. Callers check it before opening the dataset.
func (s *Service) Loaded(ctx context.Context) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("check loaded: %w", err)
	}
	if n > 0 {
		s.logger.Info("Data already loaded, skipping", zap.Int64("keys", n))
		return true, nil
	}
	return false, nil
}

// Load writes every record from src into the store. If the store already
// holds any key the run is skipped entirely. Records are independent: a
// record that fails to decode, normalize or write is collected in the
// summary and the run moves on. Only a broken source or a cancelled context
// ends the run early; the partial summary is returned with the error.
func (s *Service) Load(ctx context.Context, src Source) (dombatch.Summary, error) {
	var summary dombatch.Summary

	loaded, err := s.Loaded(ctx)
	if err != nil {
		return summary, err
	}
	if loaded {
		summary.AlreadyLoaded = true
		return summary, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("load interrupted: %w", err)
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var recErr *dataset.RecordError
			if !errors.As(err, &recErr) {
				return summary, fmt.Errorf("read dataset: %w", err)
			}
			s.add(&summary, dombatch.NewFailed(recordID(recErr), err))
			continue
		}

		s.add(&summary, s.loadOne(ctx, &rec))
	}

	s.logger.Info("Data insertion complete",
		zap.Int("total", summary.Total),
		zap.Int("loaded", summary.Loaded),
		zap.Int("failed", summary.Failed()),
	)
	return summary, nil
}

func (s *Service) loadOne(ctx context.Context, rec *listing.Record) dombatch.Result {
	l, err := listing.FromRecord(rec)
	if err != nil {
		return dombatch.NewFailed(rec.ID, err)
	}
	if err := s.repo.Save(ctx, &l); err != nil {
		return dombatch.NewFailed(rec.ID, err)
	}
	return dombatch.NewLoaded(rec.ID)
}

func (s *Service) add(summary *dombatch.Summary, r dombatch.Result) {
	summary.Add(r)
	metrics.IngestRecordsTotal.WithLabelValues(string(r.Status())).Inc()

	if r.Status() == dombatch.StatusFailed {
		s.logger.Warn("Failed to load record", zap.String("id", r.ID()), zap.Error(r.Err()))
	}
	if summary.Total%s.progressEvery == 0 {
		s.logger.Info("Loading progress", zap.Int("processed", summary.Total), zap.Int("loaded", summary.Loaded))
	}
}

func recordID(e *dataset.RecordError) string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("#%d", e.Index)
}
