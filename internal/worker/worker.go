// Package worker consumes Maven coordinates from NATS and generates call graphs
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	javacgnats "github.com/fastenhq/javacg/internal/nats"
	"github.com/fastenhq/javacg/internal/pipeline"
	"github.com/fastenhq/javacg/internal/store"
)

// Worker processes one revision at a time from the maven consumer
type Worker struct {
	workerID   string
	nats       *javacgnats.Client
	builder    *pipeline.Builder
	store      *store.Store // optional
	repos      []string
	outputDir  string
	consumer   jetstream.Consumer
	pollPeriod time.Duration
}

// Config configures a revision worker
type Config struct {
	WorkerID  string
	NATS      *javacgnats.Client
	Builder   *pipeline.Builder
	Store     *store.Store // nil disables outcome recording
	Repos     []string
	OutputDir string
}

// New creates a new revision worker
func New(cfg Config) *Worker {
	workerID := cfg.WorkerID
	if workerID == "" {
		workerID = fmt.Sprintf("maven-%s", uuid.New().String()[:8])
	}

	return &Worker{
		workerID:   workerID,
		nats:       cfg.NATS,
		builder:    cfg.Builder,
		store:      cfg.Store,
		repos:      cfg.Repos,
		outputDir:  cfg.OutputDir,
		pollPeriod: 5 * time.Second,
	}
}

// Name returns the worker's unique ID
func (w *Worker) Name() string {
	return w.workerID
}

// SetPollPeriod sets the fetch wait interval
func (w *Worker) SetPollPeriod(d time.Duration) {
	w.pollPeriod = d
}

// Run starts the worker processing loop
func (w *Worker) Run(ctx context.Context) error {
	logger := log.With().Str("worker_id", w.workerID).Logger()

	if w.nats == nil || !w.nats.IsConnected() {
		return fmt.Errorf("not connected to NATS")
	}

	consumer, err := w.nats.JetStream().Consumer(ctx, javacgnats.StreamJobs, javacgnats.ConsumerMaven)
	if err != nil {
		return fmt.Errorf("failed to get consumer: %w", err)
	}
	w.consumer = consumer

	logger.Info().Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("worker stopping")
			return nil
		default:
			if err := w.processNext(ctx); err != nil {
				logger.Error().Err(err).Msg("error processing revision")
			}
		}
	}
}

// processNext fetches and processes the next available revision
func (w *Worker) processNext(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, w.pollPeriod)
	defer cancel()

	msgs, err := w.consumer.Fetch(1, jetstream.FetchMaxWait(w.pollPeriod))
	if err != nil {
		if err == context.DeadlineExceeded || fetchCtx.Err() != nil {
			return nil // Normal timeout, no revisions queued
		}
		return fmt.Errorf("failed to fetch from NATS: %w", err)
	}

	for msg := range msgs.Messages() {
		var rec pipeline.Record
		if err := json.Unmarshal(msg.Data(), &rec); err != nil {
			log.Error().Err(err).Msg("failed to decode revision record")
			// A malformed record never succeeds on redelivery
			msg.Term()
			continue
		}

		w.ProcessRecord(ctx, rec)
		msg.Ack()
	}

	if msgs.Error() != nil && msgs.Error() != context.DeadlineExceeded {
		return msgs.Error()
	}

	return nil
}

// ProcessRecord generates, writes and records the call graph for one coordinate
func (w *Worker) ProcessRecord(ctx context.Context, rec pipeline.Record) {
	coord := rec.Coordinate()
	coord.SetRepos(w.repos)
	logger := log.With().Str("worker_id", w.workerID).Str("coordinate", coord.String()).Logger()

	start := time.Now()
	rcg, err := w.builder.FromCoordinate(ctx, coord, rec.Date)
	revisionDuration.Observe(time.Since(start).Seconds())

	rev := &store.Revision{
		GroupID:    rec.GroupID,
		ArtifactID: rec.ArtifactID,
		Version:    rec.Version,
	}

	if err != nil {
		kind := string(pipeline.Classify(err))
		logger.Error().Err(err).Str("kind", kind).Msg("failed to generate call graph")

		revisionsProcessed.WithLabelValues(store.StatusFailed).Inc()
		revisionFailures.WithLabelValues(kind).Inc()

		msg := err.Error()
		rev.Status = store.StatusFailed
		rev.FailureKind = &kind
		rev.Error = &msg
		w.record(ctx, rev)
		return
	}

	rev.InternalCalls = len(rcg.Graph.InternalCalls())
	rev.ExternalCalls = len(rcg.Graph.ExternalCalls())

	if rcg.IsEmpty() {
		logger.Warn().Msg("empty call graph, skipping output")
		revisionsProcessed.WithLabelValues(store.StatusEmpty).Inc()
		rev.Status = store.StatusEmpty
		w.record(ctx, rev)
		return
	}

	path, err := pipeline.WriteRevision(rcg, w.artifactDir(rec.ArtifactID))
	if err != nil {
		kind := string(pipeline.FailureInternal)
		logger.Error().Err(err).Msg("failed to write call graph")

		revisionsProcessed.WithLabelValues(store.StatusFailed).Inc()
		revisionFailures.WithLabelValues(kind).Inc()

		msg := err.Error()
		rev.Status = store.StatusFailed
		rev.FailureKind = &kind
		rev.Error = &msg
		w.record(ctx, rev)
		return
	}

	logger.Info().
		Int("internal_calls", rev.InternalCalls).
		Int("external_calls", rev.ExternalCalls).
		Str("path", path).
		Msg("call graph generated")

	revisionsProcessed.WithLabelValues(store.StatusCompleted).Inc()
	rev.Status = store.StatusCompleted
	rev.OutputPath = &path
	w.record(ctx, rev)
}

// artifactDir shards output directories by the artifact's first letter
func (w *Worker) artifactDir(artifactID string) string {
	first := artifactID
	if len(first) > 0 {
		first = first[:1]
	}
	return filepath.Join(w.outputDir, "mvn", first, artifactID)
}

func (w *Worker) record(ctx context.Context, rev *store.Revision) {
	if w.store == nil {
		return
	}
	if err := w.store.SaveRevision(ctx, rev); err != nil {
		log.Error().Err(err).
			Str("coordinate", fmt.Sprintf("%s:%s:%s", rev.GroupID, rev.ArtifactID, rev.Version)).
			Msg("failed to record revision outcome")
	}
}
