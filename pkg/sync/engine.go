package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/staffsense/staffsense-engine/pkg/apperrors"
	"github.com/staffsense/staffsense-engine/pkg/documents"
	"github.com/staffsense/staffsense-engine/pkg/llm"
	"github.com/staffsense/staffsense-engine/pkg/models"
	"github.com/staffsense/staffsense-engine/pkg/repositories"
	"github.com/staffsense/staffsense-engine/pkg/retry"
)

// Outcome classifies a synchronization pass.
type Outcome string

const (
	OutcomeFullReingest    Outcome = "FULL_REINGEST"
	OutcomeNoUpdates       Outcome = "NO_UPDATES"
	OutcomeIncrementalDone Outcome = "INCREMENTAL_DONE"
	OutcomeFailed          Outcome = "FAILED"
)

// Result reports what a synchronization pass did.
type Result struct {
	Outcome   Outcome
	Total     int     // documents considered (all employees, or the stale set)
	Updated   int     // documents rebuilt and reinserted
	Failed    int     // per-id failures that were logged and skipped
	FailedIDs []int64 // ids of those failures, for operator follow-up
}

// DocumentIndex is the write surface of the similarity index.
type DocumentIndex interface {
	Upsert(ctx context.Context, doc models.Document, embedding []float32) error
	DeleteByEmployee(ctx context.Context, employeeID int64) error
}

// embedConcurrency bounds parallel embedding calls during full reingestion.
const embedConcurrency = 4

// Engine orchestrates synchronization between the HR database and the
// similarity index. A pass is either a full reingestion (no checkpoint) or
// an incremental reconciliation driven by the Detector. The engine is
// single-flight: a pass that starts while another is running returns
// apperrors.ErrSyncInProgress immediately.
type Engine struct {
	repo        repositories.EmployeeRepository
	detector    *Detector
	index       DocumentIndex
	embedder    llm.Embedder
	checkpoints CheckpointStore
	retryCfg    *retry.Config
	logger      *zap.Logger

	mu  gosync.Mutex
	now func() time.Time
}

// NewEngine creates a synchronization engine.
func NewEngine(
	repo repositories.EmployeeRepository,
	detector *Detector,
	index DocumentIndex,
	embedder llm.Embedder,
	checkpoints CheckpointStore,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		repo:        repo,
		detector:    detector,
		index:       index,
		embedder:    embedder,
		checkpoints: checkpoints,
		retryCfg:    retry.DefaultConfig(),
		logger:      logger.Named("sync"),
		now:         time.Now,
	}
}

// Sync runs one synchronization pass.
//
// No checkpoint persisted → full reingestion (the detector is never
// consulted). Checkpoint present and nothing stale → NO_UPDATES with the
// checkpoint left untouched: advancing it without matching completed work
// could mask errors between snapshot and index update. Otherwise each stale
// id is rebuilt with delete-before-insert; a single id's failure is logged
// and skipped, and the checkpoint still advances after the pass.
//
// A failure before any per-id work (store unreachable, checkpoint
// unreadable) aborts the pass with the checkpoint untouched, so the next
// tick retries from the same point.
func (e *Engine) Sync(ctx context.Context) (*Result, error) {
	if !e.mu.TryLock() {
		return &Result{Outcome: OutcomeFailed}, apperrors.ErrSyncInProgress
	}
	defer e.mu.Unlock()

	checkpoint, ok, err := e.checkpoints.Load(ctx)
	if err != nil {
		return &Result{Outcome: OutcomeFailed}, fmt.Errorf("load checkpoint: %w", err)
	}

	if !ok {
		e.logger.Info("no previous sync detected, running full reingestion")
		return e.fullReingest(ctx)
	}

	e.logger.Info("starting incremental sync", zap.Time("checkpoint", checkpoint))
	return e.incremental(ctx, checkpoint)
}

func (e *Engine) fullReingest(ctx context.Context) (*Result, error) {
	employees, err := e.repo.ListAll(ctx)
	if err != nil {
		return &Result{Outcome: OutcomeFailed}, fmt.Errorf("list employees: %w", err)
	}

	now := e.now()
	docs := make([]models.Document, len(employees))
	embeddings := make([][]float32, len(employees))

	// Build and embed every document; embeddings run with bounded
	// concurrency since they dominate the pass.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, emp := range employees {
		skills, err := e.repo.SkillsFor(ctx, emp.EmployeeID)
		if err != nil {
			return &Result{Outcome: OutcomeFailed}, fmt.Errorf("fetch skills for employee %d: %w", emp.EmployeeID, err)
		}
		doc, err := documents.Build(emp, skills, now)
		if err != nil {
			return &Result{Outcome: OutcomeFailed}, fmt.Errorf("build document for employee %d: %w", emp.EmployeeID, err)
		}
		docs[i] = doc

		g.Go(func() error {
			embedding, err := e.embed(gctx, doc.Content)
			if err != nil {
				return fmt.Errorf("embed document %s: %w", doc.ID, err)
			}
			embeddings[i] = embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &Result{Outcome: OutcomeFailed}, err
	}

	for i, doc := range docs {
		if err := e.index.Upsert(ctx, doc, embeddings[i]); err != nil {
			return &Result{Outcome: OutcomeFailed}, fmt.Errorf("upsert document %s: %w", doc.ID, err)
		}
	}

	if err := e.checkpoints.Save(ctx, e.now()); err != nil {
		return &Result{Outcome: OutcomeFailed}, fmt.Errorf("save checkpoint: %w", err)
	}

	e.logger.Info("full reingestion complete", zap.Int("documents", len(docs)))
	return &Result{Outcome: OutcomeFullReingest, Total: len(docs), Updated: len(docs)}, nil
}

func (e *Engine) incremental(ctx context.Context, checkpoint time.Time) (*Result, error) {
	staleIDs, err := e.detector.StaleEmployees(ctx, checkpoint)
	if err != nil {
		return &Result{Outcome: OutcomeFailed}, fmt.Errorf("detect stale employees: %w", err)
	}

	if len(staleIDs) == 0 {
		e.logger.Info("no updates found, index is up to date")
		return &Result{Outcome: OutcomeNoUpdates}, nil
	}

	e.logger.Info("employees requiring update", zap.Int64s("ids", staleIDs))

	result := &Result{Outcome: OutcomeIncrementalDone, Total: len(staleIDs)}
	for _, id := range staleIDs {
		if err := e.resync(ctx, id); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// Row disappeared between detection and fetch; the old
				// document stays until a future pass observes a change.
				e.logger.Warn("stale employee no longer present, skipping", zap.Int64("employee_id", id))
				continue
			}
			e.logger.Error("failed to resync employee",
				zap.Int64("employee_id", id),
				zap.Error(err))
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, id)
			continue
		}
		result.Updated++
		e.logger.Debug("employee updated", zap.Int64("employee_id", id))
	}

	if err := e.checkpoints.Save(ctx, e.now()); err != nil {
		return &Result{Outcome: OutcomeFailed}, fmt.Errorf("save checkpoint: %w", err)
	}

	e.logger.Info("incremental sync complete",
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed))
	return result, nil
}

// resync rebuilds one employee's document. The existing index entry is
// deleted before the fresh one is inserted so the index never serves a
// half-updated entry; a reader in that window simply misses this one
// document until the insert lands.
func (e *Engine) resync(ctx context.Context, employeeID int64) error {
	emp, err := e.repo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	skills, err := e.repo.SkillsFor(ctx, employeeID)
	if err != nil {
		return err
	}

	doc, err := documents.Build(emp, skills, e.now())
	if err != nil {
		return err
	}

	if err := e.index.DeleteByEmployee(ctx, employeeID); err != nil {
		return fmt.Errorf("delete stale entry: %w", err)
	}

	embedding, err := e.embed(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("embed document: %w", err)
	}

	if err := e.index.Upsert(ctx, doc, embedding); err != nil {
		return fmt.Errorf("insert rebuilt entry: %w", err)
	}
	return nil
}

// embed wraps the embedding call with backoff; transient endpoint failures
// should not fail an id outright.
func (e *Engine) embed(ctx context.Context, text string) ([]float32, error) {
	var embedding []float32
	err := retry.Do(ctx, e.retryCfg, func() error {
		var err error
		embedding, err = e.embedder.CreateEmbedding(ctx, text)
		return err
	})
	return embedding, err
}
