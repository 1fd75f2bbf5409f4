package processor

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"hopper/internal/config"
	"hopper/internal/fileutil"
	"hopper/internal/journal"
	"hopper/internal/logging"
	"hopper/internal/metadata"
	"hopper/internal/metrics"
	"hopper/internal/pipeline"
	"hopper/internal/queue"
	"hopper/internal/transform"
)

// Processor runs the per-task state machine.
type Processor struct {
	cfg    *config.Config
	store  *journal.Store
	logger *slog.Logger
}

// New constructs a processor bound to the shared journal. The store may be
// nil, in which case history recording is skipped.
func New(cfg *config.Config, store *journal.Store, logger *slog.Logger) *Processor {
	return &Processor{cfg: cfg, store: store, logger: logging.NewComponentLogger(logger, "processor")}
}

// Process takes a task to a terminal state. The returned error has already
// been logged and recorded; callers need it only to observe the outcome.
// Status order is fixed: the metadata record moves processing -> completed
// or processing -> failed, and relocation happens before the record is
// marked completed so a failed move still leaves a diagnostic record.
func (p *Processor) Process(ctx context.Context, task queue.Task) error {
	ctx = pipeline.WithTaskID(ctx, task.ID)
	logger := logging.WithContext(ctx, p.logger)
	started := time.Now()

	p.simulateDelay()

	logger.Info("processing file", logging.String(logging.FieldPath, task.Path))
	p.markProcessing(ctx, logger, task)

	metadataPath := queue.MetadataPath(task.Path)
	if err := metadata.Create(metadataPath, task.BaseName(), queue.StatusProcessing); err != nil {
		wrapped := pipeline.Wrap(pipeline.ErrMetadata, "processor", "create metadata record", task.Path, err)
		return p.fail(ctx, logger, task, started, wrapped, false)
	}

	content, err := os.ReadFile(task.Path)
	if err != nil {
		wrapped := pipeline.Wrap(pipeline.ErrRead, "processor", "read source file", task.Path, err)
		return p.fail(ctx, logger, task, started, wrapped, true)
	}

	processedPath := queue.ProcessedPath(task.Path)
	if err := transform.WriteFileAtomic(processedPath, transform.Upper(content)); err != nil {
		wrapped := pipeline.Wrap(pipeline.ErrWrite, "processor", "write processed file", processedPath, err)
		return p.fail(ctx, logger, task, started, wrapped, true)
	}

	if err := p.relocate(logger, task.Path, processedPath); err != nil {
		wrapped := pipeline.Wrap(pipeline.ErrRelocate, "processor", "relocate into output directory", task.Path, err)
		return p.fail(ctx, logger, task, started, wrapped, true)
	}

	if err := metadata.Update(metadataPath, queue.StatusCompleted, ""); err != nil {
		logger.Warn("could not mark metadata record completed",
			logging.String(logging.FieldPath, metadataPath), logging.Error(err))
	}
	if err := metadata.Remove(metadataPath); err != nil {
		logger.Warn("could not remove metadata record",
			logging.String(logging.FieldPath, metadataPath), logging.Error(err))
	}

	p.markCompleted(ctx, logger, task)
	elapsed := time.Since(started)
	metrics.TaskCompleted(elapsed)
	logger.Info("file completed",
		logging.String(logging.FieldPath, task.Path),
		logging.Duration("duration", elapsed),
	)
	return nil
}

// relocate moves the processed file first and the original last, so a
// failure never strands the original outside the input directory. On a
// partial move the processed file is returned to its staging spot.
func (p *Processor) relocate(logger *slog.Logger, originalPath, processedPath string) error {
	outputDir := p.cfg.Paths.OutputDir
	processedTarget := filepath.Join(outputDir, filepath.Base(processedPath))
	originalTarget := filepath.Join(outputDir, filepath.Base(originalPath))

	if err := fileutil.MoveFile(processedPath, processedTarget); err != nil {
		return fmt.Errorf("move processed file: %w", err)
	}
	if err := fileutil.MoveFile(originalPath, originalTarget); err != nil {
		if backErr := fileutil.MoveFile(processedTarget, processedPath); backErr != nil {
			logger.Warn("could not return processed file after failed relocation",
				logging.String(logging.FieldPath, processedTarget), logging.Error(backErr))
		}
		return fmt.Errorf("move original file: %w", err)
	}
	return nil
}

// fail records the terminal failed state. haveRecord is false only when the
// metadata record itself could not be created.
func (p *Processor) fail(ctx context.Context, logger *slog.Logger, task queue.Task, started time.Time, wrapped error, haveRecord bool) error {
	message := wrapped.Error()

	if haveRecord {
		if err := metadata.Update(queue.MetadataPath(task.Path), queue.StatusFailed, message); err != nil {
			logger.Warn("could not update metadata record after failure",
				logging.String(logging.FieldPath, task.Path), logging.Error(err))
		}
	}

	p.markFailed(ctx, logger, task, message)
	metrics.TaskFailed(time.Since(started))
	logger.Error("file processing failed",
		logging.String(logging.FieldPath, task.Path),
		logging.String("error_kind", pipeline.Kind(wrapped)),
		logging.Error(wrapped),
	)
	return wrapped
}

// simulateDelay sleeps for a uniformly distributed interval between the
// configured bounds. Disabled when the upper bound is zero.
func (p *Processor) simulateDelay() {
	minMS := p.cfg.Processing.DelayMinMS
	maxMS := p.cfg.Processing.DelayMaxMS
	if maxMS <= 0 || maxMS < minMS {
		return
	}
	delayMS := minMS
	if spread := maxMS - minMS; spread > 0 {
		delayMS += rand.Intn(spread + 1)
	}
	if delayMS > 0 {
		time.Sleep(time.Duration(delayMS) * time.Millisecond)
	}
}

func (p *Processor) markProcessing(ctx context.Context, logger *slog.Logger, task queue.Task) {
	if p.store == nil {
		return
	}
	if err := p.store.MarkProcessing(ctx, task.Path); err != nil {
		logger.Warn("could not journal processing state", logging.Error(err))
	}
}

func (p *Processor) markCompleted(ctx context.Context, logger *slog.Logger, task queue.Task) {
	if p.store == nil {
		return
	}
	if err := p.store.MarkCompleted(ctx, task.Path); err != nil {
		logger.Warn("could not journal completed state", logging.Error(err))
	}
}

func (p *Processor) markFailed(ctx context.Context, logger *slog.Logger, task queue.Task, message string) {
	if p.store == nil {
		return
	}
	if err := p.store.MarkFailed(ctx, task.Path, message); err != nil {
		logger.Warn("could not journal failed state", logging.Error(err))
	}
}
