package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"favsort/internal/classifier"
	"favsort/internal/logging"
	"favsort/internal/organizer"
	"favsort/internal/services/bilibili"
)

// Catalog is the slice of the favorites API the pipeline reads from.
// *bilibili.Client satisfies it.
type Catalog interface {
	ListFolders(ctx context.Context) ([]bilibili.Folder, error)
	ListItems(ctx context.Context, folderID int64) ([]bilibili.Item, error)
}

// Classifier maps item batches to target categories. *classifier.Client
// satisfies it.
type Classifier interface {
	ClassifyBatch(ctx context.Context, items []classifier.BatchItem, targets []string) ([]string, error)
}

// Reconciler turns aligned items and answers into move outcomes.
// *organizer.Engine satisfies it.
type Reconciler interface {
	Reconcile(ctx context.Context, sourceFolderID int64, items []bilibili.Item, answers []string, targets []string, folders []bilibili.Folder) ([]organizer.Outcome, error)
}

// Progress receives run milestones for interactive display. Any field may be
// zero when the callback fires before that stage has produced numbers.
type Progress struct {
	Stage        Stage
	ItemsTotal   int
	BatchIndex   int
	BatchCount   int
	ItemsHandled int
}

// Stage names a pipeline phase.
type Stage string

const (
	StageFetching    Stage = "fetching"
	StageClassifying Stage = "classifying"
	StageReconciling Stage = "reconciling"
)

// Request describes one classification run.
type Request struct {
	SourceFolderID int64
	Targets        []string
	BatchSize      int
}

// Report summarizes a completed run.
type Report struct {
	Outcomes []organizer.Outcome
	Moved    int
	Skipped  int
	Failed   int
}

// Option customizes Runner construction.
type Option func(*Runner)

// WithProgress installs a progress callback.
func WithProgress(notify func(Progress)) Option {
	return func(r *Runner) {
		if notify != nil {
			r.notify = notify
		}
	}
}

// Runner executes classification runs.
type Runner struct {
	catalog    Catalog
	classifier Classifier
	reconciler Reconciler
	logger     *slog.Logger
	notify     func(Progress)
}

// NewRunner wires the three pipeline stages together.
func NewRunner(catalog Catalog, cls Classifier, rec Reconciler, logger *slog.Logger, opts ...Option) *Runner {
	runner := &Runner{
		catalog:    catalog,
		classifier: cls,
		reconciler: rec,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		notify:     func(Progress) {},
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Run executes one full fetch, classify, reconcile cycle. An empty source
// folder is a successful no-op. Classification answers stay aligned with the
// fetched item order across batch boundaries.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	if len(req.Targets) == 0 {
		return nil, fmt.Errorf("pipeline: no target categories")
	}
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	r.notify(Progress{Stage: StageFetching})
	items, err := r.catalog.ListItems(ctx, req.SourceFolderID)
	if err != nil {
		return nil, fmt.Errorf("fetch source folder %d: %w", req.SourceFolderID, err)
	}
	r.logger.Info("source folder fetched",
		logging.Int64("folder_id", req.SourceFolderID),
		logging.Int("items", len(items)))
	if len(items) == 0 {
		return &Report{}, nil
	}

	folders, err := r.catalog.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch folder list: %w", err)
	}

	batchCount := (len(items) + batchSize - 1) / batchSize
	answers := make([]string, 0, len(items))
	for batch := 0; batch < batchCount; batch++ {
		start := batch * batchSize
		end := min(start+batchSize, len(items))
		r.notify(Progress{
			Stage:        StageClassifying,
			ItemsTotal:   len(items),
			BatchIndex:   batch + 1,
			BatchCount:   batchCount,
			ItemsHandled: start,
		})

		batchItems := make([]classifier.BatchItem, 0, end-start)
		for _, item := range items[start:end] {
			batchItems = append(batchItems, classifier.BatchItem{
				Title:       item.Title,
				Description: item.Description,
			})
		}
		batchAnswers, err := r.classifier.ClassifyBatch(ctx, batchItems, req.Targets)
		if err != nil {
			return nil, fmt.Errorf("classify batch %d/%d: %w", batch+1, batchCount, err)
		}
		answers = append(answers, batchAnswers...)
	}

	r.notify(Progress{Stage: StageReconciling, ItemsTotal: len(items), ItemsHandled: len(items)})
	outcomes, err := r.reconciler.Reconcile(ctx, req.SourceFolderID, items, answers, req.Targets, folders)
	if err != nil {
		return nil, err
	}

	report := &Report{Outcomes: outcomes}
	for _, outcome := range outcomes {
		switch outcome.Result {
		case organizer.ResultMoved:
			report.Moved++
		case organizer.ResultFailed:
			report.Failed++
		default:
			report.Skipped++
		}
	}
	r.logger.Info("run complete",
		logging.Int("moved", report.Moved),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed))
	return report, nil
}
