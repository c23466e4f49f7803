package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"favsort/internal/logging"
	"favsort/internal/services/bilibili"
)

// Result classifies the outcome of reconciling one item.
type Result int

const (
	// ResultMoved means the move call succeeded.
	ResultMoved Result = iota
	// ResultSkippedInvalidCategory means the answer was absent or outside
	// the caller's target set; no mutation call was issued.
	ResultSkippedInvalidCategory
	// ResultSkippedUnresolvableDestination means the answer named a target
	// category with no matching live folder: the target list and the
	// folder list have diverged.
	ResultSkippedUnresolvableDestination
	// ResultFailed means the move call was issued and reported failure.
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultMoved:
		return "moved"
	case ResultSkippedInvalidCategory:
		return "skipped (invalid category)"
	case ResultSkippedUnresolvableDestination:
		return "skipped (unresolvable destination)"
	case ResultFailed:
		return "failed"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Outcome records the reconciliation of one item. Outcomes are produced once
// per item, in input order, and never retried.
type Outcome struct {
	Item     bilibili.Item
	Category string
	Result   Result
	Reason   string
}

// Mover issues the single-call move mutation. *bilibili.Client satisfies it.
type Mover interface {
	MoveItem(ctx context.Context, itemID, sourceFolderID, destFolderID int64) (bool, error)
}

// EngineOption customizes Engine construction.
type EngineOption func(*Engine)

// WithMoveDelay overrides the politeness delay between successive moves.
func WithMoveDelay(delay time.Duration) EngineOption {
	return func(e *Engine) {
		if delay >= 0 {
			e.moveDelay = delay
		}
	}
}

// WithSleeper overrides how politeness delays are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) EngineOption {
	return func(e *Engine) {
		if sleeper != nil {
			e.sleep = sleeper
		}
	}
}

// Engine reconciles answers into move operations.
type Engine struct {
	mover     Mover
	logger    *slog.Logger
	moveDelay time.Duration
	sleep     func(context.Context, time.Duration) error
}

// NewEngine constructs a reconciliation engine.
func NewEngine(mover Mover, logger *slog.Logger, opts ...EngineOption) *Engine {
	engine := &Engine{
		mover:     mover,
		logger:    logging.NewComponentLogger(logger, "organizer"),
		moveDelay: 500 * time.Millisecond,
		sleep: func(ctx context.Context, delay time.Duration) error {
			if delay <= 0 {
				return ctx.Err()
			}
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Reconcile resolves each answer to a destination folder and issues moves
// sequentially. Answers and items must be aligned index by index. Completed
// moves stay intact when the context is cancelled mid-run; the error return
// is reserved for cancellation and misuse, never for per-item failures.
func (e *Engine) Reconcile(
	ctx context.Context,
	sourceFolderID int64,
	items []bilibili.Item,
	answers []string,
	targets []string,
	folders []bilibili.Folder,
) ([]Outcome, error) {
	if len(items) != len(answers) {
		return nil, fmt.Errorf("organizer: %d items but %d answers", len(items), len(answers))
	}

	targetSet := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		targetSet[target] = struct{}{}
	}
	// The full folder list, not just the target subset: target names must
	// already correspond 1:1 with real folder titles, and a miss here is a
	// divergence worth reporting distinctly.
	folderIDs := make(map[string]int64, len(folders))
	for _, folder := range folders {
		if _, seen := folderIDs[folder.Title]; !seen {
			folderIDs[folder.Title] = folder.ID
		}
	}

	outcomes := make([]Outcome, 0, len(items))
	movesIssued := 0
	for i, item := range items {
		category := NormalizeCategory(answers[i])
		outcome := Outcome{Item: item, Category: category}

		switch {
		case category == "":
			outcome.Result = ResultSkippedInvalidCategory
			outcome.Reason = "no classification answer"
		case !memberOf(targetSet, category):
			outcome.Result = ResultSkippedInvalidCategory
			outcome.Reason = fmt.Sprintf("answer %q is not in the target set", category)
		default:
			destID, found := folderIDs[category]
			if !found {
				outcome.Result = ResultSkippedUnresolvableDestination
				outcome.Reason = fmt.Sprintf("no folder titled %q exists; target list and folder list have diverged", category)
				break
			}

			if movesIssued > 0 {
				if err := e.sleep(ctx, e.moveDelay); err != nil {
					return outcomes, err
				}
			}
			movesIssued++

			moved, err := e.mover.MoveItem(ctx, item.ID, sourceFolderID, destID)
			switch {
			case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
				return outcomes, err
			case err != nil:
				outcome.Result = ResultFailed
				outcome.Reason = err.Error()
				e.logger.Warn("move failed", logging.Int64("item_id", item.ID), logging.Error(err))
			case !moved:
				outcome.Result = ResultFailed
				outcome.Reason = "remote service rejected the move"
				e.logger.Warn("move rejected", logging.Int64("item_id", item.ID), logging.String("destination", category))
			default:
				outcome.Result = ResultMoved
				outcome.Reason = fmt.Sprintf("moved to %q", category)
				e.logger.Info("item moved",
					logging.Int64("item_id", item.ID),
					logging.String("destination", category))
			}
		}

		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// NormalizeCategory collapses locale-variant colon separators to the slash
// used in hierarchical folder titles, so "A：B", "A:B", and "A/B" compare
// equal.
func NormalizeCategory(answer string) string {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.ReplaceAll(trimmed, "：", "/")
	return strings.ReplaceAll(trimmed, ":", "/")
}

func memberOf(set map[string]struct{}, value string) bool {
	_, ok := set[value]
	return ok
}
