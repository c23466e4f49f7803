package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"favsort/internal/classifier"
	"favsort/internal/logging"
	"favsort/internal/organizer"
	"favsort/internal/services/bilibili"
)

type fakeCatalog struct {
	folders     []bilibili.Folder
	items       []bilibili.Item
	itemsErr    error
	listedID    int64
	folderCalls int
}

func (f *fakeCatalog) ListFolders(_ context.Context) ([]bilibili.Folder, error) {
	f.folderCalls++
	return f.folders, nil
}

func (f *fakeCatalog) ListItems(_ context.Context, folderID int64) ([]bilibili.Item, error) {
	f.listedID = folderID
	return f.items, f.itemsErr
}

type fakeClassifier struct {
	answers [][]string
	batches [][]classifier.BatchItem
	err     error
}

func (f *fakeClassifier) ClassifyBatch(_ context.Context, items []classifier.BatchItem, _ []string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, items)
	answers := f.answers[len(f.batches)-1]
	return answers, nil
}

type recordingMover struct {
	calls []int64
	dests []int64
}

func (m *recordingMover) MoveItem(_ context.Context, itemID, _, destFolderID int64) (bool, error) {
	m.calls = append(m.calls, itemID)
	m.dests = append(m.dests, destFolderID)
	return true, nil
}

func noDelay(_ context.Context, _ time.Duration) error { return nil }

func TestRunClassifiesAndMoves(t *testing.T) {
	catalog := &fakeCatalog{
		folders: []bilibili.Folder{
			{ID: 1, Title: "Inbox"},
			{ID: 2, Title: "Music"},
			{ID: 3, Title: "Tech"},
		},
		items: []bilibili.Item{
			{ID: 100, Title: "guitar solo"},
			{ID: 200, Title: "compiler talk"},
			{ID: 300, Title: "piano cover"},
		},
	}
	cls := &fakeClassifier{answers: [][]string{{"Music", "Tech"}, {"Music"}}}
	mover := &recordingMover{}
	engine := organizer.NewEngine(mover, logging.NewNop(), organizer.WithSleeper(noDelay))

	var stages []Stage
	runner := NewRunner(catalog, cls, engine, logging.NewNop(), WithProgress(func(p Progress) {
		stages = append(stages, p.Stage)
	}))

	report, err := runner.Run(context.Background(), Request{
		SourceFolderID: 1,
		Targets:        []string{"Music", "Tech"},
		BatchSize:      2,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if catalog.listedID != 1 {
		t.Fatalf("expected items fetched from folder 1, got %d", catalog.listedID)
	}
	if len(cls.batches) != 2 {
		t.Fatalf("expected 2 classification batches, got %d", len(cls.batches))
	}
	if len(cls.batches[0]) != 2 || len(cls.batches[1]) != 1 {
		t.Fatalf("unexpected batch sizes: %d and %d", len(cls.batches[0]), len(cls.batches[1]))
	}
	if report.Moved != 3 || report.Skipped != 0 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	wantDests := []int64{2, 3, 2}
	for i, dest := range mover.dests {
		if dest != wantDests[i] {
			t.Fatalf("move %d: expected destination %d, got %d", i, wantDests[i], dest)
		}
	}
	if report.Outcomes[0].Item.ID != 100 || report.Outcomes[2].Item.ID != 300 {
		t.Fatalf("outcome order does not match input order: %+v", report.Outcomes)
	}
	if stages[0] != StageFetching || stages[len(stages)-1] != StageReconciling {
		t.Fatalf("unexpected stage sequence: %v", stages)
	}
}

func TestRunEmptyFolderIsNoOp(t *testing.T) {
	catalog := &fakeCatalog{}
	cls := &fakeClassifier{}
	runner := NewRunner(catalog, cls, nil, logging.NewNop())

	report, err := runner.Run(context.Background(), Request{SourceFolderID: 7, Targets: []string{"Music"}})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(report.Outcomes) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(report.Outcomes))
	}
	if catalog.folderCalls != 0 {
		t.Fatal("expected no folder listing for an empty source folder")
	}
	if len(cls.batches) != 0 {
		t.Fatal("expected no classification calls for an empty source folder")
	}
}

func TestRunRequiresTargets(t *testing.T) {
	runner := NewRunner(&fakeCatalog{}, &fakeClassifier{}, nil, logging.NewNop())
	if _, err := runner.Run(context.Background(), Request{SourceFolderID: 1}); err == nil {
		t.Fatal("expected error when no targets are provided")
	}
}

func TestRunPropagatesFetchError(t *testing.T) {
	catalog := &fakeCatalog{itemsErr: errors.New("upstream down")}
	runner := NewRunner(catalog, &fakeClassifier{}, nil, logging.NewNop())

	_, err := runner.Run(context.Background(), Request{SourceFolderID: 1, Targets: []string{"Music"}})
	if err == nil || !errors.Is(err, catalog.itemsErr) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
}

func TestRunPropagatesClassifierError(t *testing.T) {
	catalog := &fakeCatalog{
		folders: []bilibili.Folder{{ID: 1, Title: "Inbox"}},
		items:   []bilibili.Item{{ID: 100}},
	}
	cls := &fakeClassifier{err: context.Canceled}
	runner := NewRunner(catalog, cls, nil, logging.NewNop())

	_, err := runner.Run(context.Background(), Request{SourceFolderID: 1, Targets: []string{"Music"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected classifier error propagated, got %v", err)
	}
}

func TestRunSkipsAbsentAnswers(t *testing.T) {
	catalog := &fakeCatalog{
		folders: []bilibili.Folder{{ID: 1, Title: "Inbox"}, {ID: 2, Title: "Music"}},
		items:   []bilibili.Item{{ID: 100}, {ID: 200}},
	}
	cls := &fakeClassifier{answers: [][]string{{"", "Music"}}}
	mover := &recordingMover{}
	engine := organizer.NewEngine(mover, logging.NewNop(), organizer.WithSleeper(noDelay))
	runner := NewRunner(catalog, cls, engine, logging.NewNop())

	report, err := runner.Run(context.Background(), Request{SourceFolderID: 1, Targets: []string{"Music"}})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Moved != 1 || report.Skipped != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(mover.calls) != 1 || mover.calls[0] != 200 {
		t.Fatalf("expected only the answered item moved, got %v", mover.calls)
	}
}
