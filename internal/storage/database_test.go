package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/conorfennell/quizdeck/internal/domain"
	"github.com/conorfennell/quizdeck/internal/knol"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open() returned an unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("Open() #%d returned an unexpected error: %v", i+1, err)
		}
		db.Close()
	}
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return base }

	run, err := db.StartRun()
	if err != nil {
		t.Fatalf("StartRun() returned an unexpected error: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected a run id")
	}

	cards := []domain.Card{{Term: "Pod", Definition: "A group of containers."}}
	if err := run.DeckWritten("DevOps/Kubernetes", "/notes/DevOps/kubernetes.md", "generated", cards); err != nil {
		t.Fatalf("DeckWritten() returned an unexpected error: %v", err)
	}
	if err := run.DeckWritten("DevOps/Docker", "/categories/DevOps/Docker/questions.json", "merged", cards); err != nil {
		t.Fatalf("DeckWritten() returned an unexpected error: %v", err)
	}

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].FinishedAt != nil {
		t.Fatalf("expected one unfinished run, got %+v", runs)
	}

	db.now = func() time.Time { return base.Add(time.Minute) }
	summary := domain.RunSummary{DecksWritten: 1, CardsWritten: 1, DecksMerged: 1, CardsMerged: 1}
	if err := run.Finished(summary); err != nil {
		t.Fatalf("Finished() returned an unexpected error: %v", err)
	}

	runs, err = db.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	got := runs[0]
	if got.FinishedAt == nil || !got.FinishedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("unexpected finish time %v", got.FinishedAt)
	}
	if !got.StartedAt.Equal(base) {
		t.Errorf("unexpected start time %v", got.StartedAt)
	}
	if got.DecksWritten != 1 || got.CardsWritten != 1 || got.CardsMerged != 1 {
		t.Errorf("unexpected totals %+v", got)
	}

	writes, err := db.DeckWrites(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(writes) != 2 {
		t.Fatalf("expected 2 deck writes, got %+v", writes)
	}
	if writes[0].DeckID != "DevOps/Kubernetes" || writes[0].Kind != "generated" || writes[0].Cards != 1 {
		t.Errorf("unexpected first write %+v", writes[0])
	}
	if writes[0].Hash != knol.Hash(cards) {
		t.Errorf("expected content hash %s, got %s", knol.Hash(cards), writes[0].Hash)
	}
	if writes[1].Kind != "merged" {
		t.Errorf("unexpected second write %+v", writes[1])
	}
}

func TestRejectsUnknownKind(t *testing.T) {
	db := openTestDB(t)
	run, err := db.StartRun()
	if err != nil {
		t.Fatal(err)
	}
	if err := run.DeckWritten("A/B", "/notes/A/b.md", "deleted", nil); err == nil {
		t.Error("expected an error for an unknown write kind")
	}
}

func TestRecentRunsOrderAndLimit(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		db.now = func() time.Time { return at }
		run, err := db.StartRun()
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := db.RecentRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}
