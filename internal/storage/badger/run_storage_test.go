package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/interfaces"
	"github.com/ternarybob/scaena/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

func testDB(t *testing.T) *BadgerDB {
	t.Helper()

	options := badgerhold.DefaultOptions
	options.Dir = t.TempDir()
	options.ValueDir = options.Dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store, logger: arbor.NewLogger()}
}

func sampleRun(id string, createdAt time.Time, needsReview ...int) *models.ProcessingRun {
	return &models.ProcessingRun{
		ID:               id,
		Viewport:         models.Viewport{Width: 1280, Height: 720},
		TotalDuration:    12.5,
		ElementCount:     7,
		NeedsReviewSteps: needsReview,
		CreatedAt:        createdAt,
	}
}

func TestRunStorageSaveAndGet(t *testing.T) {
	storage := NewRunStorage(testDB(t), arbor.NewLogger())
	ctx := context.Background()

	run := sampleRun("run_1", time.Now())
	if err := storage.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}

	got, err := storage.GetRun(ctx, "run_1")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if got.ID != "run_1" || got.TotalDuration != 12.5 || got.ElementCount != 7 {
		t.Errorf("GetRun() = %+v, round trip mismatch", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("SaveRun() did not stamp UpdatedAt")
	}
}

func TestRunStorageRequiresID(t *testing.T) {
	storage := NewRunStorage(testDB(t), arbor.NewLogger())

	if err := storage.SaveRun(context.Background(), &models.ProcessingRun{}); err == nil {
		t.Fatal("SaveRun() accepted a run without ID")
	}
}

func TestRunStorageGetMissing(t *testing.T) {
	storage := NewRunStorage(testDB(t), arbor.NewLogger())

	if _, err := storage.GetRun(context.Background(), "run_missing"); err == nil {
		t.Fatal("GetRun() returned no error for missing run")
	}
}

func TestRunStorageListNewestFirst(t *testing.T) {
	storage := NewRunStorage(testDB(t), arbor.NewLogger())
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"run_a", "run_b", "run_c"} {
		if err := storage.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := storage.ListRuns(ctx, nil)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	if runs[0].ID != "run_c" || runs[2].ID != "run_a" {
		t.Errorf("order = [%s %s %s], want newest first", runs[0].ID, runs[1].ID, runs[2].ID)
	}

	limited, err := storage.ListRuns(ctx, &interfaces.RunListOptions{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("limit ignored, got %d runs", len(limited))
	}
}

func TestRunStorageListNeedsReviewOnly(t *testing.T) {
	storage := NewRunStorage(testDB(t), arbor.NewLogger())
	ctx := context.Background()

	now := time.Now()
	if err := storage.SaveRun(ctx, sampleRun("run_clean", now)); err != nil {
		t.Fatal(err)
	}
	if err := storage.SaveRun(ctx, sampleRun("run_flagged", now, 1, 3)); err != nil {
		t.Fatal(err)
	}

	runs, err := storage.ListRuns(ctx, &interfaces.RunListOptions{NeedsReviewOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != "run_flagged" {
		t.Errorf("NeedsReviewOnly returned %d runs, want only run_flagged", len(runs))
	}
}

func TestRunStorageListNeedsReviewPastLimit(t *testing.T) {
	storage := NewRunStorage(testDB(t), arbor.NewLogger())
	ctx := context.Background()

	// The 5 oldest of 25 runs are flagged, so none of them sit in the
	// newest-first page of 20. The filter must see the whole set before
	// limit and offset apply.
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		run := sampleRun(fmt.Sprintf("run_%02d", i), base.Add(time.Duration(i)*time.Minute))
		if i < 5 {
			run.NeedsReviewSteps = []int{1}
		}
		if err := storage.SaveRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := storage.ListRuns(ctx, &interfaces.RunListOptions{Limit: 20, NeedsReviewOnly: true})
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 5 {
		t.Fatalf("got %d flagged runs, want 5", len(runs))
	}
	if runs[0].ID != "run_04" || runs[4].ID != "run_00" {
		t.Errorf("flagged order = [%s .. %s], want run_04 .. run_00", runs[0].ID, runs[4].ID)
	}

	paged, err := storage.ListRuns(ctx, &interfaces.RunListOptions{Limit: 2, Offset: 2, NeedsReviewOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(paged) != 2 || paged[0].ID != "run_02" || paged[1].ID != "run_01" {
		t.Errorf("offset page = %+v, want [run_02 run_01]", paged)
	}

	empty, err := storage.ListRuns(ctx, &interfaces.RunListOptions{Offset: 10, NeedsReviewOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("offset past filtered set returned %d runs, want 0", len(empty))
	}
}

func TestRunStorageDelete(t *testing.T) {
	storage := NewRunStorage(testDB(t), arbor.NewLogger())
	ctx := context.Background()

	if err := storage.SaveRun(ctx, sampleRun("run_1", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := storage.DeleteRun(ctx, "run_1"); err != nil {
		t.Fatalf("DeleteRun() error: %v", err)
	}
	if _, err := storage.GetRun(ctx, "run_1"); err == nil {
		t.Error("run still present after delete")
	}

	// Deleting a missing run is a no-op.
	if err := storage.DeleteRun(ctx, "run_1"); err != nil {
		t.Errorf("DeleteRun() on missing run: %v", err)
	}
}

func TestRunStorageDeleteRunsBefore(t *testing.T) {
	storage := NewRunStorage(testDB(t), arbor.NewLogger())
	ctx := context.Background()

	cutoff := time.Now()
	if err := storage.SaveRun(ctx, sampleRun("run_old", cutoff.Add(-48*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := storage.SaveRun(ctx, sampleRun("run_new", cutoff.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	deleted, err := storage.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("DeleteRunsBefore() error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted %d runs, want 1", deleted)
	}

	count, err := storage.CountRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("CountRuns() = %d, want 1", count)
	}
	if _, err := storage.GetRun(ctx, "run_new"); err != nil {
		t.Errorf("recent run was purged: %v", err)
	}
}

func TestKVStorageCaseInsensitive(t *testing.T) {
	storage := NewKVStorage(testDB(t), arbor.NewLogger())
	ctx := context.Background()

	if err := storage.Set(ctx, "Render-Host", "localhost:9000"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, err := storage.Get(ctx, "render-host")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got != "localhost:9000" {
		t.Errorf("Get() = %q, want localhost:9000", got)
	}

	if _, err := storage.Get(ctx, "missing"); err != interfaces.ErrKeyNotFound {
		t.Errorf("Get(missing) = %v, want ErrKeyNotFound", err)
	}

	if err := storage.Delete(ctx, "RENDER-HOST"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := storage.Get(ctx, "render-host"); err != interfaces.ErrKeyNotFound {
		t.Error("key still present after delete")
	}
}
