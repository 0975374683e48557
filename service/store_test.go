package service

import (
	"testing"
	"time"

	"expedientes-backend/models"
)

func newTestRecord(id string) *models.CaseRecord {
	return &models.CaseRecord{
		ID:         id,
		FileName:   id + ".pdf",
		UploadDate: time.Now(),
		Status:     models.StatusPending,
		Analysis:   models.EmptyCaseData(),
	}
}

func TestCaseStoreAddListNewestFirst(t *testing.T) {
	store := NewCaseStore()
	store.Add(newTestRecord("a"))
	store.Add(newTestRecord("b"))

	list := store.List()
	if len(list) != 2 {
		t.Fatalf("got %d records, want 2", len(list))
	}
	if list[0].ID != "b" || list[1].ID != "a" {
		t.Errorf("order = [%s %s], want [b a]", list[0].ID, list[1].ID)
	}
}

func TestCaseStoreLifecycle(t *testing.T) {
	store := NewCaseStore()
	store.Add(newTestRecord("a"))

	if err := store.MarkAnalyzing("a"); err != nil {
		t.Fatal(err)
	}
	rec, _ := store.Get("a")
	if rec.Status != models.StatusAnalyzing {
		t.Errorf("status = %s, want analyzing", rec.Status)
	}

	data := models.EmptyCaseData()
	data.Rit.Value = "P-99-2026"
	if err := store.Complete("a", data, "P-99-2026.pdf"); err != nil {
		t.Fatal(err)
	}
	rec, _ = store.Get("a")
	if rec.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", rec.Status)
	}
	if rec.FileName != "P-99-2026.pdf" {
		t.Errorf("file name = %q, want renamed", rec.FileName)
	}

	// Terminal states stick.
	if err := store.Fail("a"); err != nil {
		t.Fatal(err)
	}
	rec, _ = store.Get("a")
	if rec.Status != models.StatusCompleted {
		t.Errorf("status changed after terminal state: %s", rec.Status)
	}
}

// Get and List hand out copies, so a reader holding a record is isolated
// from the background goroutine completing the analysis. Readers run
// blindly against the returned value while writes land in the store.
func TestCaseStoreReadsAreSnapshots(t *testing.T) {
	store := NewCaseStore()
	store.Add(newTestRecord("a"))

	before, err := store.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	listed := store.List()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = before.Status
			_ = before.FileName
			_ = before.Analysis.Rit.Value
			_ = listed[0].PageCount
		}
	}()

	_ = store.MarkAnalyzing("a")
	_ = store.SetPageCount("a", 7)
	data := models.EmptyCaseData()
	data.Rit.Value = "P-77-2026"
	if err := store.Complete("a", data, "P-77-2026.pdf"); err != nil {
		t.Fatal(err)
	}
	<-done

	if before.Status != models.StatusPending || before.FileName != "a.pdf" {
		t.Errorf("snapshot mutated: status=%s name=%s", before.Status, before.FileName)
	}
	if listed[0].PageCount != 0 {
		t.Errorf("listed snapshot mutated: pages=%d", listed[0].PageCount)
	}

	after, err := store.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if after.Status != models.StatusCompleted || after.FileName != "P-77-2026.pdf" || after.PageCount != 7 {
		t.Errorf("store state = %s/%s/%d, want completed/P-77-2026.pdf/7",
			after.Status, after.FileName, after.PageCount)
	}
}

func TestCaseStoreIndependentRecords(t *testing.T) {
	store := NewCaseStore()
	store.Add(newTestRecord("a"))
	store.Add(newTestRecord("b"))

	dataA := models.EmptyCaseData()
	dataA.Rit.Value = "P-1-2026"
	dataB := models.EmptyCaseData()
	dataB.Rit.Value = "P-2-2026"

	// Completion order does not have to match upload order.
	if err := store.Complete("b", dataB, "b.pdf"); err != nil {
		t.Fatal(err)
	}
	if err := store.Complete("a", dataA, "a.pdf"); err != nil {
		t.Fatal(err)
	}

	recA, _ := store.Get("a")
	recB, _ := store.Get("b")
	if recA.Analysis.Rit.Value != "P-1-2026" {
		t.Errorf("record a got %q", recA.Analysis.Rit.Value)
	}
	if recB.Analysis.Rit.Value != "P-2-2026" {
		t.Errorf("record b got %q", recB.Analysis.Rit.Value)
	}
}

func TestCaseStoreGetMissing(t *testing.T) {
	store := NewCaseStore()
	if _, err := store.Get("nope"); err != ErrCaseNotFound {
		t.Errorf("err = %v, want ErrCaseNotFound", err)
	}
}

func TestCaseStoreRemove(t *testing.T) {
	store := NewCaseStore()
	rec := newTestRecord("a")
	rec.StoragePath = "cases/a.pdf"
	store.Add(rec)

	path, err := store.Remove("a")
	if err != nil {
		t.Fatal(err)
	}
	if path != "cases/a.pdf" {
		t.Errorf("path = %q", path)
	}
	if store.Count() != 0 {
		t.Errorf("count = %d after remove", store.Count())
	}
	if _, err := store.Get("a"); err != ErrCaseNotFound {
		t.Errorf("record still reachable after remove")
	}
}

func TestCaseStorePrune(t *testing.T) {
	store := NewCaseStore()
	old := newTestRecord("old")
	old.UploadDate = time.Now().Add(-2 * time.Hour)
	old.StoragePath = "cases/old.pdf"
	store.Add(old)
	store.Add(newTestRecord("b"))
	store.Add(newTestRecord("c"))

	dropped := store.Prune(time.Hour, 1)
	if len(dropped) != 2 {
		t.Fatalf("dropped %d, want 2", len(dropped))
	}
	if store.Count() != 1 {
		t.Errorf("count = %d, want 1", store.Count())
	}
	if _, err := store.Get("c"); err != nil {
		t.Errorf("newest record should survive prune")
	}
}

func TestReferenceStore(t *testing.T) {
	store := NewReferenceStore()
	store.Add(&ReferenceDoc{ID: "r1", Name: "guia.pdf", MimeType: "application/pdf"})
	store.Add(&ReferenceDoc{ID: "r2", Name: "norma.txt", MimeType: "text/plain"})

	if len(store.List()) != 2 {
		t.Fatalf("got %d docs", len(store.List()))
	}
	if err := store.Remove("r1"); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove("r1"); err != ErrReferenceNotFound {
		t.Errorf("err = %v, want ErrReferenceNotFound", err)
	}
	if store.List()[0].ID != "r2" {
		t.Errorf("remaining doc = %s", store.List()[0].ID)
	}
}
