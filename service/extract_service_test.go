package service

import (
	"context"
	"testing"
	"time"

	"expedientes-backend/models"
)

func TestProcessCaseFailureMarksError(t *testing.T) {
	store := NewCaseStore()
	svc, err := NewAnalysisService(AnalysisWithCaseStore(store))
	if err != nil {
		t.Fatal(err)
	}

	record := newTestRecord("a")
	record.FileData = models.FileData{Name: "a.txt", MimeType: "text/plain", Bytes: []byte("x")}
	store.Add(record)

	start := time.Now()
	if err := svc.ProcessCase(context.Background(), "a"); err == nil {
		t.Fatal("expected error without a model client")
	}
	// One attempt only: the failure surfaces immediately, nothing sleeps
	// and retries behind the caller's back.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("failure took %v, expected an immediate single attempt", elapsed)
	}

	got, err := store.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusError {
		t.Errorf("status = %s, want error", got.Status)
	}
}

func TestProcessCaseMissingRecord(t *testing.T) {
	store := NewCaseStore()
	svc, err := NewAnalysisService(AnalysisWithCaseStore(store))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.ProcessCase(context.Background(), "nope"); err != ErrCaseNotFound {
		t.Errorf("err = %v, want ErrCaseNotFound", err)
	}
}
