package service

import (
	"errors"
	"sync"
	"time"

	"expedientes-backend/models"
)

var ErrCaseNotFound = errors.New("case not found")

// CaseStore holds case records in memory for the lifetime of the process.
// Newest first; all methods are safe for concurrent use.
type CaseStore struct {
	mu      sync.RWMutex
	records []*models.CaseRecord
	byID    map[string]*models.CaseRecord
}

func NewCaseStore() *CaseStore {
	return &CaseStore{
		records: make([]*models.CaseRecord, 0),
		byID:    make(map[string]*models.CaseRecord),
	}
}

// Add prepends the record so listings come back newest first.
func (s *CaseStore) Add(record *models.CaseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]*models.CaseRecord{record}, s.records...)
	s.byID[record.ID] = record
}

// Get returns a snapshot copy taken under the lock. Stored records keep
// changing in the background while analyses run, so callers never see a
// live pointer. The byte slices inside are shared but never rewritten.
func (s *CaseStore) Get(id string) (*models.CaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.byID[id]
	if !ok {
		return nil, ErrCaseNotFound
	}
	snapshot := *record
	return &snapshot, nil
}

// List returns snapshot copies of the current records, newest first.
func (s *CaseStore) List() []*models.CaseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.CaseRecord, len(s.records))
	for i, record := range s.records {
		snapshot := *record
		out[i] = &snapshot
	}
	return out
}

func (s *CaseStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// MarkAnalyzing transitions a pending record to analyzing. Records that have
// already reached a terminal status are left alone.
func (s *CaseStore) MarkAnalyzing(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byID[id]
	if !ok {
		return ErrCaseNotFound
	}
	if record.Status == models.StatusPending {
		record.Status = models.StatusAnalyzing
	}
	return nil
}

// Complete stores the finished analysis and the possibly renamed file name.
func (s *CaseStore) Complete(id string, analysis models.CaseData, fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byID[id]
	if !ok {
		return ErrCaseNotFound
	}
	if record.Status == models.StatusCompleted || record.Status == models.StatusError {
		return nil
	}
	record.Analysis = analysis
	record.FileName = fileName
	record.FileData.Name = fileName
	record.Status = models.StatusCompleted
	return nil
}

// Fail marks the record as errored, keeping the upload intact for retry
// inspection.
func (s *CaseStore) Fail(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byID[id]
	if !ok {
		return ErrCaseNotFound
	}
	if record.Status == models.StatusCompleted || record.Status == models.StatusError {
		return nil
	}
	record.Status = models.StatusError
	return nil
}

func (s *CaseStore) SetPageCount(id string, pages int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byID[id]
	if !ok {
		return ErrCaseNotFound
	}
	record.PageCount = pages
	return nil
}

// Remove deletes the record and reports its storage path so the caller can
// clean up the original file.
func (s *CaseStore) Remove(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byID[id]
	if !ok {
		return "", ErrCaseNotFound
	}
	delete(s.byID, id)
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			break
		}
	}
	return record.StoragePath, nil
}

// Prune drops records older than maxAge and then trims the list down to
// maxRecords, oldest first. Returns the storage paths of everything dropped.
func (s *CaseStore) Prune(maxAge time.Duration, maxRecords int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	kept := s.records[:0]
	dropped := make([]string, 0)
	for _, r := range s.records {
		if maxAge > 0 && r.UploadDate.Before(cutoff) {
			delete(s.byID, r.ID)
			dropped = append(dropped, r.StoragePath)
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept

	if maxRecords > 0 && len(s.records) > maxRecords {
		for _, r := range s.records[maxRecords:] {
			delete(s.byID, r.ID)
			dropped = append(dropped, r.StoragePath)
		}
		s.records = s.records[:maxRecords]
	}
	return dropped
}

// ReferenceDoc is a knowledge-base document sent alongside every analysis.
type ReferenceDoc struct {
	ID         string
	Name       string
	MimeType   string
	Bytes      []byte
	UploadedAt time.Time
}

var ErrReferenceNotFound = errors.New("reference document not found")

// ReferenceStore holds the reference corpus in memory, insertion order.
type ReferenceStore struct {
	mu   sync.RWMutex
	docs []*ReferenceDoc
}

func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{docs: make([]*ReferenceDoc, 0)}
}

func (s *ReferenceStore) Add(doc *ReferenceDoc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
}

func (s *ReferenceStore) List() []*ReferenceDoc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ReferenceDoc, len(s.docs))
	copy(out, s.docs)
	return out
}

func (s *ReferenceStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.docs {
		if d.ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return ErrReferenceNotFound
}
