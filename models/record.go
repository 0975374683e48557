package models

import (
	"time"
)

// CaseStatus tracks a record through its single analysis pass.
type CaseStatus string

const (
	StatusPending   CaseStatus = "pending"
	StatusAnalyzing CaseStatus = "analyzing"
	StatusCompleted CaseStatus = "completed"
	StatusError     CaseStatus = "error"
)

// FileData holds an uploaded document's raw bytes alongside its identity.
type FileData struct {
	Bytes    []byte `json:"-"`
	MimeType string `json:"mime_type"`
	Name     string `json:"name"`
}

// CaseRecord is one uploaded case file and its analysis lifecycle. Records
// live in the session store; the analysis field is either the empty initial
// shape or the final extraction result, never a partial mix.
type CaseRecord struct {
	ID          string     `json:"id"`
	FileName    string     `json:"file_name"`
	UploadDate  time.Time  `json:"upload_date"`
	Analysis    CaseData   `json:"analysis"`
	FileData    FileData   `json:"file_data"`
	Status      CaseStatus `json:"status"`
	PageCount   int        `json:"page_count,omitempty"`
	StoragePath string     `json:"-"`
}
