package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"expedientes-backend/models"
	"expedientes-backend/pdfreader"
	"expedientes-backend/repository"
	"expedientes-backend/storage"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

var (
	ErrAnalysisFailed  = errors.New("failed to analyze case file")
	ErrEmptyResponse   = errors.New("model returned no content")
	ErrInvalidResponse = errors.New("model response is not valid JSON")
)

// AnalysisService runs the document analysis pipeline: it creates case
// records synchronously and extracts the structured analysis in a
// background goroutine per case.
type AnalysisService struct {
	store    *CaseStore
	refs     *ReferenceStore
	files    storage.Storage
	archive  *repository.CaseArchiveRepository
	client   *genai.Client
	model    string
	timeout  time.Duration
	logger   *zap.Logger
	checkSch *jsonschema.Schema
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

func AnalysisWithCaseStore(store *CaseStore) AnalysisServiceOption {
	return func(s *AnalysisService) { s.store = store }
}

func AnalysisWithReferenceStore(refs *ReferenceStore) AnalysisServiceOption {
	return func(s *AnalysisService) { s.refs = refs }
}

func AnalysisWithStorage(files storage.Storage) AnalysisServiceOption {
	return func(s *AnalysisService) { s.files = files }
}

// AnalysisWithArchive enables the optional persistent archive of completed
// analyses. nil leaves the service memory-only.
func AnalysisWithArchive(archive *repository.CaseArchiveRepository) AnalysisServiceOption {
	return func(s *AnalysisService) { s.archive = archive }
}

func AnalysisWithGeminiClient(client *genai.Client) AnalysisServiceOption {
	return func(s *AnalysisService) { s.client = client }
}

func AnalysisWithModel(model string) AnalysisServiceOption {
	return func(s *AnalysisService) { s.model = model }
}

func AnalysisWithTimeout(timeout time.Duration) AnalysisServiceOption {
	return func(s *AnalysisService) { s.timeout = timeout }
}

func AnalysisWithLogger(logger *zap.Logger) AnalysisServiceOption {
	return func(s *AnalysisService) { s.logger = logger }
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) (*AnalysisService, error) {
	s := &AnalysisService{
		model:   "gemini-3-pro-preview",
		timeout: 5 * time.Minute,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		return nil, errors.New("case store not set")
	}

	checkSch, err := compileAnalysisCheckSchema()
	if err != nil {
		return nil, fmt.Errorf("compile response check schema: %w", err)
	}
	s.checkSch = checkSch
	return s, nil
}

// CreateCase registers a pending record for an uploaded file and persists
// the original bytes. The analysis itself has not started yet.
func (s *AnalysisService) CreateCase(ctx context.Context, file models.FileData) (*models.CaseRecord, error) {
	record := &models.CaseRecord{
		ID:         uuid.New().String(),
		FileName:   file.Name,
		UploadDate: time.Now(),
		Analysis:   models.EmptyCaseData(),
		FileData:   file,
		Status:     models.StatusPending,
	}

	if s.files != nil {
		path, err := s.files.Upload(ctx, record.ID, file.Name, bytes.NewReader(file.Bytes))
		if err != nil {
			return nil, fmt.Errorf("store original file: %w", err)
		}
		record.StoragePath = path
	}

	s.store.Add(record)

	// Hand back a copy; the stored record belongs to the store from here on.
	snapshot := *record
	return &snapshot, nil
}

// ProcessCase performs the full extraction for one case. It is meant to run
// in its own goroutine and never panics the caller: all failures end in the
// error status.
func (s *AnalysisService) ProcessCase(ctx context.Context, caseID string) error {
	start := time.Now()

	record, err := s.store.Get(caseID)
	if err != nil {
		return err
	}
	if err := s.store.MarkAnalyzing(caseID); err != nil {
		return err
	}

	log := s.logger.With(zap.String("case_id", caseID), zap.String("file", record.FileName))

	if record.FileData.MimeType == "application/pdf" {
		if doc, err := pdfreader.Load(record.FileData.Bytes); err != nil {
			log.Warn("page count unavailable", zap.Error(err))
		} else {
			_ = s.store.SetPageCount(caseID, doc.PageCount())
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generateAnalysis(ctx, record.FileData)
	if err != nil {
		log.Error("analysis failed", zap.Error(err))
		analysesTotal.WithLabelValues("error").Inc()
		_ = s.store.Fail(caseID)
		return err
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error("model response is not valid JSON", zap.Error(err))
		analysesTotal.WithLabelValues("error").Inc()
		_ = s.store.Fail(caseID)
		return ErrInvalidResponse
	}

	// Shape check is advisory: normalization backfills whatever is missing.
	var checkDoc any
	if err := json.Unmarshal(raw, &checkDoc); err == nil {
		if err := s.checkSch.Validate(checkDoc); err != nil {
			schemaViolationsTotal.Inc()
			log.Warn("response shape check failed", zap.Error(err))
		}
	}

	data := BuildCaseData(payload)
	fileName := ritFileName(data.Rit.Value, record.FileName)

	if err := s.store.Complete(caseID, data, fileName); err != nil {
		return err
	}

	if s.archive != nil {
		if record, err := s.store.Get(caseID); err == nil {
			if err := s.archive.Upsert(ctx, record); err != nil {
				log.Warn("archive upsert failed", zap.Error(err))
			}
		}
	}

	analysesTotal.WithLabelValues("completed").Inc()
	analysisDuration.Observe(time.Since(start).Seconds())
	log.Info("analysis completed",
		zap.String("rit", data.Rit.Value),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// generateAnalysis sends the case file plus the reference corpus to the
// model and returns the raw JSON text.
func (s *AnalysisService) generateAnalysis(ctx context.Context, file models.FileData) ([]byte, error) {
	if s.client == nil {
		return nil, errors.New("gemini client not set")
	}

	model := s.client.GenerativeModel(s.model)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = analysisResponseSchema()
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(analysisSystemPrompt)},
	}

	var parts []genai.Part
	if s.refs != nil {
		if refs := s.refs.List(); len(refs) > 0 {
			parts = append(parts, genai.Text("--- INICIO DE DOCUMENTOS DE REFERENCIA TÉCNICA (Usar como base metodológica) ---"))
			for _, ref := range refs {
				parts = append(parts, genai.Blob{MIMEType: ref.MimeType, Data: ref.Bytes})
			}
			parts = append(parts, genai.Text("--- FIN DE DOCUMENTOS DE REFERENCIA ---"))
		}
	}
	parts = append(parts,
		genai.Text("--- INICIO DEL EXPEDIENTE DEL CASO A ANALIZAR ---"),
		genai.Blob{MIMEType: file.MimeType, Data: file.Bytes},
	)

	// Exactly one attempt. A failed analysis lands in the error status and
	// the operator re-uploads; nothing retries behind their back.
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return []byte(text), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}

var ritUnsafeRe = regexp.MustCompile(`[^A-Za-z0-9\-_]`)

// ritFileName renames the case file after its RIT so downloads sort by
// cause. Unusable RITs keep the original name.
func ritFileName(rit, originalName string) string {
	if rit == "" || rit == models.NotRecorded || rit == "SIN_RIT" {
		return originalName
	}
	clean := ritUnsafeRe.ReplaceAllString(strings.ReplaceAll(rit, "/", "-"), "_")
	if clean == "" || strings.Trim(clean, "_") == "" {
		return originalName
	}

	ext := ".pdf"
	if idx := strings.LastIndex(originalName, "."); idx >= 0 {
		ext = originalName[idx:]
	}
	return clean + ext
}
