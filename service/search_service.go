package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"expedientes-backend/models"

	"go.uber.org/zap"
)

var (
	ErrSearchFailed = errors.New("failed to search legal context")
	ErrEmptyQuery   = errors.New("query must not be empty")
)

const generationAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// SearchService answers legal research questions with web grounding. The
// grounding metadata is only exposed by the raw generateContent endpoint,
// so this service speaks HTTP directly instead of going through the SDK.
type SearchService struct {
	apiKey  string
	model   string
	timeout time.Duration
	logger  *zap.Logger
	client  *http.Client
}

// SearchServiceOption is a functional option for SearchService
type SearchServiceOption func(*SearchService)

func SearchWithAPIKey(apiKey string) SearchServiceOption {
	return func(s *SearchService) { s.apiKey = apiKey }
}

func SearchWithModel(model string) SearchServiceOption {
	return func(s *SearchService) { s.model = model }
}

func SearchWithTimeout(timeout time.Duration) SearchServiceOption {
	return func(s *SearchService) { s.timeout = timeout }
}

func SearchWithLogger(logger *zap.Logger) SearchServiceOption {
	return func(s *SearchService) { s.logger = logger }
}

func SearchWithHTTPClient(client *http.Client) SearchServiceOption {
	return func(s *SearchService) { s.client = client }
}

// NewSearchService creates a new search service
func NewSearchService(opts ...SearchServiceOption) *SearchService {
	s := &SearchService{
		model:   "gemini-3-flash-preview",
		timeout: 60 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: s.timeout}
	}
	return s
}

type searchAPIResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		GroundingMetadata struct {
			GroundingChunks []struct {
				Web struct {
					Title string `json:"title"`
					URI   string `json:"uri"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error,omitempty"`
}

// Search runs a grounded query about Chilean legal context and returns the
// answer with its web sources.
func (s *SearchService) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if s.apiKey == "" {
		return nil, errors.New("gemini api key not set")
	}

	prompt := "Investiga y responde detalladamente sobre el siguiente tema legal en Chile: " + query

	reqBody := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": prompt}}},
		},
		"tools": []map[string]any{
			{"googleSearch": map[string]any{}},
		},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s:generateContent", generationAPIBase, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		searchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		searchesTotal.WithLabelValues("error").Inc()
		s.logger.Error("search API error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", bodyBytes))
		return nil, fmt.Errorf("%w: status %d", ErrSearchFailed, resp.StatusCode)
	}

	var apiResp searchAPIResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		searchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if apiResp.Error.Message != "" {
		searchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, apiResp.Error.Message)
	}

	result := &models.SearchResult{
		Query:   query,
		Sources: make([]models.SearchSource, 0),
	}

	var answer strings.Builder
	for _, cand := range apiResp.Candidates {
		for _, part := range cand.Content.Parts {
			answer.WriteString(part.Text)
		}
	}
	result.Answer = answer.String()
	if result.Answer == "" {
		result.Answer = "No se pudo generar una respuesta."
	}

	if len(apiResp.Candidates) > 0 {
		for _, chunk := range apiResp.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk.Web.URI == "" && chunk.Web.Title == "" {
				continue
			}
			source := models.SearchSource{Title: chunk.Web.Title, URI: chunk.Web.URI}
			if source.Title == "" {
				source.Title = "Fuente Web"
			}
			if source.URI == "" {
				source.URI = "#"
			}
			result.Sources = append(result.Sources, source)
		}
	}

	searchesTotal.WithLabelValues("ok").Inc()
	return result, nil
}
