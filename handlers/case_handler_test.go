package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expedientes-backend/service"
)

func newUploadTestRouter(t *testing.T) (*gin.Engine, *service.CaseStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := service.NewCaseStore()
	analysis, err := service.NewAnalysisService(service.AnalysisWithCaseStore(store))
	if err != nil {
		t.Fatal(err)
	}
	h := NewCaseHandler(analysis, store, nil, nil, zap.NewNop(), 1<<20)

	r := gin.New()
	r.POST("/api/cases", h.UploadCases)
	return r, store
}

func multipartBody(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, name := range names {
		part, err := w.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte("contenido")); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return body, w.FormDataContentType()
}

func TestUploadCasesRespondsAnalyzing(t *testing.T) {
	r, store := newUploadTestRouter(t)

	body, contentType := multipartBody(t, "denuncia.txt")
	req := httptest.NewRequest(http.MethodPost, "/api/cases", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || len(resp.Data) != 1 {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
	if resp.Data[0].Status != "analyzing" {
		t.Errorf("status = %q, want analyzing", resp.Data[0].Status)
	}
	if store.Count() != 1 {
		t.Errorf("store count = %d, want 1", store.Count())
	}
}

func TestUploadCasesBatchAtomic(t *testing.T) {
	r, store := newUploadTestRouter(t)

	body, contentType := multipartBody(t, "denuncia.txt", "virus.exe")
	req := httptest.NewRequest(http.MethodPost, "/api/cases", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if store.Count() != 0 {
		t.Errorf("store count = %d, want 0 after rejected batch", store.Count())
	}
}
