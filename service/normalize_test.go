package service

import (
	"encoding/json"
	"testing"

	"expedientes-backend/models"
)

func TestSafeSourceDefaults(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want models.SourcedValue
	}{
		{"nil input", nil, models.SourcedValue{Value: models.NotRecorded, Page: 0, Quote: ""}},
		{"empty map", map[string]any{}, models.SourcedValue{Value: models.NotRecorded}},
		{
			"full leaf",
			map[string]any{"value": "P-123-2026", "page": float64(4), "quote": "RIT P-123-2026"},
			models.SourcedValue{Value: "P-123-2026", Page: 4, Quote: "RIT P-123-2026"},
		},
		{
			"negative page dropped",
			map[string]any{"value": "x", "page": float64(-2)},
			models.SourcedValue{Value: "x"},
		},
		{
			"empty value backfilled",
			map[string]any{"value": "", "page": float64(1)},
			models.SourcedValue{Value: models.NotRecorded, Page: 1},
		},
	}
	for _, c := range cases {
		if got := SafeSource(c.in); got != c.want {
			t.Errorf("%s: SafeSource = %+v, want %+v", c.name, got, c.want)
		}
	}
}

func TestSafeDossierItemDefaults(t *testing.T) {
	item := SafeDossierItem(nil)
	if item.Content != "Información no disponible." {
		t.Errorf("content = %q", item.Content)
	}
	if item.Strategy == nil || item.Tools == nil {
		t.Error("strategy and tools must be empty slices, not nil")
	}

	item = SafeDossierItem(map[string]any{
		"content":  "Detalle",
		"strategy": []any{"paso 1", "paso 2"},
		"tools":    []any{"NCFAS-G"},
	})
	if item.Content != "Detalle" || len(item.Strategy) != 2 || len(item.Tools) != 1 {
		t.Errorf("item = %+v", item)
	}
}

func TestBuildCaseDataFromPartialPayload(t *testing.T) {
	raw := `{
		"rit": {"value": "P-55-2026", "page": 1, "quote": "RIT P-55-2026"},
		"people": [
			{"role": {"value": "NNA"}, "name": {"value": "Sofía Muñoz"}, "rut": {"value": "25.111.222-3"}},
			{"role": {"value": "Niña"}, "name": {"value": "Sofia Muñoz"}, "rut": {"value": "25111222-3"}}
		],
		"hearings": [{"date": {"value": "16 de febrero de 2026"}}],
		"dossier": {"gravity": {"content": "Alto riesgo", "strategy": [], "tools": []}}
	}`
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatal(err)
	}

	data := BuildCaseData(payload)

	if data.Rit.Value != "P-55-2026" {
		t.Errorf("rit = %q", data.Rit.Value)
	}
	// Missing leaves get the sentinel.
	if data.Tribunal.Value != models.NotRecorded {
		t.Errorf("tribunal = %q, want sentinel", data.Tribunal.Value)
	}
	// The duplicate person collapses by RUT.
	if len(data.People) != 1 {
		t.Fatalf("people = %d, want 1 after dedup", len(data.People))
	}
	if data.People[0].Role.Value != "NNA" {
		t.Errorf("kept role = %q", data.People[0].Role.Value)
	}
	if len(data.Hearings) != 1 || data.Hearings[0].Date.Value != "16 de febrero de 2026" {
		t.Errorf("hearings = %+v", data.Hearings)
	}
	if data.Dossier.Gravity.Content != "Alto riesgo" {
		t.Errorf("gravity = %q", data.Dossier.Gravity.Content)
	}
	if data.Dossier.Synthesis.Content != "Información no disponible." {
		t.Errorf("synthesis = %q, want unavailable default", data.Dossier.Synthesis.Content)
	}
	if data.TechnicalAnalysis != "No disponible" {
		t.Errorf("technicalAnalysis = %q", data.TechnicalAnalysis)
	}
	if data.MissingInfo == nil {
		t.Error("missingInfo must be an empty slice, not nil")
	}
}

func TestEmptyCaseDataSentinels(t *testing.T) {
	data := models.EmptyCaseData()
	if data.Rit.Value != models.NotRecorded || data.Motive.Value != models.NotRecorded {
		t.Errorf("empty case data missing sentinels: %+v", data.Rit)
	}
	if data.People == nil || data.Hearings == nil || data.Chronology == nil || data.Citations == nil {
		t.Error("collections must be empty slices, not nil")
	}

	// All ten dossier items marshal with empty arrays, never null.
	items := []models.DossierItem{
		data.Dossier.Identification, data.Dossier.Typologies, data.Dossier.Gravity,
		data.Dossier.CareNeeds, data.Dossier.Impact, data.Dossier.Methodologies,
		data.Dossier.ParentalCapabilities, data.Dossier.RiskFactors,
		data.Dossier.Synthesis, data.Dossier.Warnings,
	}
	for i, item := range items {
		if item.Strategy == nil || item.Tools == nil {
			t.Errorf("dossier item %d has nil strategy/tools", i)
		}
	}
}
