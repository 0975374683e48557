package service

import (
	"expedientes-backend/models"
)

// dossierUnavailable is the default content for a dossier dimension the
// extraction left empty.
const dossierUnavailable = "Información no disponible."

// SafeSource coerces an arbitrary decoded-JSON value into a well-formed
// SourcedValue. It never fails: missing or malformed fields fall back to the
// "not recorded" sentinel, page 0 and an empty quote.
func SafeSource(input any) models.SourcedValue {
	out := models.SourcedValue{Value: models.NotRecorded}

	m, ok := input.(map[string]any)
	if !ok {
		return out
	}
	if v, ok := m["value"].(string); ok && v != "" {
		out.Value = v
	}
	if p, ok := toInt(m["page"]); ok && p > 0 {
		out.Page = p
	}
	if q, ok := m["quote"].(string); ok {
		out.Quote = q
	}
	return out
}

// SafeDossierItem coerces one dossier dimension. Content defaults to the
// "unavailable" sentinel; strategy and tools stay empty unless the input
// already carries sequences.
func SafeDossierItem(input any) models.DossierItem {
	out := models.DossierItem{
		Content:  dossierUnavailable,
		Strategy: []string{},
		Tools:    []string{},
	}

	m, ok := input.(map[string]any)
	if !ok {
		return out
	}
	if c, ok := m["content"].(string); ok && c != "" {
		out.Content = c
	}
	out.Strategy = toStringSlice(m["strategy"])
	out.Tools = toStringSlice(m["tools"])
	return out
}

// BuildCaseData turns the decoded extraction envelope into a fully normalized
// CaseData. Every leaf goes through SafeSource/SafeDossierItem and the people
// list is deduplicated before it is stored anywhere.
func BuildCaseData(raw map[string]any) models.CaseData {
	people := make([]models.PersonEntity, 0)
	if list, ok := raw["people"].([]any); ok {
		for _, item := range list {
			p, _ := item.(map[string]any)
			people = append(people, models.PersonEntity{
				Role:          SafeSource(index(p, "role")),
				Name:          SafeSource(index(p, "name")),
				Rut:           SafeSource(index(p, "rut")),
				Dob:           SafeSource(index(p, "dob")),
				Phones:        SafeSource(index(p, "phones")),
				Address:       SafeSource(index(p, "address")),
				Link:          SafeSource(index(p, "link")),
				Participation: SafeSource(index(p, "participation")),
				Observations:  SafeSource(index(p, "observations")),
				Nationality:   SafeSource(index(p, "nationality")),
			})
		}
	}

	citations := make([]models.Citation, 0)
	if list, ok := raw["citations"].([]any); ok {
		for _, item := range list {
			c, _ := item.(map[string]any)
			citations = append(citations, models.Citation{
				Name:   SafeSource(index(c, "name")),
				Date:   SafeSource(index(c, "date")),
				Motive: SafeSource(index(c, "motive")),
			})
		}
	}

	hearings := make([]models.Hearing, 0)
	if list, ok := raw["hearings"].([]any); ok {
		for _, item := range list {
			h, _ := item.(map[string]any)
			hearings = append(hearings, models.Hearing{
				Date:      SafeSource(index(h, "date")),
				Time:      SafeSource(index(h, "time")),
				Type:      SafeSource(index(h, "type")),
				Attendees: SafeSource(index(h, "attendees")),
				Motive:    SafeSource(index(h, "motive")),
				Tribunal:  SafeSource(index(h, "tribunal")),
			})
		}
	}

	chronology := make([]models.ChronologyEntry, 0)
	if list, ok := raw["chronology"].([]any); ok {
		for _, item := range list {
			c, _ := item.(map[string]any)
			chronology = append(chronology, models.ChronologyEntry{
				Date:  SafeSource(index(c, "date")),
				Event: SafeSource(index(c, "event")),
			})
		}
	}

	dossier, _ := raw["dossier"].(map[string]any)

	technical := "No disponible"
	if t, ok := raw["technicalAnalysis"].(string); ok && t != "" {
		technical = t
	}

	return models.CaseData{
		Rit:                  SafeSource(raw["rit"]),
		Tribunal:             SafeSource(raw["tribunal"]),
		CauseType:            SafeSource(raw["causeType"]),
		Denunciant:           SafeSource(raw["denunciant"]),
		ComplaintMethod:      SafeSource(raw["complaintMethod"]),
		ComplaintDate:        SafeSource(raw["complaintDate"]),
		ReceivingInstitution: SafeSource(raw["receivingInstitution"]),
		Motive:               SafeSource(raw["motive"]),
		Facts:                SafeSource(raw["facts"]),
		Measures:             SafeSource(raw["measures"]),
		People:               DeduplicatePeople(people),
		Citations:            citations,
		Hearings:             hearings,
		Chronology:           chronology,
		Dossier: models.DossierAnalysis{
			Identification:       SafeDossierItem(index(dossier, "identification")),
			Typologies:           SafeDossierItem(index(dossier, "typologies")),
			Gravity:              SafeDossierItem(index(dossier, "gravity")),
			CareNeeds:            SafeDossierItem(index(dossier, "careNeeds")),
			Impact:               SafeDossierItem(index(dossier, "impact")),
			Methodologies:        SafeDossierItem(index(dossier, "methodologies")),
			ParentalCapabilities: SafeDossierItem(index(dossier, "parentalCapabilities")),
			RiskFactors:          SafeDossierItem(index(dossier, "riskFactors")),
			Synthesis:            SafeDossierItem(index(dossier, "synthesis")),
			Warnings:             SafeDossierItem(index(dossier, "warnings")),
		},
		TechnicalAnalysis: technical,
		MissingInfo:       toStringSlice(raw["missingInfo"]),
	}
}

func index(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

// toInt accepts the numeric shapes encoding/json can produce.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

func toStringSlice(v any) []string {
	out := []string{}
	list, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
