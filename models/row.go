package models

// ConsolidatedRow is one line of the consolidated case matrix: a qualifying
// minor plus the case's responsible adult. Rows are derived on demand from a
// CaseRecord and never persisted.
type ConsolidatedRow struct {
	CaseID       string `json:"case_id"`
	NnaNames     string `json:"nna_names"`
	NnaLast1     string `json:"nna_last1"`
	NnaLast2     string `json:"nna_last2"`
	NnaRut       string `json:"nna_rut"`
	DeliveryDate string `json:"delivery_date"` // always empty, filled by hand downstream
	Rit          string `json:"rit"`
	Hearing      string `json:"hearing"`
	AdultName    string `json:"adult_name"`
	AdultRel     string `json:"adult_relationship"`
	AdultRut     string `json:"adult_rut"`
	AdultPhone   string `json:"adult_phone"`
	AdultAddress string `json:"adult_address"`
}

// SearchResult is the answer of the grounded legal-context search.
type SearchResult struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer"`
	Sources []SearchSource `json:"sources"`
}

// SearchSource is one citation backing a search answer.
type SearchSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}
