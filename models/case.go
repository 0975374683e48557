package models

// SourcedValue is a piece of extracted data together with the page it was
// found on and the verbatim quote that supports it. Page 0 means the
// extraction could not point at a location in the document.
type SourcedValue struct {
	Value string `json:"value"`
	Page  int    `json:"page"`
	Quote string `json:"quote"`
}

// NotRecorded is the sentinel stored when the document does not contain a value.
const NotRecorded = "NO SE CONSIGNA"

// PersonEntity is one individual mentioned in a case file. Every field keeps
// its own source reference.
type PersonEntity struct {
	Role          SourcedValue `json:"role"`
	Name          SourcedValue `json:"name"`
	Rut           SourcedValue `json:"rut"`
	Dob           SourcedValue `json:"dob"`
	Phones        SourcedValue `json:"phones"`
	Address       SourcedValue `json:"address"`
	Link          SourcedValue `json:"link"`
	Participation SourcedValue `json:"participation"`
	Observations  SourcedValue `json:"observations"`
	Nationality   SourcedValue `json:"nationality"`
}

// Citation is a summons entry (who, when, why).
type Citation struct {
	Name   SourcedValue `json:"name"`
	Date   SourcedValue `json:"date"`
	Motive SourcedValue `json:"motive"`
}

// Hearing is one scheduled court hearing.
type Hearing struct {
	Date      SourcedValue `json:"date"`
	Time      SourcedValue `json:"time"`
	Type      SourcedValue `json:"type"`
	Attendees SourcedValue `json:"attendees"`
	Motive    SourcedValue `json:"motive"`
	Tribunal  SourcedValue `json:"tribunal"`
}

// ChronologyEntry is one dated event in the case timeline.
type ChronologyEntry struct {
	Date  SourcedValue `json:"date"`
	Event SourcedValue `json:"event"`
}

// DossierItem is one dimension of the structured technical analysis:
// extracted evidence plus a suggested evaluation strategy and tooling.
type DossierItem struct {
	Content  string   `json:"content"`
	Strategy []string `json:"strategy"`
	Tools    []string `json:"tools"`
}

// DossierAnalysis is the fixed ten-dimension clinical/legal dossier. All ten
// keys are always present; missing dimensions are filled with defaults.
type DossierAnalysis struct {
	Identification       DossierItem `json:"identification"`
	Typologies           DossierItem `json:"typologies"`
	Gravity              DossierItem `json:"gravity"`
	CareNeeds            DossierItem `json:"careNeeds"`
	Impact               DossierItem `json:"impact"`
	Methodologies        DossierItem `json:"methodologies"`
	ParentalCapabilities DossierItem `json:"parentalCapabilities"`
	RiskFactors          DossierItem `json:"riskFactors"`
	Synthesis            DossierItem `json:"synthesis"`
	Warnings             DossierItem `json:"warnings"`
}

// CaseData is the full structured analysis of one case file. It is built once
// by the extraction pipeline and treated as immutable afterwards; a
// re-analysis replaces it wholesale.
type CaseData struct {
	Rit                  SourcedValue      `json:"rit"`
	Tribunal             SourcedValue      `json:"tribunal"`
	CauseType            SourcedValue      `json:"causeType"`
	Denunciant           SourcedValue      `json:"denunciant"`
	ComplaintMethod      SourcedValue      `json:"complaintMethod"`
	ComplaintDate        SourcedValue      `json:"complaintDate"`
	ReceivingInstitution SourcedValue      `json:"receivingInstitution"`
	Motive               SourcedValue      `json:"motive"`
	Facts                SourcedValue      `json:"facts"`
	Measures             SourcedValue      `json:"measures"`
	People               []PersonEntity    `json:"people"`
	Citations            []Citation        `json:"citations"`
	Hearings             []Hearing         `json:"hearings"`
	Chronology           []ChronologyEntry `json:"chronology"`
	Dossier              DossierAnalysis   `json:"dossier"`
	TechnicalAnalysis    string            `json:"technicalAnalysis"`
	MissingInfo          []string          `json:"missingInfo"`
}

// EmptyCaseData is the initial shape a record carries before its analysis
// finishes. Sourced leaves hold the not-recorded sentinel with page 0.
func EmptyCaseData() CaseData {
	empty := SourcedValue{Value: NotRecorded}
	item := DossierItem{Strategy: []string{}, Tools: []string{}}
	return CaseData{
		Rit:                  empty,
		Tribunal:             empty,
		CauseType:            empty,
		Denunciant:           empty,
		ComplaintMethod:      empty,
		ComplaintDate:        empty,
		ReceivingInstitution: empty,
		Motive:               empty,
		Facts:                empty,
		Measures:             empty,
		People:               []PersonEntity{},
		Citations:            []Citation{},
		Hearings:             []Hearing{},
		Chronology:           []ChronologyEntry{},
		Dossier: DossierAnalysis{
			Identification:       item,
			Typologies:           item,
			Gravity:              item,
			CareNeeds:            item,
			Impact:               item,
			Methodologies:        item,
			ParentalCapabilities: item,
			RiskFactors:          item,
			Synthesis:            item,
			Warnings:             item,
		},
		MissingInfo: []string{},
	}
}
