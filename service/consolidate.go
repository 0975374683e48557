package service

import (
	"regexp"
	"strings"

	"expedientes-backend/models"
)

// Role substrings that mark a person as a qualifying minor for the
// consolidated table. Fixed, locale-specific list; see the role-heuristics
// note in DESIGN.md before touching it.
var minorRoleMarkers = []string{"nna", "niño", "niña", "adolescente", "hijo", "hija"}

// Role substrings that mark a caregiver candidate for the responsible adult.
var adultRoleMarkers = []string{"madre", "padre", "abuel", "tía", "tío", "cuidada"}

// Communes forced to uppercase inside formatted addresses. Matched against
// the title-cased text, so entries are stored title-cased.
var knownCommunes = []string{
	"San Bernardo", "Calera De Tango", "Buin", "Paine", "El Bosque",
	"La Pintana", "San Ramon", "Santiago", "Puente Alto", "La Cisterna",
	"Lo Espejo", "San Miguel", "Talagante", "Isla De Maipo",
}

var spanishMonths = map[string]string{
	"enero": "01", "febrero": "02", "marzo": "03", "abril": "04",
	"mayo": "05", "junio": "06", "julio": "07", "agosto": "08",
	"septiembre": "09", "octubre": "10", "noviembre": "11", "diciembre": "12",
}

var (
	textDateRe  = regexp.MustCompile(`(\d{1,2})\s+de\s+([a-zá-ú]+)\s+(?:de|del)\s+(\d{4})`)
	digitDateRe = regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})`)
)

// ParsedName is a full name split by the given-names + two-surnames
// convention.
type ParsedName struct {
	Names string
	Last1 string
	Last2 string
}

// TitleCase lowercases the text and uppercases every rune that starts a word,
// where words begin after whitespace, quotes, an opening paren or a hyphen.
func TitleCase(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(strings.ToLower(s))
	upperNext := true
	for i, r := range runes {
		if upperNext {
			runes[i] = []rune(strings.ToUpper(string(r)))[0]
		}
		switch r {
		case ' ', '\t', '\n', '\'', '"', '(', '-':
			upperNext = true
		default:
			upperNext = false
		}
	}
	return string(runes)
}

// ParseName splits a full name assuming the Spanish given-names + paternal +
// maternal surname order. Names that do not follow the convention come out
// wrong; known simplification.
func ParseName(fullName string) ParsedName {
	clean := strings.NewReplacer("'", "", `"`, "").Replace(fullName)
	parts := strings.Fields(TitleCase(strings.TrimSpace(clean)))

	switch len(parts) {
	case 0:
		return ParsedName{}
	case 1:
		return ParsedName{Names: parts[0]}
	case 2:
		return ParsedName{Names: parts[0], Last1: parts[1]}
	default:
		return ParsedName{
			Names: strings.Join(parts[:len(parts)-2], " "),
			Last1: parts[len(parts)-2],
			Last2: parts[len(parts)-1],
		}
	}
}

// FormatDateNumeric normalizes either a natural-language Spanish date
// ("16 de febrero de 2026") or a delimited numeric date to DD-MM-YYYY.
// Not-applicable markers and too-short strings become empty; anything else
// unrecognized passes through unchanged.
func FormatDateNumeric(dateStr string) string {
	if dateStr == "" || strings.Contains(strings.ToLower(dateStr), "no") || len(dateStr) < 3 {
		return ""
	}

	if m := textDateRe.FindStringSubmatch(strings.ToLower(dateStr)); m != nil {
		if month, ok := spanishMonths[m[2]]; ok {
			return pad2(m[1]) + "-" + month + "-" + m[3]
		}
	}

	if m := digitDateRe.FindStringSubmatch(dateStr); m != nil {
		return pad2(m[1]) + "-" + pad2(m[2]) + "-" + m[3]
	}

	return dateStr
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// FormatPhone best-effort formats a Chilean mobile number as "9 XXXX XXXX".
// Inputs that do not reduce to a 9-digit mobile are returned unchanged.
func FormatPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	core := digits
	if strings.HasPrefix(digits, "569") {
		core = digits[2:]
	}

	if len(core) == 9 && core[0] == '9' {
		return core[:1] + " " + core[1:5] + " " + core[5:]
	}

	return phone
}

// FormatRelationship reduces a caregiver role to its short label.
func FormatRelationship(role string) string {
	lower := strings.ToLower(role)
	if strings.Contains(lower, "madre") {
		return "Madre"
	}
	if strings.Contains(lower, "padre") {
		return "Padre"
	}
	return TitleCase(role)
}

// FormatAddress title-cases the address and force-uppercases known commune
// names. A narrow allow-list, not geocoding.
func FormatAddress(addr string) string {
	formatted := TitleCase(addr)
	for _, commune := range knownCommunes {
		formatted = strings.ReplaceAll(formatted, commune, strings.ToUpper(commune))
	}
	return formatted
}

func roleContainsAny(role string, markers []string) bool {
	lower := strings.ToLower(role)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ConsolidateRows projects one case record into table rows: one per
// qualifying minor, or one placeholder row when the case names none. Every
// row for a case shares the same responsible adult.
func ConsolidateRows(record *models.CaseRecord) []models.ConsolidatedRow {
	data := record.Analysis

	minors := make([]models.PersonEntity, 0)
	for _, p := range data.People {
		if roleContainsAny(p.Role.Value, minorRoleMarkers) {
			minors = append(minors, p)
		}
	}
	// Second pass with the same identity key: role variants that slipped past
	// the case-level de-duplication must not paint two rows for one child.
	minors = DeduplicatePeople(minors)

	var adult *models.PersonEntity
	for i, p := range data.People {
		role := strings.ToLower(p.Role.Value)
		if roleContainsAny(p.Role.Value, adultRoleMarkers) && !strings.Contains(role, "nna") {
			adult = &data.People[i]
			break
		}
	}

	hearing := ""
	if len(data.Hearings) > 0 {
		hearing = FormatDateNumeric(data.Hearings[0].Date.Value)
	}

	adultName := "No Identificado"
	adultRel, adultRut, adultPhone, adultAddress := "-", "-", "-", "-"
	if adult != nil {
		adultName = TitleCase(adult.Name.Value)
		adultRel = FormatRelationship(adult.Role.Value)
		adultRut = adult.Rut.Value
		adultPhone = FormatPhone(adult.Phones.Value)
		adultAddress = FormatAddress(adult.Address.Value)
	}

	if len(minors) == 0 {
		return []models.ConsolidatedRow{{
			CaseID:       record.ID,
			NnaNames:     "No Identificado",
			NnaRut:       "-",
			Rit:          data.Rit.Value,
			Hearing:      hearing,
			AdultName:    adultName,
			AdultRel:     adultRel,
			AdultRut:     adultRut,
			AdultPhone:   adultPhone,
			AdultAddress: adultAddress,
		}}
	}

	rows := make([]models.ConsolidatedRow, 0, len(minors))
	for _, minor := range minors {
		name := ParseName(minor.Name.Value)
		rows = append(rows, models.ConsolidatedRow{
			CaseID:       record.ID,
			NnaNames:     name.Names,
			NnaLast1:     name.Last1,
			NnaLast2:     name.Last2,
			NnaRut:       minor.Rut.Value,
			Rit:          data.Rit.Value,
			Hearing:      hearing,
			AdultName:    adultName,
			AdultRel:     adultRel,
			AdultRut:     adultRut,
			AdultPhone:   adultPhone,
			AdultAddress: adultAddress,
		})
	}
	return rows
}

// RowTSV renders one row in the fixed spreadsheet column order, tab
// separated, with the address quoted.
func RowTSV(row models.ConsolidatedRow) string {
	return strings.Join([]string{
		row.NnaNames,
		row.NnaLast1,
		row.NnaLast2,
		row.NnaRut,
		row.DeliveryDate,
		row.Rit,
		row.Hearing,
		row.AdultName,
		row.AdultRel,
		row.AdultRut,
		row.AdultPhone,
		`"` + row.AdultAddress + `"`,
	}, "\t")
}

// TableTSV renders all rows of all given records, newline separated.
func TableTSV(records []*models.CaseRecord) string {
	lines := make([]string, 0)
	for _, record := range records {
		for _, row := range ConsolidateRows(record) {
			lines = append(lines, RowTSV(row))
		}
	}
	return strings.Join(lines, "\n")
}
