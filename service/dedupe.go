package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"expedientes-backend/models"
)

// minorMarker flags roles that explicitly designate a child/adolescent.
const minorMarker = "NNA"

// rutChars keeps only the characters a Chilean RUN can contain, so filler
// text like the not-recorded sentinel reduces to nothing instead of a key.
var rutChars = func(r rune) rune {
	if unicode.IsDigit(r) || r == 'k' || r == 'K' {
		return r
	}
	return -1
}

// stripDiacritics removes combining marks after NFD decomposition, so
// "Pérez" and "Perez" produce the same identity key.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// identityKey computes the de-duplication key for a person: the national ID
// when it is long enough to be plausible, the normalized name otherwise, and
// a raw-name fallback so no record is ever dropped.
func identityKey(p models.PersonEntity) string {
	id := strings.ToUpper(strings.Map(rutChars, p.Rut.Value))
	if len(id) > 5 {
		return "ID:" + id
	}

	name := strings.TrimSpace(stripDiacritics(strings.ToLower(p.Name.Value)))
	if len(name) > 3 {
		return "NAME:" + name
	}

	return "RAW:" + p.Name.Value
}

func hasMinorRole(p models.PersonEntity) bool {
	return strings.Contains(strings.ToUpper(p.Role.Value), minorMarker)
}

// DeduplicatePeople collapses repeated mentions of the same individual into
// one record, keeping first-occurrence order. On a collision the first entry
// wins unless the newcomer carries an explicit minor role and the stored one
// does not; a role confirming minor status is privileged over duplicates.
func DeduplicatePeople(people []models.PersonEntity) []models.PersonEntity {
	seen := make(map[string]int, len(people))
	kept := make([]models.PersonEntity, 0, len(people))

	for _, person := range people {
		key := identityKey(person)
		idx, dup := seen[key]
		if !dup {
			seen[key] = len(kept)
			kept = append(kept, person)
			continue
		}
		if hasMinorRole(person) && !hasMinorRole(kept[idx]) {
			kept[idx] = person
		}
	}

	return kept
}
