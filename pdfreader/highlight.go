package pdfreader

import (
	"regexp"
	"strings"
)

var spaceRe = regexp.MustCompile(`\s+`)

func normalizeText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(strings.ToLower(s), " "))
}

// ResolveHighlights returns viewport rectangles covering the runs that match
// the quote. A run matches when it contains the whole normalized quote, or
// failing that, any quote word longer than three characters. The fuzzy word
// fallback trades precision for recall: quotes come from a language model
// and rarely match the extraction stream byte for byte.
func ResolveHighlights(runs []TextRun, quote string, vp Viewport) []Rect {
	needle := normalizeText(quote)
	if needle == "" {
		return nil
	}

	var words []string
	for _, w := range strings.Fields(needle) {
		if len([]rune(w)) > 3 {
			words = append(words, w)
		}
	}

	var rects []Rect
	for _, run := range runs {
		text := normalizeText(run.Text)
		if text == "" {
			continue
		}
		if !strings.Contains(text, needle) && !containsAnyWord(text, words) {
			continue
		}

		fontSize := run.FontSize()
		if fontSize == 0 {
			fontSize = 1
		}
		width := run.Width
		if width == 0 {
			width = float64(len([]rune(run.Text))) * fontSize * 0.5
		}

		x := run.Transform[4]
		y := run.Transform[5]
		rects = append(rects, vp.ConvertRect(x, y, x+width, y+fontSize))
	}
	return rects
}

func containsAnyWord(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
