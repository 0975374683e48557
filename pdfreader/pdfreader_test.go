package pdfreader

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseTextRunsBasic(t *testing.T) {
	stream := []byte(`BT
/F1 12 Tf
72 700 Td
(el rapido zorro marron) Tj
0 -14 Td
(salta sobre el perro) Tj
ET`)

	runs := parseTextRuns(stream)
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Text != "el rapido zorro marron" {
		t.Errorf("run text = %q", runs[0].Text)
	}
	if !almostEqual(runs[0].Transform[4], 72) || !almostEqual(runs[0].Transform[5], 700) {
		t.Errorf("run origin = (%v, %v), want (72, 700)", runs[0].Transform[4], runs[0].Transform[5])
	}
	if !almostEqual(runs[0].FontSize(), 12) {
		t.Errorf("font size = %v, want 12", runs[0].FontSize())
	}
	if !almostEqual(runs[1].Transform[5], 686) {
		t.Errorf("second line y = %v, want 686", runs[1].Transform[5])
	}
}

func TestParseTextRunsTJAndTm(t *testing.T) {
	stream := []byte(`BT
/F1 10 Tf
1 0 0 1 100 500 Tm
[(Hola) -250 (Mundo)] TJ
ET`)

	runs := parseTextRuns(stream)
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Text != "HolaMundo" {
		t.Errorf("run text = %q", runs[0].Text)
	}
	if !almostEqual(runs[0].Transform[4], 100) || !almostEqual(runs[0].Transform[5], 500) {
		t.Errorf("run origin = (%v, %v)", runs[0].Transform[4], runs[0].Transform[5])
	}
}

func TestParseTextRunsEscapes(t *testing.T) {
	stream := []byte(`BT
/F1 10 Tf
10 10 Td
(par\(en\)tesis \\ y \101) Tj
ET`)

	runs := parseTextRuns(stream)
	if len(runs) != 1 {
		t.Fatalf("got %d runs", len(runs))
	}
	if runs[0].Text != `par(en)tesis \ y A` {
		t.Errorf("decoded text = %q", runs[0].Text)
	}
}

func TestViewportUnrotated(t *testing.T) {
	vp := NewViewport(612, 792, 1.5, 0)
	if !almostEqual(vp.Width, 918) || !almostEqual(vp.Height, 1188) {
		t.Errorf("viewport size = %vx%v", vp.Width, vp.Height)
	}
	// Bottom-left of the page lands at the bottom-left of the viewport.
	x, y := vp.ConvertPoint(0, 0)
	if !almostEqual(x, 0) || !almostEqual(y, 1188) {
		t.Errorf("(0,0) -> (%v, %v)", x, y)
	}
	// Top-left of the page lands at the viewport origin.
	x, y = vp.ConvertPoint(0, 792)
	if !almostEqual(x, 0) || !almostEqual(y, 0) {
		t.Errorf("(0,792) -> (%v, %v)", x, y)
	}
}

func TestViewportRotated90(t *testing.T) {
	vp := NewViewport(612, 792, 1, 90)
	if !almostEqual(vp.Width, 792) || !almostEqual(vp.Height, 612) {
		t.Errorf("rotated size = %vx%v", vp.Width, vp.Height)
	}
	x, y := vp.ConvertPoint(0, 0)
	if !almostEqual(x, 0) || !almostEqual(y, 0) {
		t.Errorf("(0,0) -> (%v, %v)", x, y)
	}
	x, y = vp.ConvertPoint(612, 792)
	if !almostEqual(x, 792) || !almostEqual(y, 612) {
		t.Errorf("(612,792) -> (%v, %v)", x, y)
	}
}

func TestConvertRectNormalizes(t *testing.T) {
	vp := NewViewport(612, 792, 1, 0)
	r := vp.ConvertRect(100, 700, 200, 712)
	if r.Width <= 0 || r.Height <= 0 {
		t.Fatalf("rect not normalized: %+v", r)
	}
	if !almostEqual(r.X, 100) || !almostEqual(r.Y, 80) {
		t.Errorf("rect origin = (%v, %v), want (100, 80)", r.X, r.Y)
	}
	if !almostEqual(r.Width, 100) || !almostEqual(r.Height, 12) {
		t.Errorf("rect size = %vx%v", r.Width, r.Height)
	}
}

func TestResolveHighlightsExactMatch(t *testing.T) {
	runs := parseTextRuns([]byte(`BT
/F1 12 Tf
72 700 Td
(el rapido zorro marron) Tj
0 -20 Td
(texto sin relacion alguna aqui) Tj
ET`))

	vp := NewViewport(612, 792, 1, 0)
	rects := ResolveHighlights(runs, "rapido zorro", vp)
	if len(rects) != 1 {
		t.Fatalf("got %d rects, want 1", len(rects))
	}
	if rects[0].Width <= 0 || rects[0].Height <= 0 {
		t.Errorf("degenerate rect: %+v", rects[0])
	}
}

func TestResolveHighlightsWordFallback(t *testing.T) {
	runs := []TextRun{
		{Text: "audiencia preparatoria del tribunal", Transform: [6]float64{12, 0, 0, 12, 72, 700}, Width: 120},
		{Text: "sin coincidencia", Transform: [6]float64{12, 0, 0, 12, 72, 680}, Width: 80},
	}
	vp := NewViewport(612, 792, 1, 0)

	// No run contains the full quote, but "tribunal" is a long word hit.
	rects := ResolveHighlights(runs, "resolucion del tribunal de familia", vp)
	if len(rects) != 1 {
		t.Fatalf("got %d rects, want 1", len(rects))
	}
}

func TestResolveHighlightsEmptyQuote(t *testing.T) {
	runs := []TextRun{{Text: "algo", Transform: [6]float64{12, 0, 0, 12, 0, 0}, Width: 20}}
	vp := NewViewport(612, 792, 1, 0)
	if rects := ResolveHighlights(runs, "   ", vp); len(rects) != 0 {
		t.Errorf("got %d rects for blank quote, want 0", len(rects))
	}
}
