package pdfreader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var ErrPageOutOfRange = errors.New("page number out of range")

// TextRun is one positioned text-showing operation from a page content
// stream. Transform is the text matrix at draw time with the font size
// folded into the scale components, so the effective font size is
// hypot(Transform[2], Transform[3]). Width is in unscaled text space.
type TextRun struct {
	Text      string
	Transform [6]float64
	Width     float64
}

// Document is a parsed PDF held in memory.
type Document struct {
	ctx *model.Context
}

// Load parses and validates a PDF from memory.
func Load(data []byte) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdf read: %w", err)
	}
	return &Document{ctx: ctx}, nil
}

func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// PageSize returns the media box dimensions of a 1-based page in points.
func (d *Document) PageSize(page int) (width, height float64, err error) {
	if page < 1 || page > d.ctx.PageCount {
		return 0, 0, ErrPageOutOfRange
	}
	dims, err := d.ctx.PageDims()
	if err != nil {
		return 0, 0, fmt.Errorf("page dims: %w", err)
	}
	if page > len(dims) {
		return 0, 0, ErrPageOutOfRange
	}
	return dims[page-1].Width, dims[page-1].Height, nil
}

// PageRuns extracts the positioned text runs of a 1-based page.
func (d *Document) PageRuns(page int) ([]TextRun, error) {
	if page < 1 || page > d.ctx.PageCount {
		return nil, ErrPageOutOfRange
	}
	r, err := pdfcpu.ExtractPageContent(d.ctx, page)
	if err != nil {
		return nil, fmt.Errorf("page content: %w", err)
	}
	if r == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("page content: %w", err)
	}
	return parseTextRuns(data), nil
}

// textState tracks the subset of the text-object state needed to position
// runs: the text and line matrices, leading, and the selected font size.
// The graphics CTM is not tracked; content produced by mainstream
// generators positions text through Tm in page space.
type textState struct {
	tm       [6]float64
	lm       [6]float64
	leading  float64
	fontSize float64
}

var identity = [6]float64{1, 0, 0, 1, 0, 0}

// mul returns a×b in PDF row-vector convention ([x y 1]·M).
func mul(a, b [6]float64) [6]float64 {
	return [6]float64{
		a[0]*b[0] + a[1]*b[2],
		a[0]*b[1] + a[1]*b[3],
		a[2]*b[0] + a[3]*b[2],
		a[2]*b[1] + a[3]*b[3],
		a[4]*b[0] + a[5]*b[2] + b[4],
		a[4]*b[1] + a[5]*b[3] + b[5],
	}
}

func (s *textState) beginText() {
	s.tm = identity
	s.lm = identity
}

func (s *textState) setMatrix(m [6]float64) {
	s.tm = m
	s.lm = m
}

func (s *textState) nextLine(tx, ty float64) {
	s.lm = mul([6]float64{1, 0, 0, 1, tx, ty}, s.lm)
	s.tm = s.lm
}

// run builds the emitted transform for the current state and advances the
// text matrix past the shown text. Glyph widths are not available at this
// layer, so the advance uses the half-em heuristic.
func (s *textState) run(text string) TextRun {
	fs := s.fontSize
	if fs == 0 {
		fs = 1
	}
	tr := mul([6]float64{fs, 0, 0, fs, 0, 0}, s.tm)
	width := float64(len([]rune(text))) * fs * 0.5
	s.tm = mul([6]float64{1, 0, 0, 1, width, 0}, s.tm)
	return TextRun{Text: text, Transform: tr, Width: width}
}

// parseTextRuns walks the content stream operators that affect text
// placement and showing. Unknown operators only pop their operands.
func parseTextRuns(data []byte) []TextRun {
	var runs []TextRun
	var state textState
	state.beginText()

	var nums []float64
	var strs []string

	flush := func() {
		nums = nums[:0]
		strs = strs[:0]
	}
	lastNums := func(n int) []float64 {
		if len(nums) < n {
			return nil
		}
		return nums[len(nums)-n:]
	}

	tok := newTokenizer(data)
	for {
		t, ok := tok.next()
		if !ok {
			break
		}
		switch t.kind {
		case tokNumber:
			nums = append(nums, t.num)
		case tokString:
			strs = append(strs, t.str)
		case tokArray:
			// TJ operand: strings of the array joined, kern offsets dropped.
			var joined bytes.Buffer
			for _, el := range t.arr {
				if el.kind == tokString {
					joined.WriteString(el.str)
				}
			}
			strs = append(strs, joined.String())
		case tokOperator:
			switch t.str {
			case "BT":
				state.beginText()
			case "Tm":
				if m := lastNums(6); m != nil {
					state.setMatrix([6]float64{m[0], m[1], m[2], m[3], m[4], m[5]})
				}
			case "Td":
				if m := lastNums(2); m != nil {
					state.nextLine(m[0], m[1])
				}
			case "TD":
				if m := lastNums(2); m != nil {
					state.leading = -m[1]
					state.nextLine(m[0], m[1])
				}
			case "TL":
				if m := lastNums(1); m != nil {
					state.leading = m[0]
				}
			case "T*":
				state.nextLine(0, -state.leading)
			case "Tf":
				if m := lastNums(1); m != nil {
					state.fontSize = m[0]
				}
			case "Tj", "TJ":
				if len(strs) > 0 {
					if r := state.run(strs[len(strs)-1]); r.Text != "" {
						runs = append(runs, r)
					}
				}
			case "'":
				state.nextLine(0, -state.leading)
				if len(strs) > 0 {
					if r := state.run(strs[len(strs)-1]); r.Text != "" {
						runs = append(runs, r)
					}
				}
			case "\"":
				// word/char spacing operands precede the string
				state.nextLine(0, -state.leading)
				if len(strs) > 0 {
					if r := state.run(strs[len(strs)-1]); r.Text != "" {
						runs = append(runs, r)
					}
				}
			}
			flush()
		}
	}
	return runs
}

// FontSize reports the effective font size encoded in a run transform.
func (r TextRun) FontSize() float64 {
	return math.Hypot(r.Transform[2], r.Transform[3])
}
