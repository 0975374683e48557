package pdfreader

import (
	"strconv"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokArray
	tokName
	tokOperator
)

type token struct {
	kind tokenKind
	num  float64
	str  string
	arr  []token
}

// tokenizer yields the content-stream tokens relevant to text extraction.
// Dictionaries and inline images are skipped wholesale.
type tokenizer struct {
	data []byte
	pos  int
}

func newTokenizer(data []byte) *tokenizer {
	return &tokenizer{data: data}
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func (t *tokenizer) skipSpace() {
	for t.pos < len(t.data) {
		b := t.data[t.pos]
		if isSpace(b) {
			t.pos++
			continue
		}
		if b == '%' {
			for t.pos < len(t.data) && t.data[t.pos] != '\n' {
				t.pos++
			}
			continue
		}
		return
	}
}

func (t *tokenizer) next() (token, bool) {
	t.skipSpace()
	if t.pos >= len(t.data) {
		return token{}, false
	}
	b := t.data[t.pos]

	switch {
	case b == '(':
		t.pos++
		return token{kind: tokString, str: t.readLiteralString()}, true
	case b == '<':
		if t.pos+1 < len(t.data) && t.data[t.pos+1] == '<' {
			t.skipDict()
			return t.next()
		}
		t.pos++
		return token{kind: tokString, str: t.readHexString()}, true
	case b == '[':
		t.pos++
		return token{kind: tokArray, arr: t.readArray()}, true
	case b == ']':
		t.pos++
		return t.next()
	case b == '/':
		t.pos++
		return token{kind: tokName, str: t.readRegular()}, true
	case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
		raw := t.readRegular()
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return token{kind: tokNumber, num: n}, true
		}
		return token{kind: tokOperator, str: raw}, true
	case b == '{' || b == '}' || b == '>':
		t.pos++
		return t.next()
	default:
		op := t.readRegular()
		if op == "BI" {
			t.skipInlineImage()
			return t.next()
		}
		return token{kind: tokOperator, str: op}, true
	}
}

func (t *tokenizer) readRegular() string {
	start := t.pos
	for t.pos < len(t.data) && !isSpace(t.data[t.pos]) && !isDelim(t.data[t.pos]) {
		t.pos++
	}
	if t.pos == start {
		// lone delimiter reached through the default branch
		t.pos++
		return string(t.data[start:t.pos])
	}
	return string(t.data[start:t.pos])
}

// readLiteralString consumes a (...) string after the opening paren,
// handling nested parens, escapes and octal codes.
func (t *tokenizer) readLiteralString() string {
	var out []byte
	depth := 1
	for t.pos < len(t.data) {
		b := t.data[t.pos]
		switch b {
		case '\\':
			t.pos++
			if t.pos >= len(t.data) {
				return string(out)
			}
			e := t.data[t.pos]
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b', 'f':
				// ignored
			case '\n':
				// line continuation
			case '(', ')', '\\':
				out = append(out, e)
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for k := 0; k < 2 && t.pos+1 < len(t.data); k++ {
						nb := t.data[t.pos+1]
						if nb < '0' || nb > '7' {
							break
						}
						t.pos++
						val = val*8 + int(nb-'0')
					}
					out = append(out, byte(val))
				} else {
					out = append(out, e)
				}
			}
			t.pos++
		case '(':
			depth++
			out = append(out, b)
			t.pos++
		case ')':
			depth--
			t.pos++
			if depth == 0 {
				return string(out)
			}
			out = append(out, b)
		default:
			out = append(out, b)
			t.pos++
		}
	}
	return string(out)
}

// readHexString consumes a <...> string after the opening bracket. Byte
// pairs are decoded as-is; CID-keyed text will not round-trip, which the
// caller tolerates.
func (t *tokenizer) readHexString() string {
	var out []byte
	var hi byte
	var have bool
	for t.pos < len(t.data) {
		b := t.data[t.pos]
		t.pos++
		if b == '>' {
			break
		}
		v, ok := hexVal(b)
		if !ok {
			continue
		}
		if !have {
			hi = v
			have = true
		} else {
			out = append(out, hi<<4|v)
			have = false
		}
	}
	if have {
		out = append(out, hi<<4)
	}
	return string(out)
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

func (t *tokenizer) readArray() []token {
	var out []token
	for t.pos < len(t.data) {
		t.skipSpace()
		if t.pos >= len(t.data) {
			break
		}
		if t.data[t.pos] == ']' {
			t.pos++
			break
		}
		tk, ok := t.next()
		if !ok {
			break
		}
		out = append(out, tk)
	}
	return out
}

func (t *tokenizer) skipDict() {
	depth := 0
	for t.pos < len(t.data) {
		if t.pos+1 < len(t.data) && t.data[t.pos] == '<' && t.data[t.pos+1] == '<' {
			depth++
			t.pos += 2
			continue
		}
		if t.pos+1 < len(t.data) && t.data[t.pos] == '>' && t.data[t.pos+1] == '>' {
			depth--
			t.pos += 2
			if depth == 0 {
				return
			}
			continue
		}
		if t.data[t.pos] == '(' {
			t.pos++
			t.readLiteralString()
			continue
		}
		t.pos++
	}
}

// skipInlineImage advances past BI ... ID <binary> EI.
func (t *tokenizer) skipInlineImage() {
	for t.pos+1 < len(t.data) {
		if t.data[t.pos] == 'E' && t.data[t.pos+1] == 'I' &&
			(t.pos == 0 || isSpace(t.data[t.pos-1])) &&
			(t.pos+2 >= len(t.data) || isSpace(t.data[t.pos+2]) || isDelim(t.data[t.pos+2])) {
			t.pos += 2
			return
		}
		t.pos++
	}
	t.pos = len(t.data)
}
