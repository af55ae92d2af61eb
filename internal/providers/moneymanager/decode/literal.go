package decode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	maxDepth = 256
	bom      = "\uFEFF"
)

// SyntaxError reports where the literal parser gave up
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("literal syntax error at offset %d: %s", e.Offset, e.Msg)
}

// ParseLiteral parses a restricted object-literal grammar: objects with
// quoted, bare or numeric keys, arrays, single or double quoted strings,
// numbers (including hex), true/false/null/undefined. Trailing commas,
// comments, one pair of wrapping parentheses and a trailing semicolon are
// accepted. Nothing is evaluated.
//
// The resulting value uses the same Go types as encoding/json: map[string]any,
// []any, string, float64, bool and nil.
func ParseLiteral(text string) (any, error) {
	p := &literalParser{src: text}
	p.skipSpace()

	wrapped := p.peek() == '('
	if wrapped {
		p.pos++
	}

	v, err := p.value(0)
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if wrapped {
		if p.peek() != ')' {
			return nil, p.fail("expected ')'")
		}
		p.pos++
		p.skipSpace()
	}
	if p.peek() == ';' {
		p.pos++
		p.skipSpace()
	}
	if p.pos < len(p.src) {
		return nil, p.fail("unexpected trailing content")
	}
	return v, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) fail(msg string) error {
	return &SyntaxError{Offset: p.pos, Msg: msg}
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			p.pos++
		case strings.HasPrefix(p.src[p.pos:], bom):
			p.pos += len(bom)
		case strings.HasPrefix(p.src[p.pos:], "//"):
			end := strings.IndexByte(p.src[p.pos:], '\n')
			if end < 0 {
				p.pos = len(p.src)
			} else {
				p.pos += end + 1
			}
		case strings.HasPrefix(p.src[p.pos:], "/*"):
			end := strings.Index(p.src[p.pos+2:], "*/")
			if end < 0 {
				p.pos = len(p.src)
			} else {
				p.pos += end + 4
			}
		default:
			return
		}
	}
}

func (p *literalParser) value(depth int) (any, error) {
	if depth > maxDepth {
		return nil, p.fail("nesting too deep")
	}
	p.skipSpace()

	switch c := p.peek(); {
	case c == 0:
		return nil, p.fail("unexpected end of input")
	case c == '{':
		return p.object(depth)
	case c == '[':
		return p.array(depth)
	case c == '"' || c == '\'':
		return p.str()
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.number()
	case isIdentStart(c):
		return p.keyword()
	default:
		return nil, p.fail(fmt.Sprintf("unexpected character %q", c))
	}
}

func (p *literalParser) object(depth int) (any, error) {
	p.pos++ // '{'
	obj := make(map[string]any)

	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return obj, nil
		}

		key, err := p.key()
		if err != nil {
			return nil, err
		}

		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.fail("expected ':' after object key")
		}
		p.pos++

		val, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		obj[key] = val

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return obj, nil
		default:
			return nil, p.fail("expected ',' or '}' in object")
		}
	}
}

func (p *literalParser) key() (string, error) {
	switch c := p.peek(); {
	case c == '"' || c == '\'':
		return p.str()
	case isIdentStart(c):
		return p.ident(), nil
	case isDigit(c) || c == '.' || c == '-':
		start := p.pos
		n, err := p.number()
		if err != nil {
			return "", err
		}
		// Numeric keys keep their canonical spelling, like JSON.stringify does.
		if f, ok := n.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1e21 {
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
		return p.src[start:p.pos], nil
	default:
		return "", p.fail("expected object key")
	}
}

func (p *literalParser) array(depth int) (any, error) {
	p.pos++ // '['
	arr := make([]any, 0)

	for {
		p.skipSpace()
		if p.peek() == ']' {
			p.pos++
			return arr, nil
		}

		val, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return arr, nil
		default:
			return nil, p.fail("expected ',' or ']' in array")
		}
	}
}

func (p *literalParser) str() (string, error) {
	quote := p.src[p.pos]
	p.pos++

	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\':
			if err := p.escape(&b); err != nil {
				return "", err
			}
		case c == '\n':
			return "", p.fail("unterminated string")
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.fail("unterminated string")
}

func (p *literalParser) escape(b *strings.Builder) error {
	p.pos++ // '\'
	if p.pos >= len(p.src) {
		return p.fail("unterminated escape")
	}

	c := p.src[p.pos]
	p.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case 'x':
		r, err := p.hex(2)
		if err != nil {
			return err
		}
		b.WriteRune(r)
	case 'u':
		r, err := p.hex(4)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			r = p.lowSurrogate(r)
		}
		if utf8.ValidRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(utf8.RuneError)
		}
	case '\r':
		if p.peek() == '\n' {
			p.pos++
		}
	case '\n':
		// line continuation
	default:
		b.WriteByte(c)
	}
	return nil
}

// lowSurrogate joins a high surrogate with a following \uDC00-\uDFFF
// escape. Unpaired halves stay invalid and are consumed no further.
func (p *literalParser) lowSurrogate(high rune) rune {
	if high >= 0xDC00 || !strings.HasPrefix(p.src[p.pos:], `\u`) || p.pos+6 > len(p.src) {
		return utf8.RuneError
	}
	n, err := strconv.ParseUint(p.src[p.pos+2:p.pos+6], 16, 32)
	if err != nil {
		return utf8.RuneError
	}
	r := utf16.DecodeRune(high, rune(n))
	if r == utf8.RuneError {
		return r
	}
	p.pos += 6
	return r
}

func (p *literalParser) hex(width int) (rune, error) {
	if p.pos+width > len(p.src) {
		return 0, p.fail("short hex escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+width], 16, 32)
	if err != nil {
		return 0, p.fail("invalid hex escape")
	}
	p.pos += width
	return rune(n), nil
}

func (p *literalParser) number() (any, error) {
	start := p.pos
	neg := false
	if c := p.peek(); c == '-' || c == '+' {
		neg = c == '-'
		p.pos++
	}

	rest := p.src[p.pos:]
	if strings.HasPrefix(rest, "0x") || strings.HasPrefix(rest, "0X") {
		p.pos += 2
		digits := p.pos
		for p.pos < len(p.src) && isHexDigit(p.src[p.pos]) {
			p.pos++
		}
		n, err := strconv.ParseUint(p.src[digits:p.pos], 16, 64)
		if err != nil {
			return nil, p.fail("invalid hex number")
		}
		f := float64(n)
		if neg {
			f = -f
		}
		return f, nil
	}
	if strings.HasPrefix(rest, "Infinity") {
		// Not representable in JSON; serialized as null the way JSON.stringify does.
		p.pos += len("Infinity")
		return nil, nil
	}

	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.peek() == '.' {
		p.pos++
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		p.pos++
		if c := p.peek(); c == '-' || c == '+' {
			p.pos++
		}
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}

	f, err := strconv.ParseFloat(strings.TrimPrefix(p.src[start:p.pos], "+"), 64)
	if err != nil {
		p.pos = start
		return nil, p.fail("invalid number")
	}
	return f, nil
}

func (p *literalParser) keyword() (any, error) {
	start := p.pos
	switch word := p.ident(); word {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "undefined":
		return nil, nil
	case "NaN", "Infinity":
		return nil, nil
	default:
		p.pos = start
		return nil, p.fail(fmt.Sprintf("unsupported identifier %q", word))
	}
}

func (p *literalParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
