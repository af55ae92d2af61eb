package decode

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/errs"
)

// PrefixLimit bounds how much of an undecodable body is kept in error details
const PrefixLimit = 200

var json = sonic.ConfigStd

var (
	bareKeyAfterDelim = regexp.MustCompile(`([{,\[]\s*)([A-Za-z_$][\w$]*)\s*:`)
	bareKeyLineStart  = regexp.MustCompile(`(?m)^(\s*)([A-Za-z_$][\w$]*)\s*:`)
	doubledQuotes     = regexp.MustCompile(`""([A-Za-z_$][\w$]*)""`)
)

// QuasiJSON decodes a JSON or JavaScript object-literal body.
//
// Strategies run in order and the first success wins: strict JSON,
// regex-normalized JSON, then the literal parser. Empty input yields an
// empty object.
func QuasiJSON(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return map[string]any{}, nil
	}

	var v any
	if err := json.UnmarshalFromString(text, &v); err == nil {
		return v, nil
	}

	var normalized any
	if err := json.UnmarshalFromString(Normalize(text), &normalized); err == nil {
		return normalized, nil
	}

	literal, err := ParseLiteral(text)
	if err == nil {
		return literal, nil
	}

	return nil, invalid("quasi-json", text, err)
}

// Normalize rewrites object-literal syntax into JSON text. It is a
// best-effort rewrite: single quotes inside string values are not
// distinguished from delimiters.
func Normalize(text string) string {
	s := strings.ReplaceAll(text, "'", `"`)
	s = bareKeyAfterDelim.ReplaceAllString(s, `$1"$2":`)
	s = bareKeyLineStart.ReplaceAllString(s, `$1"$2":`)
	return doubledQuotes.ReplaceAllString(s, `"$1"`)
}

func invalid(dialect, text string, cause error) *errs.Error {
	return errs.New(errs.CategoryAPI, errs.CodeInvalidResponse,
		"upstream returned a "+dialect+" body that could not be decoded",
		errs.WithCause(cause),
		errs.WithDetails(map[string]any{
			"dialect": dialect,
			"prefix":  Truncate(text, PrefixLimit),
			"length":  len(text),
		}),
	)
}

// Truncate cuts s to at most limit bytes without splitting a rune
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
