package decode

import (
	stdjson "encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/errs"
)

func TestQuasiJSONEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t \r\n"} {
		v, err := QuasiJSON(in)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, v)
	}
}

func TestQuasiJSONObjectLiteral(t *testing.T) {
	v, err := QuasiJSON("{initData:{mbid:'x'},category_0:[]}")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"initData":   map[string]any{"mbid": "x"},
		"category_0": []any{},
	}, v)
}

func TestQuasiJSONMatchesStandardJSON(t *testing.T) {
	inputs := []string{
		`{"a":1,"b":[true,false,null],"c":{"d":"e"}}`,
		`[1,2.5,-3e2,"x"]`,
		`"plain string"`,
		`42`,
		`{"nested":{"deep":{"deeper":[{"k":"v"}]}}}`,
		`{"unicode":"é中","escaped":"a\"b\\c"}`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			var want any
			require.NoError(t, stdjson.Unmarshal([]byte(in), &want))

			got, err := QuasiJSON(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestQuasiJSONFallbacks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{
			name: "multiline bare keys",
			in:   "{\n  mbid: '1',\n  name: 'Wallet'\n}",
			want: map[string]any{"mbid": "1", "name": "Wallet"},
		},
		{
			name: "trailing comma",
			in:   "{a: 1, b: [1, 2,],}",
			want: map[string]any{"a": float64(1), "b": []any{float64(1), float64(2)}},
		},
		{
			name: "apostrophe inside double quoted value",
			in:   `{memo: "Tom's lunch", amount: 12.5}`,
			want: map[string]any{"memo": "Tom's lunch", "amount": 12.5},
		},
		{
			name: "wrapped in parens with semicolon",
			in:   "({ok: true, v: undefined});",
			want: map[string]any{"ok": true, "v": nil},
		},
		{
			name: "hex and numeric keys",
			in:   "{0: 0x1F, 12: -.5}",
			want: map[string]any{"0": float64(31), "12": -0.5},
		},
		{
			name: "comments",
			in:   "{/* head */ a: 1 // tail\n}",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "surrogate pair escape",
			in:   `{a:'\uD83D\uDE00', b:'it"s'}`,
			want: map[string]any{"a": "😀", "b": `it"s`},
		},
		{
			name: "unpaired surrogate escapes",
			in:   `{hi:'\uD83Dx', lo:'\uDE00'}`,
			want: map[string]any{"hi": "\uFFFDx", "lo": "\uFFFD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuasiJSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuasiJSONFailure(t *testing.T) {
	body := "<html><body>" + strings.Repeat("x", 1000) + "</body></html>"

	_, err := QuasiJSON(body)
	require.Error(t, err)

	ce := errs.Classify(err)
	assert.Equal(t, errs.CategoryAPI, ce.Category())
	assert.Equal(t, errs.CodeInvalidResponse, ce.Code())
	assert.False(t, ce.Retryable())

	prefix, ok := ce.Detail("prefix")
	require.True(t, ok)
	assert.Len(t, prefix, PrefixLimit)
	assert.True(t, strings.HasPrefix(body, prefix.(string)))
}

func TestParseLiteralRejectsCode(t *testing.T) {
	for _, in := range []string{
		"{a: foo()}",
		"{a: 1} + {b: 2}",
		"function(){ return 1 }",
		"{a: 'unterminated}",
	} {
		_, err := ParseLiteral(in)
		var syn *SyntaxError
		assert.ErrorAs(t, err, &syn, in)
	}
}

func TestParseLiteralDepthLimit(t *testing.T) {
	in := strings.Repeat("[", maxDepth+10) + strings.Repeat("]", maxDepth+10)
	_, err := ParseLiteral(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting too deep")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, `{"a":"b","c":["d"]}`, Normalize(`{a:'b',c:['d']}`))
	assert.Equal(t, `{"a":1}`, Normalize(`{''a'':1}`))
}

func TestTruncateKeepsRunes(t *testing.T) {
	s := strings.Repeat("é", 150) // 300 bytes
	got := Truncate(s, 201)
	assert.Len(t, got, 200)
	assert.Equal(t, "short", Truncate("short", 200))
}

func TestXML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{
			name: "empty",
			in:   "  ",
			want: map[string]any{},
		},
		{
			name: "leaf text trimmed",
			in:   "<data><results> 0 </results></data>",
			want: map[string]any{"data": map[string]any{"results": "0"}},
		},
		{
			name: "empty root collapses to string",
			in:   `<data></data>`,
			want: map[string]any{"data": ""},
		},
		{
			name: "attributes dropped",
			in:   `<data count="3" status="ok"/>`,
			want: map[string]any{"data": ""},
		},
		{
			name: "repeated elements collapse to list",
			in:   `<?xml version="1.0" encoding="UTF-8"?><data><results>2</results><row><id>1</id></row><row><id>2</id></row></data>`,
			want: map[string]any{"data": map[string]any{
				"results": "2",
				"row": []any{
					map[string]any{"id": "1"},
					map[string]any{"id": "2"},
				},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := XML(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestXMLMalformed(t *testing.T) {
	for _, in := range []string{"<data><row></data>", "<data>", "not xml at all"} {
		_, err := XML(in)
		require.Error(t, err, in)
		assert.Equal(t, errs.CodeInvalidResponse, errs.Classify(err).Code())
	}
}

func TestXMLNonUTF8Charset(t *testing.T) {
	in := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><data><memo>caf\xe9</memo></data>"
	got, err := XML(in)
	require.NoError(t, err)
	assert.Equal(t, "café", Lookup(got, "data", "memo"))
}

func TestEmptyTransactionShapes(t *testing.T) {
	for _, in := range []string{
		"<data><results>0</results></data>",
		"<data></data>",
	} {
		t.Run(in, func(t *testing.T) {
			v, err := XML(in)
			require.NoError(t, err)

			rows := Records(Lookup(v, "data", "row"))
			count, _ := Int(Lookup(v, "data", "results"))

			assert.Empty(t, rows)
			assert.NotNil(t, rows)
			assert.Equal(t, 0, count)
		})
	}
}

func TestRecords(t *testing.T) {
	one := map[string]any{"id": "1"}

	assert.Empty(t, Records(nil))
	assert.Empty(t, Records(""))
	assert.Equal(t, []map[string]any{one}, Records(one))
	assert.Equal(t, []map[string]any{one, one}, Records([]any{one, "junk", one}))
}

func TestScalars(t *testing.T) {
	f, ok := Float("1,234.5")
	assert.True(t, ok)
	assert.Equal(t, 1234.5, f)

	_, ok = Float("abc")
	assert.False(t, ok)

	n, ok := Int(float64(7))
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	assert.Equal(t, "12", String(float64(12)))
	assert.Equal(t, "0.25", String(0.25))
	assert.Equal(t, "", String(nil))
	assert.Equal(t, "abc", String("abc"))
}
