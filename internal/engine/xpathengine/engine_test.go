package xpathengine

import (
	"iter"
	"math"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqilarik/xpcache/internal/engine"
)

const doc = `<document><meta id="111">AAA</meta><meta id="222">BBB</meta><count>3</count></document>`

func compile(t *testing.T, e *Engine, text string) engine.Expression {
	t.Helper()
	x, err := e.Compile(text)
	require.NoError(t, err)
	return x
}

func TestEvaluateSource_String(t *testing.T) {
	x := compile(t, New(), "//meta[1]")

	v, err := x.EvaluateSource(strings.NewReader(`<document><meta id="111">AAA</meta></document>`), engine.ResultString)
	require.NoError(t, err)
	assert.Equal(t, "AAA", v)
}

func TestEvaluate_ResultTypes(t *testing.T) {
	root, err := xmlquery.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	e := New()

	tests := []struct {
		expr string
		rt   engine.ResultType
		want any
	}{
		{"//meta[2]", engine.ResultString, "BBB"},
		{"string(//meta[@id='222']/@id)", engine.ResultString, "222"},
		{"count(//meta)", engine.ResultString, "2"},
		{"count(//meta)", engine.ResultNumber, float64(2)},
		{"//count", engine.ResultNumber, float64(3)},
		{"//meta", engine.ResultNumber, nil}, // NaN, checked below
		{"//missing", engine.ResultBoolean, false},
		{"//meta", engine.ResultBoolean, true},
		{"1 = 1", engine.ResultString, "true"},
		{"//missing", engine.ResultString, ""},
	}
	for _, tt := range tests {
		t.Run(tt.expr+"/"+tt.rt.String(), func(t *testing.T) {
			v, err := compile(t, e, tt.expr).Evaluate(root, tt.rt)
			require.NoError(t, err)
			if tt.want == nil {
				f, ok := v.(float64)
				require.True(t, ok)
				assert.True(t, f != f, "expected NaN, got %v", f)
				return
			}
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestEvaluateSource_NumberGrammar(t *testing.T) {
	x := compile(t, New(), "/v")

	tests := []struct {
		text string
		want float64
		nan  bool
	}{
		{text: "12", want: 12},
		{text: "  -3.25\n", want: -3.25},
		{text: "3.", want: 3},
		{text: ".5", want: 0.5},
		{text: "-.5", want: -0.5},
		{text: "1e3", nan: true},
		{text: "+5", nan: true},
		{text: "Infinity", nan: true},
		{text: "Inf", nan: true},
		{text: "NaN", nan: true},
		{text: "0x10", nan: true},
		{text: "1,5", nan: true},
		{text: "", nan: true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			v, err := x.EvaluateSource(strings.NewReader("<v>"+tt.text+"</v>"), engine.ResultNumber)
			require.NoError(t, err)
			f, ok := v.(float64)
			require.True(t, ok)
			if tt.nan {
				assert.True(t, math.IsNaN(f), "expected NaN, got %v", f)
				return
			}
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestEvaluate_NumberToString(t *testing.T) {
	root, err := xmlquery.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	e := New()

	tests := []struct {
		expr string
		want string
	}{
		{"-0", "0"},
		{"0 div -1", "0"},
		{"1 div 0", "Infinity"},
		{"-1 div 0", "-Infinity"},
		{"0 div 0", "NaN"},
		{"1 div 4", "0.25"},
		{"1000000 * 1000000", "1000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			v, err := compile(t, e, tt.expr).Evaluate(root, engine.ResultString)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestEvaluate_Nodes(t *testing.T) {
	root, err := xmlquery.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	x := compile(t, New(), "//meta")

	v, err := x.Evaluate(root, engine.ResultNodeSet)
	require.NoError(t, err)
	nodes := v.([]any)
	require.Len(t, nodes, 2)
	assert.Equal(t, "BBB", nodes[1].(*xmlquery.Node).InnerText())

	v, err = x.Evaluate(root, engine.ResultNode)
	require.NoError(t, err)
	assert.Equal(t, "111", v.(*xmlquery.Node).SelectAttr("id"))

	v, err = compile(t, New(), "//missing").Evaluate(root, engine.ResultNode)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEvaluate_TypeMismatch(t *testing.T) {
	root, err := xmlquery.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	_, err = compile(t, New(), "count(//meta)").Evaluate(root, engine.ResultNodeSet)
	assert.ErrorIs(t, err, engine.ErrTypeMismatch)
}

func TestEvaluate_UnsupportedContext(t *testing.T) {
	x := compile(t, New(), "//meta")

	_, err := x.Evaluate("not a node", engine.ResultString)
	assert.ErrorIs(t, err, engine.ErrUnsupportedContext)

	var nilNode *xmlquery.Node
	_, err = x.Evaluate(nilNode, engine.ResultString)
	assert.ErrorIs(t, err, engine.ErrUnsupportedContext)
}

func TestEvaluateSource_Malformed(t *testing.T) {
	x := compile(t, New(), "//meta")

	_, err := x.EvaluateSource(strings.NewReader("<document><meta>"), engine.ResultString)
	assert.ErrorIs(t, err, engine.ErrMalformedSource)
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := New().Compile("//meta[")
	assert.Error(t, err)
}

type staticNS map[string]string

func (m staticNS) NamespaceURI(prefix string) (string, bool) {
	uri, ok := m[prefix]
	return uri, ok
}

func (m staticNS) Prefix(uri string) (string, bool) {
	for p, u := range m {
		if u == uri {
			return p, true
		}
	}
	return "", false
}

func (m staticNS) Prefixes(uri string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for p, u := range m {
			if u == uri && !yield(p) {
				return
			}
		}
	}
}

func TestCompile_NamespaceContext(t *testing.T) {
	e := New()
	e.SetNamespaceContext(staticNS{"p": "http://x"})

	x := compile(t, e, "//p:item")
	v, err := x.EvaluateSource(strings.NewReader(`<r xmlns:a="http://x"><a:item>one</a:item></r>`), engine.ResultString)
	require.NoError(t, err)
	assert.Equal(t, "one", v)
}

func TestCollectBindings(t *testing.T) {
	e := New()
	e.SetNamespaceContext(staticNS{"p": "http://x", "q": "http://y", "child": "http://z"})

	e.collectBindings("/p:a/child::q:b[@p:id='z:w']")
	assert.Equal(t, map[string]string{"p": "http://x", "q": "http://y"}, e.scratch)

	e.Reset()
	assert.Empty(t, e.scratch)
}

func TestCompile_ExpressionKeepsBindingsAfterReset(t *testing.T) {
	e := New()
	e.SetNamespaceContext(staticNS{"p": "http://x"})
	x := compile(t, e, "//p:item")
	e.Reset()

	v, err := x.EvaluateSource(strings.NewReader(`<r xmlns="http://x"><item>two</item></r>`), engine.ResultString)
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}
