package xpathengine

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/aqilarik/xpcache/internal/engine"
)

// numberLiteral is the XPath Number production with an optional minus sign.
// Exponents, a leading plus, hex and Infinity/NaN spellings are not numbers.
var numberLiteral = regexp.MustCompile(`^-?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)$`)

// convert applies the XPath 1.0 conversion rules for the requested type.
func convert(v any, rt engine.ResultType) (any, error) {
	switch rt {
	case engine.ResultAny:
		if it, ok := v.(*xpath.NodeIterator); ok {
			return collect(it), nil
		}
		return v, nil
	case engine.ResultString:
		return toString(v), nil
	case engine.ResultNumber:
		return toNumber(v), nil
	case engine.ResultBoolean:
		return toBoolean(v), nil
	case engine.ResultNode:
		it, ok := v.(*xpath.NodeIterator)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a node-set", engine.ErrTypeMismatch, v)
		}
		if !it.MoveNext() {
			return nil, nil
		}
		return nodeOf(it.Current()), nil
	case engine.ResultNodeSet:
		it, ok := v.(*xpath.NodeIterator)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a node-set", engine.ErrTypeMismatch, v)
		}
		return collect(it), nil
	default:
		return nil, fmt.Errorf("%w: %v", engine.ErrUnsupportedResult, rt)
	}
}

func collect(it *xpath.NodeIterator) []any {
	var out []any
	for it.MoveNext() {
		out = append(out, nodeOf(it.Current()))
	}
	return out
}

// nodeOf unwraps xmlquery navigators; foreign navigators are returned as a copy.
func nodeOf(nav xpath.NodeNavigator) any {
	if qn, ok := nav.(*xmlquery.NodeNavigator); ok {
		return qn.Current()
	}
	return nav.Copy()
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case *xpath.NodeIterator:
		if x.MoveNext() {
			return x.Current().Value()
		}
		return ""
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func toNumber(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		s := strings.Trim(toString(v), " \t\r\n")
		if !numberLiteral.MatchString(s) {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
}

func toBoolean(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	case *xpath.NodeIterator:
		return x.MoveNext()
	default:
		return v != nil
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		// negative zero prints as 0
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
