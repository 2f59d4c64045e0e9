package liquid

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Drop is implemented by context values that resolve properties
// dynamically, such as the by-handle lookup maps layered over the
// render context. An unknown key resolves to nil, never an error.
type Drop interface {
	LiquidGet(key string) (any, bool)
	LiquidKeys() []string
}

// truthy reports Liquid truthiness: only nil and false are falsy.
// Empty strings and zero numbers are truthy.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// lookupProperty resolves one path segment against a value.
func lookupProperty(v any, key string) any {
	switch val := v.(type) {
	case nil:
		return nil
	case Drop:
		got, ok := val.LiquidGet(key)
		if !ok {
			return nil
		}
		return got
	case map[string]any:
		return val[key]
	case map[string]string:
		if s, ok := val[key]; ok {
			return s
		}
		return nil
	case string:
		if key == "size" {
			return int64(len(val))
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		switch key {
		case "size":
			return int64(rv.Len())
		case "first":
			if rv.Len() > 0 {
				return rv.Index(0).Interface()
			}
			return nil
		case "last":
			if rv.Len() > 0 {
				return rv.Index(rv.Len() - 1).Interface()
			}
			return nil
		}
	case reflect.Map:
		kv := reflect.ValueOf(key)
		if kv.Type().AssignableTo(rv.Type().Key()) {
			got := rv.MapIndex(kv)
			if got.IsValid() {
				return got.Interface()
			}
		}
	}
	return nil
}

// indexValue resolves a bracket index against a value. String keys act
// like property lookups; integer keys index slices.
func indexValue(v any, idx any) any {
	if s, ok := idx.(string); ok {
		return lookupProperty(v, s)
	}
	i, ok := toInt(idx)
	if !ok {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.String:
		if i < 0 {
			i += int64(rv.Len())
		}
		if i < 0 || i >= int64(rv.Len()) {
			return nil
		}
		if rv.Kind() == reflect.String {
			return string(rv.Index(int(i)).Interface().(byte))
		}
		return rv.Index(int(i)).Interface()
	}
	return nil
}

// stringify converts a value to its rendered output form.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case decimal.Decimal:
		return val.String()
	case []any:
		var b strings.Builder
		for _, e := range val {
			b.WriteString(stringify(e))
		}
		return b.String()
	case []string:
		return strings.Join(val, "")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// toInt coerces numeric values to int64.
func toInt(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case float64:
		return int64(val), true
	case decimal.Decimal:
		return val.IntPart(), true
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// toDecimal coerces numeric values to a decimal for money and arithmetic
// filters.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case float64:
		return decimal.NewFromFloat(val), true
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

// equalValues compares two values the way template conditions expect:
// numbers numerically, everything else by stringified form when types
// differ.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if da, ok := toDecimal(a); ok {
		if db, ok := toDecimal(b); ok {
			_, aStr := a.(string)
			_, bStr := b.(string)
			if !aStr || !bStr {
				return da.Equal(db)
			}
		}
	}
	if reflect.TypeOf(a) == reflect.TypeOf(b) {
		return reflect.DeepEqual(a, b)
	}
	return stringify(a) == stringify(b)
}

// compareValues returns -1, 0 or 1 for ordered comparisons, and false
// when the operands are not comparable.
func compareValues(a, b any) (int, bool) {
	if da, ok := toDecimal(a); ok {
		if db, ok := toDecimal(b); ok {
			return da.Cmp(db), true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

// containsValue implements the "contains" operator: substring match for
// strings, element match for slices.
func containsValue(haystack, needle any) bool {
	switch h := haystack.(type) {
	case string:
		return strings.Contains(h, stringify(needle))
	case []string:
		n := stringify(needle)
		for _, e := range h {
			if e == n {
				return true
			}
		}
	case []any:
		for _, e := range h {
			if equalValues(e, needle) {
				return true
			}
		}
	}
	return false
}

// toSlice normalizes a value for iteration. Drops iterate over their
// keys' values in key order.
func toSlice(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case Drop:
		keys := val.LiquidKeys()
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			if e, ok := val.LiquidGet(k); ok {
				out = append(out, e)
			}
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return nil
}
