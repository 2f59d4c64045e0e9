package liquid

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/haldis/storefront-engine/internal/domain"
)

// filterFunc transforms an output value. Extra filter arguments arrive
// already evaluated.
type filterFunc func(st *renderState, input any, args []any) (any, error)

func registerStandardFilters(e *Engine) {
	e.RegisterFilter("money", filterMoney)
	e.RegisterFilter("money_with_currency", filterMoneyWithCurrency)
	e.RegisterFilter("handleize", filterHandleize)
	e.RegisterFilter("escape", filterEscape)
	e.RegisterFilter("append", filterAppend)
	e.RegisterFilter("prepend", filterPrepend)
	e.RegisterFilter("upcase", filterUpcase)
	e.RegisterFilter("downcase", filterDowncase)
	e.RegisterFilter("capitalize", filterCapitalize)
	e.RegisterFilter("default", filterDefault)
	e.RegisterFilter("size", filterSize)
	e.RegisterFilter("truncate", filterTruncate)
	e.RegisterFilter("strip", filterStrip)
	e.RegisterFilter("strip_html", filterStripHTML)
	e.RegisterFilter("replace", filterReplace)
	e.RegisterFilter("remove", filterRemove)
	e.RegisterFilter("split", filterSplit)
	e.RegisterFilter("join", filterJoin)
	e.RegisterFilter("first", filterFirst)
	e.RegisterFilter("last", filterLast)
	e.RegisterFilter("plus", filterPlus)
	e.RegisterFilter("minus", filterMinus)
	e.RegisterFilter("times", filterTimes)
	e.RegisterFilter("divided_by", filterDividedBy)
	e.RegisterFilter("json", filterJSON)
}

// formatAmount renders a decimal with thousands separators and two
// fraction digits.
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot:]

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

func filterMoney(st *renderState, input any, _ []any) (any, error) {
	d, ok := toDecimal(input)
	if !ok {
		return "$0.00", nil
	}
	symbol := st.money.Symbol
	if symbol == "" {
		symbol = "$"
	}
	return symbol + formatAmount(d), nil
}

func filterMoneyWithCurrency(st *renderState, input any, args []any) (any, error) {
	out, err := filterMoney(st, input, args)
	if err != nil {
		return nil, err
	}
	if st.money.Currency == "" {
		return out, nil
	}
	return fmt.Sprintf("%s %s", out, st.money.Currency), nil
}

func filterHandleize(_ *renderState, input any, _ []any) (any, error) {
	return domain.Handleize(stringify(input)), nil
}

func filterEscape(_ *renderState, input any, _ []any) (any, error) {
	return html.EscapeString(stringify(input)), nil
}

func filterAppend(_ *renderState, input any, args []any) (any, error) {
	if len(args) < 1 {
		return input, nil
	}
	return stringify(input) + stringify(args[0]), nil
}

func filterPrepend(_ *renderState, input any, args []any) (any, error) {
	if len(args) < 1 {
		return input, nil
	}
	return stringify(args[0]) + stringify(input), nil
}

func filterUpcase(_ *renderState, input any, _ []any) (any, error) {
	return strings.ToUpper(stringify(input)), nil
}

func filterDowncase(_ *renderState, input any, _ []any) (any, error) {
	return strings.ToLower(stringify(input)), nil
}

func filterCapitalize(_ *renderState, input any, _ []any) (any, error) {
	s := stringify(input)
	if s == "" {
		return s, nil
	}
	return strings.ToUpper(s[:1]) + s[1:], nil
}

func filterDefault(_ *renderState, input any, args []any) (any, error) {
	if len(args) < 1 {
		return input, nil
	}
	// Empty strings count as absent, matching how themes use default
	// for optional settings.
	if input == nil || stringify(input) == "" {
		return args[0], nil
	}
	if b, ok := input.(bool); ok && !b {
		return args[0], nil
	}
	return input, nil
}

func filterSize(_ *renderState, input any, _ []any) (any, error) {
	switch v := input.(type) {
	case nil:
		return int64(0), nil
	case string:
		return int64(len(v)), nil
	}
	if items := toSlice(input); items != nil {
		return int64(len(items)), nil
	}
	return int64(0), nil
}

func filterTruncate(_ *renderState, input any, args []any) (any, error) {
	s := stringify(input)
	length := int64(50)
	if len(args) >= 1 {
		if n, ok := toInt(args[0]); ok {
			length = n
		}
	}
	ellipsis := "..."
	if len(args) >= 2 {
		ellipsis = stringify(args[1])
	}
	runes := []rune(s)
	if int64(len(runes)) <= length {
		return s, nil
	}
	cut := length - int64(len(ellipsis))
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + ellipsis, nil
}

func filterStrip(_ *renderState, input any, _ []any) (any, error) {
	return strings.TrimSpace(stringify(input)), nil
}

func filterStripHTML(_ *renderState, input any, _ []any) (any, error) {
	s := stringify(input)
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func filterReplace(_ *renderState, input any, args []any) (any, error) {
	if len(args) < 2 {
		return input, nil
	}
	return strings.ReplaceAll(stringify(input), stringify(args[0]), stringify(args[1])), nil
}

func filterRemove(_ *renderState, input any, args []any) (any, error) {
	if len(args) < 1 {
		return input, nil
	}
	return strings.ReplaceAll(stringify(input), stringify(args[0]), ""), nil
}

func filterSplit(_ *renderState, input any, args []any) (any, error) {
	sep := ""
	if len(args) >= 1 {
		sep = stringify(args[0])
	}
	parts := strings.Split(stringify(input), sep)
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

func filterJoin(_ *renderState, input any, args []any) (any, error) {
	sep := " "
	if len(args) >= 1 {
		sep = stringify(args[0])
	}
	items := toSlice(input)
	parts := make([]string, len(items))
	for i, e := range items {
		parts[i] = stringify(e)
	}
	return strings.Join(parts, sep), nil
}

func filterFirst(_ *renderState, input any, _ []any) (any, error) {
	items := toSlice(input)
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

func filterLast(_ *renderState, input any, _ []any) (any, error) {
	items := toSlice(input)
	if len(items) == 0 {
		return nil, nil
	}
	return items[len(items)-1], nil
}

func arithmetic(input any, args []any, op func(a, b decimal.Decimal) (decimal.Decimal, error)) (any, error) {
	if len(args) < 1 {
		return input, nil
	}
	a, ok := toDecimal(input)
	if !ok {
		a = decimal.Zero
	}
	b, ok := toDecimal(args[0])
	if !ok {
		b = decimal.Zero
	}
	return op(a, b)
}

func filterPlus(_ *renderState, input any, args []any) (any, error) {
	return arithmetic(input, args, func(a, b decimal.Decimal) (decimal.Decimal, error) {
		return a.Add(b), nil
	})
}

func filterMinus(_ *renderState, input any, args []any) (any, error) {
	return arithmetic(input, args, func(a, b decimal.Decimal) (decimal.Decimal, error) {
		return a.Sub(b), nil
	})
}

func filterTimes(_ *renderState, input any, args []any) (any, error) {
	return arithmetic(input, args, func(a, b decimal.Decimal) (decimal.Decimal, error) {
		return a.Mul(b), nil
	})
}

func filterDividedBy(_ *renderState, input any, args []any) (any, error) {
	return arithmetic(input, args, func(a, b decimal.Decimal) (decimal.Decimal, error) {
		if b.IsZero() {
			return decimal.Zero, fmt.Errorf("division by zero")
		}
		return a.Div(b), nil
	})
}

func filterJSON(_ *renderState, input any, _ []any) (any, error) {
	b, err := json.Marshal(input)
	if err != nil {
		return "null", nil
	}
	return string(b), nil
}
