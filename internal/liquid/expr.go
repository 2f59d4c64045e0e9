package liquid

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// expression is an evaluatable fragment of a template: a literal, a
// variable path, a comparison or a filtered pipeline.
type expression interface {
	eval(st *renderState, ctx *Context) (any, error)
}

type literalExpr struct{ value any }

func (e literalExpr) eval(*renderState, *Context) (any, error) { return e.value, nil }

// pathSegment is one step of a variable path: a dotted property or a
// bracketed index expression.
type pathSegment struct {
	key   string
	index expression
}

type pathExpr struct {
	name string
	segs []pathSegment
}

func (e pathExpr) eval(st *renderState, ctx *Context) (any, error) {
	cur, _ := ctx.Get(e.name)
	for _, seg := range e.segs {
		if seg.index != nil {
			idx, err := seg.index.eval(st, ctx)
			if err != nil {
				return nil, err
			}
			cur = indexValue(cur, idx)
			continue
		}
		cur = lookupProperty(cur, seg.key)
	}
	return cur, nil
}

type rangeExpr struct{ from, to expression }

func (e rangeExpr) eval(st *renderState, ctx *Context) (any, error) {
	fromV, err := e.from.eval(st, ctx)
	if err != nil {
		return nil, err
	}
	toV, err := e.to.eval(st, ctx)
	if err != nil {
		return nil, err
	}
	from, ok1 := toInt(fromV)
	to, ok2 := toInt(toV)
	if !ok1 || !ok2 || to < from {
		return []any{}, nil
	}
	out := make([]any, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out, nil
}

type binaryExpr struct {
	op   string
	l, r expression
}

func (e binaryExpr) eval(st *renderState, ctx *Context) (any, error) {
	lv, err := e.l.eval(st, ctx)
	if err != nil {
		return nil, err
	}

	// and/or short-circuit on the left operand's truthiness.
	switch e.op {
	case "and":
		if !truthy(lv) {
			return false, nil
		}
		rv, err := e.r.eval(st, ctx)
		if err != nil {
			return nil, err
		}
		return truthy(rv), nil
	case "or":
		if truthy(lv) {
			return true, nil
		}
		rv, err := e.r.eval(st, ctx)
		if err != nil {
			return nil, err
		}
		return truthy(rv), nil
	}

	rv, err := e.r.eval(st, ctx)
	if err != nil {
		return nil, err
	}
	switch e.op {
	case "==":
		return equalValues(lv, rv), nil
	case "!=":
		return !equalValues(lv, rv), nil
	case "contains":
		return containsValue(lv, rv), nil
	case "<", ">", "<=", ">=":
		cmp, ok := compareValues(lv, rv)
		if !ok {
			return false, nil
		}
		switch e.op {
		case "<":
			return cmp < 0, nil
		case ">":
			return cmp > 0, nil
		case "<=":
			return cmp <= 0, nil
		default:
			return cmp >= 0, nil
		}
	}
	return nil, fmt.Errorf("unknown operator %q", e.op)
}

// filterCall is one stage of a filter pipeline.
type filterCall struct {
	name string
	args []expression
}

type filteredExpr struct {
	base    expression
	filters []filterCall
}

func (e filteredExpr) eval(st *renderState, ctx *Context) (any, error) {
	val, err := e.base.eval(st, ctx)
	if err != nil {
		return nil, err
	}
	for _, fc := range e.filters {
		fn, ok := st.engine.filters[fc.name]
		if !ok {
			// Unknown filters pass the value through unchanged, so a
			// theme using an unsupported filter degrades instead of
			// failing the page.
			continue
		}
		args := make([]any, len(fc.args))
		for i, a := range fc.args {
			av, err := a.eval(st, ctx)
			if err != nil {
				return nil, err
			}
			args[i] = av
		}
		val, err = fn(st, val, args)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", fc.name, err)
		}
	}
	return val, nil
}

// exprScanner tokenizes expression source inside {{ }} and {% %}
// markers.
type exprScanner struct {
	src string
	pos int
}

type exprToken struct {
	kind string // ident, string, number, op, punct, eof
	text string
}

func (s *exprScanner) next() exprToken {
	for s.pos < len(s.src) && unicode.IsSpace(rune(s.src[s.pos])) {
		s.pos++
	}
	if s.pos >= len(s.src) {
		return exprToken{kind: "eof"}
	}
	c := s.src[s.pos]

	switch {
	case c == '\'' || c == '"':
		quote := c
		start := s.pos + 1
		i := start
		for i < len(s.src) && s.src[i] != quote {
			i++
		}
		text := s.src[start:i]
		if i < len(s.src) {
			i++
		}
		s.pos = i
		return exprToken{kind: "string", text: text}

	case c >= '0' && c <= '9' || (c == '-' && s.pos+1 < len(s.src) && s.src[s.pos+1] >= '0' && s.src[s.pos+1] <= '9'):
		start := s.pos
		s.pos++
		for s.pos < len(s.src) && (s.src[s.pos] >= '0' && s.src[s.pos] <= '9' || s.src[s.pos] == '.') {
			// ".." terminates a number so ranges like (1..5) scan.
			if s.src[s.pos] == '.' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '.' {
				break
			}
			s.pos++
		}
		return exprToken{kind: "number", text: s.src[start:s.pos]}

	case isIdentStart(c):
		start := s.pos
		for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
			s.pos++
		}
		return exprToken{kind: "ident", text: s.src[start:s.pos]}

	default:
		two := ""
		if s.pos+2 <= len(s.src) {
			two = s.src[s.pos : s.pos+2]
		}
		switch two {
		case "==", "!=", "<=", ">=", "..":
			s.pos += 2
			return exprToken{kind: "op", text: two}
		}
		s.pos++
		return exprToken{kind: "punct", text: string(c)}
	}
}

// peek returns the next token without consuming it.
func (s *exprScanner) peek() exprToken {
	saved := s.pos
	tok := s.next()
	s.pos = saved
	return tok
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-'
}

// exprParser builds expressions from a scanner.
type exprParser struct {
	sc  *exprScanner
	cur exprToken
}

func newExprParser(src string) *exprParser {
	p := &exprParser{sc: &exprScanner{src: src}}
	p.advance()
	return p
}

func (p *exprParser) advance() { p.cur = p.sc.next() }

func (p *exprParser) expectPunct(text string) error {
	if p.cur.kind != "punct" || p.cur.text != text {
		return fmt.Errorf("expected %q, got %q", text, p.cur.text)
	}
	p.advance()
	return nil
}

// parseFiltered parses "expr | filter: a, b | filter2".
func (p *exprParser) parseFiltered() (expression, error) {
	base, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	var filters []filterCall
	for p.cur.kind == "punct" && p.cur.text == "|" {
		p.advance()
		if p.cur.kind != "ident" {
			return nil, fmt.Errorf("expected filter name, got %q", p.cur.text)
		}
		fc := filterCall{name: p.cur.text}
		p.advance()
		if p.cur.kind == "punct" && p.cur.text == ":" {
			p.advance()
			for {
				arg, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				fc.args = append(fc.args, arg)
				if p.cur.kind == "punct" && p.cur.text == "," {
					p.advance()
					continue
				}
				break
			}
		}
		filters = append(filters, fc)
	}
	if len(filters) == 0 {
		return base, nil
	}
	return filteredExpr{base: base, filters: filters}, nil
}

func (p *exprParser) parseOr() (expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == "ident" && p.cur.text == "or" {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{op: "or", l: left, r: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (expression, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == "ident" && p.cur.text == "and" {
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{op: "and", l: left, r: right}
	}
	return left, nil
}

func (p *exprParser) parseComparison() (expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	op := ""
	switch {
	case p.cur.kind == "op" && p.cur.text != "..":
		op = p.cur.text
	case p.cur.kind == "punct" && (p.cur.text == "<" || p.cur.text == ">"):
		op = p.cur.text
	case p.cur.kind == "ident" && p.cur.text == "contains":
		op = "contains"
	default:
		return left, nil
	}
	p.advance()
	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return binaryExpr{op: op, l: left, r: right}, nil
}

func (p *exprParser) parsePrimary() (expression, error) {
	switch p.cur.kind {
	case "string":
		v := p.cur.text
		p.advance()
		return literalExpr{value: v}, nil

	case "number":
		text := p.cur.text
		p.advance()
		if strings.Contains(text, ".") {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q", text)
			}
			return literalExpr{value: f}, nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", text)
		}
		return literalExpr{value: n}, nil

	case "ident":
		name := p.cur.text
		p.advance()
		switch name {
		case "true":
			return literalExpr{value: true}, nil
		case "false":
			return literalExpr{value: false}, nil
		case "nil", "null", "blank", "empty":
			return literalExpr{value: nil}, nil
		}
		return p.parsePath(name)

	case "punct":
		if p.cur.text == "(" {
			p.advance()
			from, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			if p.cur.kind != "op" || p.cur.text != ".." {
				return nil, fmt.Errorf("expected .. in range, got %q", p.cur.text)
			}
			p.advance()
			to, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return rangeExpr{from: from, to: to}, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %q", p.cur.text)
}

func (p *exprParser) parsePath(name string) (expression, error) {
	pe := pathExpr{name: name}
	for {
		switch {
		case p.cur.kind == "punct" && p.cur.text == ".":
			p.advance()
			if p.cur.kind != "ident" {
				return nil, fmt.Errorf("expected property after '.', got %q", p.cur.text)
			}
			pe.segs = append(pe.segs, pathSegment{key: p.cur.text})
			p.advance()
		case p.cur.kind == "punct" && p.cur.text == "[":
			p.advance()
			idx, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			pe.segs = append(pe.segs, pathSegment{index: idx})
		default:
			return pe, nil
		}
	}
}

// parseExpression parses a full filtered expression from source and
// requires that nothing trails it.
func parseExpression(src string) (expression, error) {
	p := newExprParser(src)
	e, err := p.parseFiltered()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != "eof" {
		return nil, fmt.Errorf("unexpected trailing %q in expression %q", p.cur.text, src)
	}
	return e, nil
}
