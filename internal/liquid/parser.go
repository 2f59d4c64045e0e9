package liquid

import (
	"fmt"
	"strings"
)

// node is one element of a parsed template.
type node interface {
	render(st *renderState, ctx *Context, out *strings.Builder) error
}

// rawToken is a lexer-level piece of the template source.
type rawToken struct {
	kind string // text, output, tag
	text string // tag/output inner source, or literal text
}

// lexTemplate splits template source into text, {{ output }} and
// {% tag %} tokens.
func lexTemplate(src string) []rawToken {
	var tokens []rawToken
	for len(src) > 0 {
		open := strings.IndexByte(src, '{')
		if open < 0 || open+1 >= len(src) {
			tokens = append(tokens, rawToken{kind: "text", text: src})
			break
		}
		marker := src[open+1]
		if marker != '{' && marker != '%' {
			// Lone brace; emit through it and continue.
			tokens = append(tokens, rawToken{kind: "text", text: src[:open+1]})
			src = src[open+1:]
			continue
		}
		if open > 0 {
			tokens = append(tokens, rawToken{kind: "text", text: src[:open]})
		}
		closeMark := "}}"
		kind := "output"
		if marker == '%' {
			closeMark = "%}"
			kind = "tag"
		}
		end := strings.Index(src[open+2:], closeMark)
		if end < 0 {
			// Unterminated marker renders as literal text.
			tokens = append(tokens, rawToken{kind: "text", text: src[open:]})
			break
		}
		inner := src[open+2 : open+2+end]
		tokens = append(tokens, rawToken{kind: kind, text: strings.TrimSpace(inner)})
		src = src[open+2+end+len(closeMark):]
	}
	return tokens
}

// splitTag separates a tag token into its name and argument source.
func splitTag(src string) (name, args string) {
	i := strings.IndexFunc(src, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' })
	if i < 0 {
		return src, ""
	}
	return src[:i], strings.TrimSpace(src[i:])
}

// templateParser consumes lexed tokens into a node tree.
type templateParser struct {
	tokens []rawToken
	pos    int
}

// Parse compiles template source into a renderable node list.
func Parse(src string) ([]node, error) {
	p := &templateParser{tokens: lexTemplate(src)}
	nodes, terminator, err := p.parseUntil(nil)
	if err != nil {
		return nil, err
	}
	if terminator != "" {
		return nil, fmt.Errorf("unexpected {%% %s %%} outside its block", terminator)
	}
	return nodes, nil
}

// parseUntil parses nodes until one of the named terminator tags is
// seen, returning the terminator (or "" at end of input).
func (p *templateParser) parseUntil(terminators []string) ([]node, string, error) {
	var nodes []node
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++

		switch tok.kind {
		case "text":
			nodes = append(nodes, textNode(tok.text))

		case "output":
			expr, err := parseExpression(tok.text)
			if err != nil {
				return nil, "", fmt.Errorf("bad output expression: %w", err)
			}
			nodes = append(nodes, outputNode{expr: expr})

		case "tag":
			name, args := splitTag(tok.text)
			for _, t := range terminators {
				if name == t {
					return nodes, name, nil
				}
			}
			n, err := p.parseTag(name, args)
			if err != nil {
				return nil, "", err
			}
			if n != nil {
				nodes = append(nodes, n)
			}
		}
	}
	return nodes, "", nil
}

func (p *templateParser) parseTag(name, args string) (node, error) {
	switch name {
	case "assign":
		eq := strings.Index(args, "=")
		if eq < 0 {
			return nil, fmt.Errorf("assign without '=': %q", args)
		}
		varName := strings.TrimSpace(args[:eq])
		expr, err := parseExpression(strings.TrimSpace(args[eq+1:]))
		if err != nil {
			return nil, fmt.Errorf("bad assign expression: %w", err)
		}
		return assignNode{name: varName, expr: expr}, nil

	case "capture":
		varName := strings.TrimSpace(args)
		body, _, err := p.requireBlock("endcapture")
		if err != nil {
			return nil, err
		}
		return captureNode{name: varName, body: body}, nil

	case "if", "unless":
		return p.parseIf(name, args)

	case "case":
		return p.parseCase(args)

	case "for":
		return p.parseFor(args)

	case "comment":
		if _, _, err := p.requireBlock("endcomment"); err != nil {
			return nil, err
		}
		return nil, nil

	case "raw":
		// Raw content is re-emitted verbatim, markers included.
		var b strings.Builder
		for p.pos < len(p.tokens) {
			tok := p.tokens[p.pos]
			p.pos++
			switch tok.kind {
			case "text":
				b.WriteString(tok.text)
			case "output":
				b.WriteString("{{ " + tok.text + " }}")
			case "tag":
				if tagName, _ := splitTag(tok.text); tagName == "endraw" {
					return textNode(b.String()), nil
				}
				b.WriteString("{% " + tok.text + " %}")
			}
		}
		return nil, fmt.Errorf("missing {%% endraw %%}")

	case "section":
		sectionName := strings.Trim(args, `'" `)
		if sectionName == "" {
			return nil, fmt.Errorf("section tag without a name")
		}
		return sectionNode{name: sectionName}, nil

	case "style":
		body, _, err := p.requireBlock("endstyle")
		if err != nil {
			return nil, err
		}
		return styleNode{body: body}, nil

	case "stylesheet":
		body, _, err := p.requireBlock("endstylesheet")
		if err != nil {
			return nil, err
		}
		return stylesheetNode{body: body}, nil

	case "javascript":
		body, _, err := p.requireBlock("endjavascript")
		if err != nil {
			return nil, err
		}
		return javascriptNode{body: body}, nil

	case "schema":
		// Schema blocks configure the section renderer; they never
		// produce output.
		if _, _, err := p.requireBlock("endschema"); err != nil {
			return nil, err
		}
		return nil, nil

	default:
		// Unknown tags are dropped rather than failing the render, so
		// themes using unsupported tags degrade gracefully.
		return nil, nil
	}
}

func (p *templateParser) requireBlock(terminator string) ([]node, string, error) {
	body, term, err := p.parseUntil([]string{terminator})
	if err != nil {
		return nil, "", err
	}
	if term != terminator {
		return nil, "", fmt.Errorf("missing {%% %s %%}", terminator)
	}
	return body, term, nil
}

type condBranch struct {
	cond expression
	body []node
}

func (p *templateParser) parseIf(kind, args string) (node, error) {
	cond, err := parseExpression(args)
	if err != nil {
		return nil, fmt.Errorf("bad %s condition: %w", kind, err)
	}

	endTag := "end" + kind
	var branches []condBranch
	var elseBody []node

	body, term, err := p.parseUntil([]string{"elsif", "else", endTag})
	if err != nil {
		return nil, err
	}
	branches = append(branches, condBranch{cond: cond, body: body})

	for term == "elsif" {
		elsifArgs := p.lastTagArgs()
		cond, err := parseExpression(elsifArgs)
		if err != nil {
			return nil, fmt.Errorf("bad elsif condition: %w", err)
		}
		body, term, err = p.parseUntil([]string{"elsif", "else", endTag})
		if err != nil {
			return nil, err
		}
		branches = append(branches, condBranch{cond: cond, body: body})
	}
	if term == "else" {
		elseBody, term, err = p.parseUntil([]string{endTag})
		if err != nil {
			return nil, err
		}
	}
	if term != endTag {
		return nil, fmt.Errorf("missing {%% %s %%}", endTag)
	}

	return ifNode{negate: kind == "unless", branches: branches, elseBody: elseBody}, nil
}

// lastTagArgs returns the argument text of the terminator tag just
// consumed by parseUntil.
func (p *templateParser) lastTagArgs() string {
	_, args := splitTag(p.tokens[p.pos-1].text)
	return args
}

func (p *templateParser) parseCase(args string) (node, error) {
	subject, err := parseExpression(args)
	if err != nil {
		return nil, fmt.Errorf("bad case subject: %w", err)
	}

	// Content before the first when is discarded, per Liquid.
	_, term, err := p.parseUntil([]string{"when", "else", "endcase"})
	if err != nil {
		return nil, err
	}

	var whens []caseWhen
	var elseBody []node
	for term == "when" {
		whenArgs := p.lastTagArgs()
		var values []expression
		for _, part := range strings.Split(whenArgs, ",") {
			v, err := parseExpression(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("bad when value: %w", err)
			}
			values = append(values, v)
		}
		var body []node
		body, term, err = p.parseUntil([]string{"when", "else", "endcase"})
		if err != nil {
			return nil, err
		}
		whens = append(whens, caseWhen{values: values, body: body})
	}
	if term == "else" {
		elseBody, term, err = p.parseUntil([]string{"endcase"})
		if err != nil {
			return nil, err
		}
	}
	if term != "endcase" {
		return nil, fmt.Errorf("missing {%% endcase %%}")
	}
	return caseNode{subject: subject, whens: whens, elseBody: elseBody}, nil
}

func (p *templateParser) parseFor(args string) (node, error) {
	inIdx := strings.Index(args, " in ")
	if inIdx < 0 {
		return nil, fmt.Errorf("for without 'in': %q", args)
	}
	varName := strings.TrimSpace(args[:inIdx])
	rest := strings.TrimSpace(args[inIdx+4:])

	// Trailing "limit: n" and "offset: n" parameters.
	var limitExpr, offsetExpr expression
	parser := newExprParser(rest)
	coll, err := parser.parseOr()
	if err != nil {
		return nil, fmt.Errorf("bad for collection: %w", err)
	}
	for parser.cur.kind == "ident" {
		param := parser.cur.text
		parser.advance()
		if parser.cur.kind == "punct" && parser.cur.text == ":" {
			parser.advance()
		}
		val, err := parser.parsePrimary()
		if err != nil {
			return nil, fmt.Errorf("bad for parameter %q: %w", param, err)
		}
		switch param {
		case "limit":
			limitExpr = val
		case "offset":
			offsetExpr = val
		}
		if parser.cur.kind == "punct" && parser.cur.text == "," {
			parser.advance()
		}
	}

	body, term, err := p.parseUntil([]string{"else", "endfor"})
	if err != nil {
		return nil, err
	}
	var elseBody []node
	if term == "else" {
		elseBody, term, err = p.parseUntil([]string{"endfor"})
		if err != nil {
			return nil, err
		}
	}
	if term != "endfor" {
		return nil, fmt.Errorf("missing {%% endfor %%}")
	}
	return forNode{varName: varName, coll: coll, limit: limitExpr, offset: offsetExpr, body: body, elseBody: elseBody}, nil
}
