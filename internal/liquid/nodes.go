package liquid

import (
	"fmt"
	"strings"
)

type textNode string

func (n textNode) render(_ *renderState, _ *Context, out *strings.Builder) error {
	out.WriteString(string(n))
	return nil
}

type outputNode struct{ expr expression }

func (n outputNode) render(st *renderState, ctx *Context, out *strings.Builder) error {
	v, err := n.expr.eval(st, ctx)
	if err != nil {
		return err
	}
	out.WriteString(stringify(v))
	return nil
}

type assignNode struct {
	name string
	expr expression
}

func (n assignNode) render(st *renderState, ctx *Context, _ *strings.Builder) error {
	v, err := n.expr.eval(st, ctx)
	if err != nil {
		return err
	}
	ctx.Set(n.name, v)
	return nil
}

type captureNode struct {
	name string
	body []node
}

func (n captureNode) render(st *renderState, ctx *Context, _ *strings.Builder) error {
	var b strings.Builder
	if err := renderNodes(n.body, st, ctx, &b); err != nil {
		return err
	}
	ctx.Set(n.name, b.String())
	return nil
}

type ifNode struct {
	// negate inverts the first branch's condition (unless).
	negate   bool
	branches []condBranch
	elseBody []node
}

func (n ifNode) render(st *renderState, ctx *Context, out *strings.Builder) error {
	for i, br := range n.branches {
		v, err := br.cond.eval(st, ctx)
		if err != nil {
			return err
		}
		hit := truthy(v)
		if i == 0 && n.negate {
			hit = !hit
		}
		if hit {
			return renderNodes(br.body, st, ctx, out)
		}
	}
	return renderNodes(n.elseBody, st, ctx, out)
}

type caseWhen struct {
	values []expression
	body   []node
}

type caseNode struct {
	subject  expression
	whens    []caseWhen
	elseBody []node
}

func (n caseNode) render(st *renderState, ctx *Context, out *strings.Builder) error {
	subject, err := n.subject.eval(st, ctx)
	if err != nil {
		return err
	}
	for _, w := range n.whens {
		for _, ve := range w.values {
			v, err := ve.eval(st, ctx)
			if err != nil {
				return err
			}
			if equalValues(subject, v) {
				return renderNodes(w.body, st, ctx, out)
			}
		}
	}
	return renderNodes(n.elseBody, st, ctx, out)
}

type forNode struct {
	varName       string
	coll          expression
	limit, offset expression
	body          []node
	elseBody      []node
}

func (n forNode) render(st *renderState, ctx *Context, out *strings.Builder) error {
	collV, err := n.coll.eval(st, ctx)
	if err != nil {
		return err
	}
	items := toSlice(collV)

	if n.offset != nil {
		v, err := n.offset.eval(st, ctx)
		if err != nil {
			return err
		}
		if off, ok := toInt(v); ok && off > 0 {
			if off > int64(len(items)) {
				off = int64(len(items))
			}
			items = items[off:]
		}
	}
	if n.limit != nil {
		v, err := n.limit.eval(st, ctx)
		if err != nil {
			return err
		}
		if lim, ok := toInt(v); ok && lim >= 0 && lim < int64(len(items)) {
			items = items[:lim]
		}
	}

	if len(items) == 0 {
		return renderNodes(n.elseBody, st, ctx, out)
	}

	ctx.push()
	defer ctx.pop()
	for i, item := range items {
		ctx.Set(n.varName, item)
		ctx.Set("forloop", map[string]any{
			"index":   int64(i + 1),
			"index0":  int64(i),
			"first":   i == 0,
			"last":    i == len(items)-1,
			"length":  int64(len(items)),
			"rindex":  int64(len(items) - i),
			"rindex0": int64(len(items) - i - 1),
		})
		if err := renderNodes(n.body, st, ctx, out); err != nil {
			return err
		}
	}
	return nil
}

type sectionNode struct{ name string }

func (n sectionNode) render(st *renderState, ctx *Context, out *strings.Builder) error {
	// Preloaded sections take precedence; they were rendered
	// concurrently before the layout pass.
	if pre, ok := ctx.Get("preloaded_sections"); ok {
		if html := lookupProperty(pre, n.name); html != nil {
			out.WriteString(stringify(html))
			return nil
		}
	}
	if st.sections == nil {
		out.WriteString(sectionPlaceholder(n.name))
		return nil
	}
	html, err := st.sections(n.name)
	if err != nil {
		out.WriteString(sectionPlaceholder(n.name))
		return nil
	}
	out.WriteString(html)
	return nil
}

// sectionPlaceholder is the best-effort marker emitted when a section
// cannot be rendered. One missing section never fails the whole page.
func sectionPlaceholder(name string) string {
	return fmt.Sprintf("<!-- Section '%s' not found -->", name)
}

type styleNode struct{ body []node }

func (n styleNode) render(st *renderState, ctx *Context, out *strings.Builder) error {
	var b strings.Builder
	if err := renderNodes(n.body, st, ctx, &b); err != nil {
		return err
	}
	css := strings.TrimSpace(b.String())
	if css == "" {
		return nil
	}
	out.WriteString("<style data-engine-style>\n" + css + "\n</style>")
	return nil
}

type stylesheetNode struct{ body []node }

func (n stylesheetNode) render(st *renderState, ctx *Context, _ *strings.Builder) error {
	var b strings.Builder
	if err := renderNodes(n.body, st, ctx, &b); err != nil {
		return err
	}
	st.assets.AddCSS(b.String())
	return nil
}

type javascriptNode struct{ body []node }

func (n javascriptNode) render(st *renderState, ctx *Context, _ *strings.Builder) error {
	var b strings.Builder
	if err := renderNodes(n.body, st, ctx, &b); err != nil {
		return err
	}
	st.assets.AddJS(b.String())
	return nil
}

func renderNodes(nodes []node, st *renderState, ctx *Context, out *strings.Builder) error {
	for _, n := range nodes {
		if err := n.render(st, ctx, out); err != nil {
			return err
		}
	}
	return nil
}
