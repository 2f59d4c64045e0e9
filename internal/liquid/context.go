package liquid

// Context holds the variables visible to a template. Scopes nest so
// that loop variables and captured assignments shadow outer bindings
// without mutating them.
type Context struct {
	scopes []map[string]any
}

// NewContext creates a context over the given root bindings. The map is
// used directly, not copied; assignments made by the template land in
// an inner scope and never mutate it.
func NewContext(root map[string]any) *Context {
	if root == nil {
		root = map[string]any{}
	}
	return &Context{scopes: []map[string]any{root, {}}}
}

// Get resolves a top-level variable, innermost scope first.
func (c *Context) Get(name string) (any, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set binds a variable in the innermost scope. Used by assign and
// capture tags.
func (c *Context) Set(name string, value any) {
	c.scopes[len(c.scopes)-1][name] = value
}

// push opens a new scope for a block (loop bodies).
func (c *Context) push() {
	c.scopes = append(c.scopes, map[string]any{})
}

// pop closes the innermost scope.
func (c *Context) pop() {
	if len(c.scopes) > 1 {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
}
