package liquet

// Context carries the variable bindings visible during a render.
//
// The three maps are deliberately isolated tiers. Data holds the
// globals the caller passed in. IterationVars holds bindings produced
// by loop constructs; they shadow Data during lookup and are scoped to
// the loop body that produced them. CounterVars holds control values
// explicitly supplied by a calling tag or context (search text,
// highlight pattern, slot targets); they are never inherited from Data
// and never consulted by plain variable lookup. Crossing tiers always
// requires explicit passing.
type Context struct {
	Data          map[string]any
	IterationVars map[string]any
	CounterVars   map[string]any
}

// NewContext creates a render context over the given global data.
func NewContext(data map[string]any) *Context {
	if data == nil {
		data = make(map[string]any)
	}
	return &Context{
		Data:          data,
		IterationVars: make(map[string]any),
		CounterVars:   make(map[string]any),
	}
}

// lookup resolves a dotted path for variable interpolation. The first
// key is taken from IterationVars when bound there, falling back to
// Data; the remaining keys descend into nested maps. A missing key at
// any level yields nil.
func (c *Context) lookup(keys []string) any {
	if len(keys) == 0 {
		return nil
	}
	head, ok := c.IterationVars[keys[0]]
	if !ok {
		head, ok = c.Data[keys[0]]
	}
	if !ok {
		return nil
	}
	return descend(head, keys[1:])
}

// lookupIteration resolves a dotted path entirely inside
// IterationVars. This is the resolution rule the field accessor tags
// rely on: the path names which field key to use, sourced from loop
// context.
func (c *Context) lookupIteration(keys []string) any {
	if len(keys) == 0 {
		return nil
	}
	head, ok := c.IterationVars[keys[0]]
	if !ok {
		return nil
	}
	return descend(head, keys[1:])
}

// descend walks nested string-keyed maps. A non-map value or missing
// key partway through yields nil rather than an error.
func descend(v any, keys []string) any {
	for _, key := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v, ok = m[key]
		if !ok {
			return nil
		}
	}
	return v
}

// popCounterVar returns the value bound to key in CounterVars together
// with a copy of the counter vars with that key removed. The receiver
// is not modified.
func (c *Context) popCounterVar(key string) (any, map[string]any, bool) {
	v, ok := c.CounterVars[key]
	if !ok {
		return nil, nil, false
	}
	remaining := make(map[string]any, len(c.CounterVars)-1)
	for k, val := range c.CounterVars {
		if k != key {
			remaining[k] = val
		}
	}
	return v, remaining, true
}

// SlotContent names a template that fills a slot and the data it is
// rendered with. Values of this type are bound into CounterVars under
// the slot name the layout declares.
type SlotContent struct {
	Template string
	Data     map[string]any
}
