package liquet

// Engine ties a template store and configuration together and renders
// full pages through layout composition.
type Engine struct {
	store Store
	cfg   Config
	csrf  func() string
}

// NewEngine creates an engine over the given store. csrfToken may be
// nil when no template uses the csrf_token tag.
func NewEngine(store Store, cfg Config, csrfToken func() string) *Engine {
	return &Engine{store: store, cfg: cfg.withDefaults(), csrf: csrfToken}
}

// Store exposes the engine's template store.
func (e *Engine) Store() Store { return e.store }

func (e *Engine) options() *Options {
	return &Options{Store: e.store, CsrfToken: e.csrf}
}

// RenderNamed renders a single template by name with the given data,
// without layout composition.
func (e *Engine) RenderNamed(name string, data map[string]any) (string, error) {
	return e.store.RenderNamed(name, data, e.options())
}

// RenderPage renders the body template inside the configured default
// layout.
func (e *Engine) RenderPage(body string, data map[string]any) (string, error) {
	return e.RenderLayout(e.cfg.DefaultLayout, body, data)
}

// RenderLayout renders the body template inside the named
// layout. The caller's data is copied and extended with the
// conventional page bindings: "main" carries the body template name,
// and "title" and "basePath" are seeded from configuration when the
// caller has not set them. The layout reaches the body through its
// main slot, which is bound to the body template over the same page
// data.
func (e *Engine) RenderLayout(layout, body string, data map[string]any) (string, error) {
	page := make(map[string]any, len(data)+3)
	for k, v := range data {
		page[k] = v
	}
	page["main"] = body
	if _, ok := page["title"]; !ok {
		page["title"] = e.cfg.SiteTitle
	}
	if _, ok := page["basePath"]; !ok {
		page["basePath"] = e.cfg.BasePath
	}

	tmpl, err := e.store.Get(layout)
	if err != nil {
		return "", err
	}
	ctx := NewContext(page)
	ctx.CounterVars["main"] = SlotContent{Template: body, Data: page}
	return renderTemplate(tmpl, ctx, e.options())
}
