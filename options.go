package liquet

// Options carries the collaborators a render call needs. The active
// Store is passed here explicitly so that nested slot resolution can
// call back into it without a hidden global.
type Options struct {
	// Store resolves template names during slot composition.
	Store Store

	// CsrfToken returns the current session-bound anti-forgery token.
	// Required only when a template uses the csrf_token tag.
	CsrfToken func() string

	// depth tracks slot nesting to catch self-referential layouts.
	depth int
}

// withStore returns options guaranteed to carry a store, defaulting to
// the given one. A nil receiver yields fresh options.
func (o *Options) withStore(s Store) *Options {
	if o == nil {
		return &Options{Store: s}
	}
	if o.Store == nil {
		opts := *o
		opts.Store = s
		return &opts
	}
	return o
}
