package tileterm

// Option configures a Renderer during creation.
//
// Example:
//
//	// Software rendering into an image, atlas generated in memory
//	atlas, _ := tileterm.DefaultAtlas(12, 12)
//	r, err := tileterm.New("", 80, 25, 12, 12,
//	    tileterm.WithAtlas(atlas),
//	    tileterm.WithBackend(software.New()))
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	backend   Backend
	atlas     *Atlas
	title     string
	backColor Color
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		backend:   nil, // Resolved through DefaultBackend if nil
		atlas:     nil, // Loaded from the atlas path if nil
		title:     "tileterm",
		backColor: Transparent,
	}
}

// WithBackend sets the graphics backend. The Renderer takes ownership and
// closes it in Close.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithAtlas supplies an already decoded atlas. The atlas path passed to New
// is ignored.
func WithAtlas(a *Atlas) Option {
	return func(o *options) {
		o.atlas = a
	}
}

// WithTitle sets the surface title used by windowed backends.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithBackColor sets the initial background clear color.
// The default is fully transparent black.
func WithBackColor(c Color) Option {
	return func(o *options) {
		o.backColor = c
	}
}
