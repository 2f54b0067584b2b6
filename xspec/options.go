package xspec

// DefaultSpectrum is the spectrum number used when none is given.
const DefaultSpectrum = 1

// Option adjusts a single evaluation.
type Option func(*callOptions)

type callOptions struct {
	spectrum   int
	initString string
}

// WithSpectrum sets the spectrum number passed to the model. It is not
// range checked.
func WithSpectrum(n int) Option {
	return func(o *callOptions) { o.spectrum = n }
}

// WithInitString sets the initialisation string for conventions that take
// one. Other conventions ignore it.
func WithInitString(s string) Option {
	return func(o *callOptions) { o.initString = s }
}

func resolveOptions(defaultSpectrum int, opts []Option) callOptions {
	o := callOptions{spectrum: defaultSpectrum}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
