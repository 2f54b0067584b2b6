package xspec

import (
	"time"

	"github.com/google/uuid"

	"xsmodels/native"
)

// entry is the uniform shape every convention is adapted to.
type entry[T Real] func(grid []T, nFlux int, pars []T, spectrum int, flux, fluxErr []T, initStr string) error

// binding pairs a model name with its adapted entry point. A negative
// nPars skips the arity check.
type binding[T Real] struct {
	name       string
	convention Convention
	nPars      int
	call       entry[T]
}

func cEntry(fn native.CFunc) entry[float64] {
	return entry[float64](fn)
}

func f77SingleEntry(fn native.F77SingleFunc) entry[float32] {
	return func(grid []float32, nFlux int, pars []float32, spectrum int, flux, fluxErr []float32, _ string) error {
		return fn(grid, nFlux, pars, spectrum, flux, fluxErr)
	}
}

func f77DoubleEntry(fn native.F77DoubleFunc) entry[float64] {
	return func(grid []float64, nFlux int, pars []float64, spectrum int, flux, fluxErr []float64, _ string) error {
		return fn(grid, nFlux, pars, spectrum, flux, fluxErr)
	}
}

// Model is an additive or multiplicative model bound to its native entry
// point. It is immutable and safe to share.
type Model[T Real] struct {
	b binding[T]
}

// NewCModel binds a C-style double precision model.
func NewCModel(name string, nPars int, fn native.CFunc) *Model[float64] {
	return &Model[float64]{b: binding[float64]{name, ConventionC, nPars, cEntry(fn)}}
}

// NewF77Model binds a legacy single precision model.
func NewF77Model(name string, nPars int, fn native.F77SingleFunc) *Model[float32] {
	return &Model[float32]{b: binding[float32]{name, ConventionF77Single, nPars, f77SingleEntry(fn)}}
}

// NewF77DoubleModel binds a legacy double precision model.
func NewF77DoubleModel(name string, nPars int, fn native.F77DoubleFunc) *Model[float64] {
	return &Model[float64]{b: binding[float64]{name, ConventionF77Double, nPars, f77DoubleEntry(fn)}}
}

func (m *Model[T]) Name() string           { return m.b.name }
func (m *Model[T]) Convention() Convention { return m.b.convention }
func (m *Model[T]) NumParams() int         { return m.b.nPars }

// Eval evaluates the model on grid and returns a new flux slice with one
// element per bin.
func (m *Model[T]) Eval(s *Session, pars, grid Buffer[T], opts ...Option) ([]T, error) {
	return evaluate(s, m.b, pars, grid, nil, "", opts)
}

// EvalInto evaluates the model into out, which must have one element fewer
// than grid. It returns out's backing slice.
func (m *Model[T]) EvalInto(s *Session, pars, grid, out Buffer[T], opts ...Option) ([]T, error) {
	return evaluate(s, m.b, pars, grid, &out, "out", opts)
}

// Convolution is a model that transforms an existing spectrum in place.
type Convolution[T Real] struct {
	b binding[T]
}

// NewCConvolution binds a C-style double precision convolution model.
func NewCConvolution(name string, nPars int, fn native.CFunc) *Convolution[float64] {
	return &Convolution[float64]{b: binding[float64]{name, ConventionC, nPars, cEntry(fn)}}
}

// NewF77Convolution binds a legacy single precision convolution model.
func NewF77Convolution(name string, nPars int, fn native.F77SingleFunc) *Convolution[float32] {
	return &Convolution[float32]{b: binding[float32]{name, ConventionF77Single, nPars, f77SingleEntry(fn)}}
}

// NewF77DoubleConvolution binds a legacy double precision convolution model.
func NewF77DoubleConvolution(name string, nPars int, fn native.F77DoubleFunc) *Convolution[float64] {
	return &Convolution[float64]{b: binding[float64]{name, ConventionF77Double, nPars, f77DoubleEntry(fn)}}
}

func (c *Convolution[T]) Name() string           { return c.b.name }
func (c *Convolution[T]) Convention() Convention { return c.b.convention }
func (c *Convolution[T]) NumParams() int         { return c.b.nPars }

// Convolve transforms model, a spectrum on grid, in place and returns its
// backing slice.
func (c *Convolution[T]) Convolve(s *Session, pars, grid, model Buffer[T], opts ...Option) ([]T, error) {
	return evaluate(s, c.b, pars, grid, &model, "model", opts)
}

// evaluate validates every buffer, then makes exactly one native call.
// out is nil for the allocating form.
func evaluate[T Real](s *Session, b binding[T], pars, grid Buffer[T], out *Buffer[T], outName string, opts []Option) ([]T, error) {
	if err := ValidateRank("pars", pars); err != nil {
		return nil, err
	}
	if err := ValidateRank("energies", grid); err != nil {
		return nil, err
	}
	if out != nil {
		if err := ValidateRank(outName, *out); err != nil {
			return nil, err
		}
	}
	if b.nPars >= 0 {
		if err := ValidateParamCount(b.nPars, pars.Len()); err != nil {
			return nil, err
		}
	}
	if err := ValidateGridSize(grid.Len()); err != nil {
		return nil, err
	}

	nFlux := grid.Len() - 1
	var flux []T
	if out != nil {
		if err := ValidateGridConsistency(grid.Len(), out.Len()); err != nil {
			return nil, err
		}
		flux = out.Data()
	} else {
		flux = make([]T, nFlux)
	}
	fluxErr := make([]T, nFlux)

	o := resolveOptions(s.defaultSpectrum, opts)
	initStr := ""
	if b.convention.AcceptsInitString() {
		initStr = o.initString
	}

	info := CallInfo{
		ID:         uuid.NewString(),
		Model:      b.name,
		Convention: b.convention,
		Bins:       nFlux,
		Spectrum:   o.spectrum,
	}
	start := time.Now()
	err := s.do(func(native.Library) error {
		if err := b.call(grid.Data(), nFlux, pars.Data(), o.spectrum, flux, fluxErr, initStr); err != nil {
			return nativeError(b.name, err)
		}
		return nil
	})
	info.Duration = time.Since(start)
	info.Err = err
	s.observe(info)

	if err != nil {
		return nil, err
	}
	return flux, nil
}
