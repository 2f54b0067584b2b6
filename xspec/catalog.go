package xspec

import (
	"fmt"
	"slices"
	"strings"

	"xsmodels/native"
)

// ModelInfo describes one registered model.
type ModelInfo struct {
	Name      string
	FuncName  string
	Type      native.ModelType
	Language  native.LanguageStyle
	Params    []native.ParamInfo
	ELow      float64
	EHigh     float64
	UseErrors bool
	CanCache  bool
}

// Convention returns the signature the model is called through.
func (m ModelInfo) Convention() Convention { return conventionFor(m.Language) }

// NumParams is the parameter count the model expects.
func (m ModelInfo) NumParams() int { return len(m.Params) }

// Filter restricts List. Empty fields match everything.
type Filter struct {
	Types     []native.ModelType
	Languages []native.LanguageStyle
}

func (f Filter) match(m ModelInfo) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, m.Type) {
		return false
	}
	if len(f.Languages) > 0 && !slices.Contains(f.Languages, m.Language) {
		return false
	}
	return true
}

type catalogEntry struct {
	info  ModelInfo
	model any // *Model[T] or *Convolution[T]
}

// Catalog indexes the models compiled into the library by name. Names are
// matched case-insensitively.
type Catalog struct {
	entries map[string]catalogEntry
	names   []string
}

// NewCatalog builds a Catalog from the library's model table. Later entries
// replace earlier ones with the same name.
func NewCatalog(models []native.ModelEntry) *Catalog {
	c := &Catalog{entries: make(map[string]catalogEntry, len(models))}
	for _, e := range models {
		key := strings.ToLower(e.Name)
		if _, dup := c.entries[key]; !dup {
			c.names = append(c.names, e.Name)
		}
		c.entries[key] = catalogEntry{info: infoFrom(e), model: bind(e)}
	}
	slices.SortFunc(c.names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return c
}

func infoFrom(e native.ModelEntry) ModelInfo {
	return ModelInfo{
		Name:      e.Name,
		FuncName:  e.FuncName,
		Type:      e.Type,
		Language:  e.Language,
		Params:    slices.Clone(e.Params),
		ELow:      e.ELow,
		EHigh:     e.EHigh,
		UseErrors: e.UseErrors,
		CanCache:  e.CanCache,
	}
}

func bind(e native.ModelEntry) any {
	n := len(e.Params)
	con := e.Type == native.Con
	switch conventionFor(e.Language) {
	case ConventionF77Single:
		if e.F77Single == nil {
			return nil
		}
		if con {
			return NewF77Convolution(e.Name, n, e.F77Single)
		}
		return NewF77Model(e.Name, n, e.F77Single)
	case ConventionF77Double:
		if e.F77Double == nil {
			return nil
		}
		if con {
			return NewF77DoubleConvolution(e.Name, n, e.F77Double)
		}
		return NewF77DoubleModel(e.Name, n, e.F77Double)
	default:
		if e.C == nil {
			return nil
		}
		if con {
			return NewCConvolution(e.Name, n, e.C)
		}
		return NewCModel(e.Name, n, e.C)
	}
}

func (c *Catalog) lookup(name string) (catalogEntry, error) {
	e, ok := c.entries[strings.ToLower(name)]
	if !ok || e.model == nil {
		return catalogEntry{}, fmt.Errorf("%w '%s'", ErrUnknownModel, name)
	}
	return e, nil
}

// Info returns the description of name.
func (c *Catalog) Info(name string) (ModelInfo, error) {
	e, err := c.lookup(name)
	if err != nil {
		return ModelInfo{}, err
	}
	return e.info, nil
}

// List returns the names of the models matching f in case-insensitive order.
func (c *Catalog) List(f Filter) []string {
	var out []string
	for _, n := range c.names {
		e := c.entries[strings.ToLower(n)]
		if e.model != nil && f.match(e.info) {
			out = append(out, n)
		}
	}
	return out
}

// Len is the number of callable models.
func (c *Catalog) Len() int { return len(c.List(Filter{})) }

// Catalog returns the session's model catalog, built from the library on
// first use.
func (s *Session) Catalog() *Catalog {
	s.catalogOnce.Do(func() {
		s.catalog = NewCatalog(s.lib.Models())
	})
	return s.catalog
}

// LookupModel returns the additive or multiplicative model name with element
// type T.
func LookupModel[T Real](c *Catalog, name string) (*Model[T], error) {
	e, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	if e.info.Type == native.Con {
		return nil, fmt.Errorf("%w: %s is a convolution model", ErrModelType, e.info.Name)
	}
	m, ok := e.model.(*Model[T])
	if !ok {
		return nil, fmt.Errorf("%w: %s uses the %s convention", ErrPrecisionMismatch, e.info.Name, e.info.Convention())
	}
	return m, nil
}

// LookupConvolution returns the convolution model name with element type T.
func LookupConvolution[T Real](c *Catalog, name string) (*Convolution[T], error) {
	e, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	if e.info.Type != native.Con {
		return nil, fmt.Errorf("%w: %s is not a convolution model", ErrModelType, e.info.Name)
	}
	m, ok := e.model.(*Convolution[T])
	if !ok {
		return nil, fmt.Errorf("%w: %s uses the %s convention", ErrPrecisionMismatch, e.info.Name, e.info.Convention())
	}
	return m, nil
}

// EvalRequest is a precision-independent evaluation. Model is the input
// spectrum for convolution models and is ignored otherwise. A nil Spectrum
// uses the session default; zero is a valid spectrum number.
type EvalRequest struct {
	Pars       []float64
	Energies   []float64
	Model      []float64
	Spectrum   *int
	InitString string
}

// Evaluate runs the named model in whatever precision it was compiled with
// and returns the result in double precision.
func Evaluate(s *Session, name string, req EvalRequest) ([]float64, error) {
	e, err := s.Catalog().lookup(name)
	if err != nil {
		return nil, err
	}
	var opts []Option
	if req.Spectrum != nil {
		opts = append(opts, WithSpectrum(*req.Spectrum))
	}
	if req.InitString != "" {
		opts = append(opts, WithInitString(req.InitString))
	}

	switch m := e.model.(type) {
	case *Model[float64]:
		return m.Eval(s, Vec(req.Pars), Vec(req.Energies), opts...)
	case *Model[float32]:
		out, err := m.Eval(s, Vec(narrow(req.Pars)), Vec(narrow(req.Energies)), opts...)
		return widen(out), err
	case *Convolution[float64]:
		spec := slices.Clone(req.Model)
		return m.Convolve(s, Vec(req.Pars), Vec(req.Energies), Vec(spec), opts...)
	case *Convolution[float32]:
		out, err := m.Convolve(s, Vec(narrow(req.Pars)), Vec(narrow(req.Energies)), Vec(narrow(req.Model)), opts...)
		return widen(out), err
	}
	return nil, fmt.Errorf("%w '%s'", ErrUnknownModel, name)
}

func narrow(in []float64) []float32 {
	if in == nil {
		return nil
	}
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

func widen(in []float32) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
