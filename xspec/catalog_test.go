package xspec

import (
	"errors"
	"math"
	"slices"
	"testing"

	"xsmodels/native"
)

func TestCatalog_Info(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))
	c := s.Catalog()

	info, err := c.Info("ZGauss")
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.Name != "zgauss" || info.Type != native.Add || info.Language != native.CStyle8 {
		t.Errorf("info = %+v", info)
	}
	if info.NumParams() != 3 || info.Params[2].Name != "Redshift" || !info.Params[2].Frozen {
		t.Errorf("params = %+v", info.Params)
	}
	if info.Convention() != ConventionC {
		t.Errorf("Convention() = %s", info.Convention())
	}

	_, err = c.Info("nosuchmodel")
	if !errors.Is(err, ErrUnknownModel) {
		t.Errorf("Info(nosuchmodel) = %v", err)
	}
	if err.Error() != "unrecognized model 'nosuchmodel'" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestCatalog_List(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))
	c := s.Catalog()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"constant", "gaussian", "powerlaw", "vashift", "wabs", "zashift", "zgauss"}},
		{"additive", Filter{Types: []native.ModelType{native.Add}}, []string{"gaussian", "powerlaw", "zgauss"}},
		{"convolution", Filter{Types: []native.ModelType{native.Con}}, []string{"vashift", "zashift"}},
		{"single precision", Filter{Languages: []native.LanguageStyle{native.F77Style4}}, []string{"constant", "vashift", "wabs"}},
		{"multiplicative C", Filter{Types: []native.ModelType{native.Mul}, Languages: []native.LanguageStyle{native.CStyle8}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.List(tt.filter); !slices.Equal(got, tt.want) {
				t.Errorf("List() = %v, want %v", got, tt.want)
			}
		})
	}
	if c.Len() != 7 {
		t.Errorf("Len() = %d", c.Len())
	}
}

func TestCatalog_SkipsUnboundEntries(t *testing.T) {
	c := NewCatalog([]native.ModelEntry{
		{Name: "ghost", Type: native.Add, Language: native.F77Style4},
		{Name: "real", Type: native.Mul, Language: native.F77Style4,
			F77Single: func([]float32, int, []float32, int, []float32, []float32) error { return nil }},
	})
	if got := c.List(Filter{}); !slices.Equal(got, []string{"real"}) {
		t.Errorf("List() = %v", got)
	}
	if _, err := c.Info("ghost"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("Info(ghost) = %v", err)
	}
}

func TestLookupModel(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))
	c := s.Catalog()

	if _, err := LookupModel[float32](c, "wabs"); err != nil {
		t.Errorf("LookupModel[float32](wabs) error = %v", err)
	}
	if _, err := LookupModel[float64](c, "wabs"); !errors.Is(err, ErrPrecisionMismatch) {
		t.Errorf("LookupModel[float64](wabs) = %v", err)
	}
	if _, err := LookupModel[float64](c, "zashift"); !errors.Is(err, ErrModelType) {
		t.Errorf("LookupModel(zashift) = %v", err)
	}
	if _, err := LookupConvolution[float64](c, "powerlaw"); !errors.Is(err, ErrModelType) {
		t.Errorf("LookupConvolution(powerlaw) = %v", err)
	}
	if _, err := LookupModel[float64](c, "missing"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("LookupModel(missing) = %v", err)
	}
	m, err := LookupModel[float64](c, "GAUSSIAN")
	if err != nil {
		t.Fatalf("LookupModel(GAUSSIAN) error = %v", err)
	}
	if m.Convention() != ConventionF77Double || m.NumParams() != 2 {
		t.Errorf("gaussian = %s %d", m.Convention(), m.NumParams())
	}
}

func TestEvaluate(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))

	t.Run("single precision model", func(t *testing.T) {
		flux, err := Evaluate(s, "constant", EvalRequest{Pars: []float64{2.5}, Energies: []float64{1, 2, 3}})
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if !slices.Equal(flux, []float64{2.5, 2.5}) {
			t.Errorf("flux = %v", flux)
		}
	})

	t.Run("double precision model", func(t *testing.T) {
		flux, err := Evaluate(s, "gaussian", EvalRequest{Pars: []float64{2, 0}, Energies: []float64{1, 1.5, 2.5, 3}})
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if !slices.Equal(flux, []float64{0, 1, 0}) {
			t.Errorf("flux = %v", flux)
		}
	})

	t.Run("wabs", func(t *testing.T) {
		flux, err := Evaluate(s, "wabs", EvalRequest{Pars: []float64{1}, Energies: []float64{1, 3, 5}})
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		want := math.Exp(-2 * math.Pow(2, -8.0/3.0))
		if math.Abs(flux[0]-want) > 1e-6 {
			t.Errorf("flux[0] = %v, want %v", flux[0], want)
		}
	})

	t.Run("convolution leaves the request alone", func(t *testing.T) {
		in := []float64{1, 2}
		flux, err := Evaluate(s, "zashift", EvalRequest{Pars: []float64{0}, Energies: []float64{1, 2, 3}, Model: in})
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if !slices.Equal(flux, in) || &flux[0] == &in[0] {
			t.Errorf("flux = %v", flux)
		}
	})

	t.Run("shape errors pass through", func(t *testing.T) {
		_, err := Evaluate(s, "constant", EvalRequest{Pars: []float64{1, 2}, Energies: []float64{1, 2, 3}})
		wantErrorAs[*ParameterCountError](t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := Evaluate(s, "nope", EvalRequest{}); !errors.Is(err, ErrUnknownModel) {
			t.Errorf("error = %v", err)
		}
	})
}

func TestEvaluate_Spectrum(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, newSpyLib(t), WithDefaultSpectrum(4), WithRecorder(rec))
	zero, five := 0, 5

	tests := []struct {
		name     string
		spectrum *int
		want     int
	}{
		{"unset uses the session default", nil, 4},
		{"zero is passed through", &zero, 0},
		{"explicit", &five, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(s, "constant", EvalRequest{Pars: []float64{1}, Energies: []float64{1, 2, 3}, Spectrum: tt.spectrum})
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			last := rec.calls[len(rec.calls)-1]
			if last.Spectrum != tt.want {
				t.Errorf("spectrum = %d, want %d", last.Spectrum, tt.want)
			}
		})
	}
}
