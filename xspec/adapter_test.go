package xspec

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"
)

func TestModel_Eval(t *testing.T) {
	lib := newSpyLib(t)
	rec := &recorder{}
	s := newTestSession(t, lib, WithRecorder(rec))
	spy := &countingC{}
	m := NewCModel("spy", 1, spy.fn)

	flux, err := m.Eval(s, Vec([]float64{2}), Vec([]float64{1, 2, 4, 7}))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	want := []float64{2, 4, 6}
	for i := range want {
		if flux[i] != want[i] {
			t.Errorf("flux[%d] = %v, want %v", i, flux[i], want[i])
		}
	}
	if spy.calls != 1 {
		t.Errorf("native calls = %d, want 1", spy.calls)
	}
	if spy.spectrum != DefaultSpectrum {
		t.Errorf("spectrum = %d, want %d", spy.spectrum, DefaultSpectrum)
	}
	if lib.calls() != 1 {
		t.Errorf("setup ran %d times", lib.calls())
	}

	if len(rec.calls) != 1 {
		t.Fatalf("recorded %d calls", len(rec.calls))
	}
	info := rec.calls[0]
	if info.Model != "spy" || info.Convention != ConventionC || info.Bins != 3 || info.ID == "" || info.Err != nil {
		t.Errorf("CallInfo = %+v", info)
	}
}

func TestModel_ValidationPrecedesNativeCall(t *testing.T) {
	matrix, _ := Reshape([]float64{1, 2, 3, 4}, 2, 2)
	grid := Vec([]float64{1, 2, 3, 4})

	tests := []struct {
		name  string
		pars  Buffer[float64]
		grid  Buffer[float64]
		out   *Buffer[float64]
		check func(t *testing.T, err error)
	}{
		{
			name: "2D pars",
			pars: matrix, grid: grid,
			check: func(t *testing.T, err error) {
				if de := wantErrorAs[*DimensionalityError](t, err); de.Argument != "pars" {
					t.Errorf("Argument = %q", de.Argument)
				}
			},
		},
		{
			name: "2D energies",
			pars: Vec([]float64{1}), grid: matrix,
			check: func(t *testing.T, err error) {
				if de := wantErrorAs[*DimensionalityError](t, err); de.Argument != "energies" {
					t.Errorf("Argument = %q", de.Argument)
				}
			},
		},
		{
			name: "2D output",
			pars: Vec([]float64{1}), grid: grid, out: &matrix,
			check: func(t *testing.T, err error) {
				if de := wantErrorAs[*DimensionalityError](t, err); de.Argument != "out" {
					t.Errorf("Argument = %q", de.Argument)
				}
			},
		},
		{
			name: "too many parameters",
			pars: Vec([]float64{1, 2, 3}), grid: grid,
			check: func(t *testing.T, err error) {
				pce := wantErrorAs[*ParameterCountError](t, err)
				if pce.Expected != 1 || pce.Got != 3 {
					t.Errorf("got %+v", pce)
				}
			},
		},
		{
			name: "two edges",
			pars: Vec([]float64{1}), grid: Vec([]float64{1, 2}),
			check: func(t *testing.T, err error) {
				if gte := wantErrorAs[*GridTooSmallError](t, err); gte.Got != 2 {
					t.Errorf("Got = %d", gte.Got)
				}
			},
		},
		{
			name: "output same length as grid",
			pars: Vec([]float64{1}), grid: grid, out: ptr(Vec(make([]float64, 4))),
			check: func(t *testing.T, err error) {
				gse := wantErrorAs[*GridSizeError](t, err)
				if gse.GridLen != 4 || gse.OutputLen != 4 {
					t.Errorf("got %+v", gse)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := newSpyLib(t)
			s := newTestSession(t, lib)
			spy := &countingC{}
			m := NewCModel("spy", 1, spy.fn)

			var err error
			if tt.out != nil {
				_, err = m.EvalInto(s, tt.pars, tt.grid, *tt.out)
			} else {
				_, err = m.Eval(s, tt.pars, tt.grid)
			}
			if !errors.Is(err, ErrInvalidShape) {
				t.Fatalf("error = %v, want shape error", err)
			}
			tt.check(t, err)
			if spy.calls != 0 {
				t.Errorf("native model called %d times", spy.calls)
			}
			if lib.calls() != 0 {
				t.Error("setup should not run for invalid input")
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestModel_EvalInto(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))
	spy := &countingC{}
	m := NewCModel("spy", 1, spy.fn)

	out := []float64{-1, -1}
	got, err := m.EvalInto(s, Vec([]float64{3}), Vec([]float64{0, 1, 3}), Vec(out))
	if err != nil {
		t.Fatalf("EvalInto() error = %v", err)
	}
	if &got[0] != &out[0] {
		t.Error("EvalInto should return the caller's buffer")
	}
	if out[0] != 3 || out[1] != 6 {
		t.Errorf("out = %v", out)
	}
}

func TestModel_Options(t *testing.T) {
	s := newTestSession(t, newSpyLib(t), WithDefaultSpectrum(4))
	spy := &countingC{}
	m := NewCModel("spy", 1, spy.fn)
	grid := Vec([]float64{1, 2, 3})

	if _, err := m.Eval(s, Vec([]float64{1}), grid); err != nil {
		t.Fatal(err)
	}
	if spy.spectrum != 4 || spy.initStr != "" {
		t.Errorf("spectrum %d init %q", spy.spectrum, spy.initStr)
	}

	if _, err := m.Eval(s, Vec([]float64{1}), grid, WithSpectrum(-7), WithInitString("abc")); err != nil {
		t.Fatal(err)
	}
	if spy.spectrum != -7 || spy.initStr != "abc" {
		t.Errorf("spectrum %d init %q", spy.spectrum, spy.initStr)
	}
}

func TestModel_NativeFailure(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(t, newSpyLib(t), WithRecorder(rec))
	spy := &countingC{err: errors.New("negative flux")}
	m := NewCModel("spy", 1, spy.fn)

	_, err := m.Eval(s, Vec([]float64{1}), Vec([]float64{1, 2, 3}))
	nce := wantErrorAs[*NativeComputationError](t, err)
	if nce.Op != "spy" || nce.Message != "negative flux" {
		t.Errorf("got %+v", nce)
	}
	if len(rec.calls) != 1 || rec.calls[0].Err == nil {
		t.Errorf("recorded %+v", rec.calls)
	}
}

func TestModel_EnvironmentMissing(t *testing.T) {
	lib := newSpyLib(t)
	s := NewSession(lib, WithLookupEnv(withoutEnv))
	spy := &countingC{}
	m := NewCModel("spy", 1, spy.fn)

	_, err := m.Eval(s, Vec([]float64{1}), Vec([]float64{1, 2, 3}))
	wantErrorAs[*ConfigurationError](t, err)
	if spy.calls != 0 || lib.calls() != 0 {
		t.Error("nothing should reach the library without the environment variable")
	}
}

func TestModel_InitFailure(t *testing.T) {
	lib := newSpyLib(t)
	lib.initOut = "Error: cannot find model.dat\n"
	lib.initErr = errors.New("FNINIT failed")
	s := newTestSession(t, lib)
	spy := &countingC{}
	m := NewCModel("spy", 1, spy.fn)

	_, err := m.Eval(s, Vec([]float64{1}), Vec([]float64{1, 2, 3}))
	ie := wantErrorAs[*InitializationError](t, err)
	if ie.Output != lib.initOut {
		t.Errorf("Output = %q", ie.Output)
	}
	if spy.calls != 0 {
		t.Error("model called after failed setup")
	}

	lib.initErr = nil
	lib.initOut = ""
	if _, err := m.Eval(s, Vec([]float64{1}), Vec([]float64{1, 2, 3})); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if lib.calls() != 2 {
		t.Errorf("setup ran %d times, want 2", lib.calls())
	}
}

func TestF77Model(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))
	var gotInit bool
	m := NewF77Model("scale", 1, func(ear []float32, ne int, param []float32, ifl int, photar, _ []float32) error {
		for i := 0; i < ne; i++ {
			photar[i] = param[0] * ear[i]
		}
		gotInit = ifl == 2
		return nil
	})

	if m.Convention() != ConventionF77Single || m.NumParams() != 1 || m.Name() != "scale" {
		t.Errorf("model = %s %s %d", m.Name(), m.Convention(), m.NumParams())
	}
	flux, err := m.Eval(s, Vec([]float32{2}), Vec([]float32{1, 2, 3}), WithSpectrum(2), WithInitString("ignored"))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if flux[0] != 2 || flux[1] != 4 || !gotInit {
		t.Errorf("flux = %v spectrum passed = %v", flux, gotInit)
	}
}

func TestF77DoubleModel(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))
	m := NewF77DoubleModel("gaussian", 2, func(ear []float64, ne int, param []float64, _ int, photar, _ []float64) error {
		for i := 0; i < ne; i++ {
			photar[i] = param[0] + param[1]
		}
		return nil
	})

	flux, err := m.Eval(s, Vec([]float64{1, 2}), Vec([]float64{1, 2, 3, 4}))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if len(flux) != 3 || flux[2] != 3 {
		t.Errorf("flux = %v", flux)
	}
	if _, err := m.Eval(s, Vec([]float64{1}), Vec([]float64{1, 2, 3})); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("short pars: %v", err)
	}
}

func TestConvolution(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))
	double := NewCConvolution("double", 1, func(_ []float64, nFlux int, params []float64, _ int, flux, _ []float64, _ string) error {
		for i := 0; i < nFlux; i++ {
			flux[i] *= params[0]
		}
		return nil
	})

	spec := []float64{1, 2, 3}
	got, err := double.Convolve(s, Vec([]float64{2}), Vec([]float64{1, 2, 3, 4}), Vec(spec))
	if err != nil {
		t.Fatalf("Convolve() error = %v", err)
	}
	if &got[0] != &spec[0] || spec[2] != 6 {
		t.Errorf("spectrum = %v, want modified in place", spec)
	}

	_, err = double.Convolve(s, Vec([]float64{2}), Vec([]float64{1, 2, 3, 4}), Vec([]float64{1, 2, 3, 4}))
	gse := wantErrorAs[*GridSizeError](t, err)
	if gse.GridLen != 4 || gse.OutputLen != 4 {
		t.Errorf("got %+v", gse)
	}
}

func TestConvolution_ReferenceModels(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))

	za, err := LookupConvolution[float64](s.Catalog(), "zashift")
	if err != nil {
		t.Fatalf("LookupConvolution() error = %v", err)
	}
	spec := []float64{1, 1, 1, 1}
	if _, err := za.Convolve(s, Vec([]float64{0}), Vec([]float64{1, 2, 3, 4, 5}), Vec(spec)); err != nil {
		t.Fatalf("Convolve() error = %v", err)
	}
	for i, v := range spec {
		if v != 1 {
			t.Errorf("zero redshift changed bin %d to %v", i, v)
		}
	}

	va, err := LookupConvolution[float32](s.Catalog(), "vashift")
	if err != nil {
		t.Fatalf("LookupConvolution() error = %v", err)
	}
	if va.Convention() != ConventionF77Single {
		t.Errorf("Convention() = %s", va.Convention())
	}
	_, err = va.Convolve(s, Vec([]float32{400000}), Vec([]float32{1, 2, 3}), Vec([]float32{1, 1}))
	if !errors.Is(err, ErrNative) {
		t.Errorf("superluminal shift: %v", err)
	}
}

func TestModel_ReferencePowerLaw(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))
	pl, err := LookupModel[float64](s.Catalog(), "powerlaw")
	if err != nil {
		t.Fatal(err)
	}
	flux, err := pl.Eval(s, Vec([]float64{1}), Vec([]float64{1, 2, 4}))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(flux[0]-math.Ln2) > 1e-12 || math.Abs(flux[1]-math.Ln2) > 1e-12 {
		t.Errorf("flux = %v, want ln 2 per bin", flux)
	}
}

func sameBits[T Real](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Float64bits(float64(a[i])) != math.Float64bits(float64(b[i])) {
			return false
		}
	}
	return true
}

// checkForms evaluates name through Eval and EvalInto and compares the bits.
func checkForms[T Real](t *testing.T, s *Session, name string, pars, grid []T) {
	t.Helper()
	m, err := LookupModel[T](s.Catalog(), name)
	if err != nil {
		t.Fatalf("LookupModel(%s) error = %v", name, err)
	}
	alloc, err := m.Eval(s, Vec(pars), Vec(grid))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	out := make([]T, len(grid)-1)
	for i := range out {
		out[i] = -99
	}
	inPlace, err := m.EvalInto(s, Vec(pars), Vec(grid), Vec(out))
	if err != nil {
		t.Fatalf("EvalInto() error = %v", err)
	}
	if !sameBits(alloc, inPlace) {
		t.Errorf("%s: Eval = %v, EvalInto = %v", name, alloc, inPlace)
	}
}

func TestModel_AllocAndInPlaceAgree(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{"powerlaw", func(t *testing.T) {
			checkForms(t, s, "powerlaw", []float64{1.7}, []float64{0.3, 0.7, 1.1, 2.9, 8.4})
		}},
		{"zgauss", func(t *testing.T) {
			checkForms(t, s, "zgauss", []float64{6.4, 0.2, 0.01}, []float64{5.9, 6.1, 6.3, 6.5, 6.7})
		}},
		{"gaussian", func(t *testing.T) {
			checkForms(t, s, "gaussian", []float64{1, 0.3}, []float64{0.1, 0.5, 1, 1.5, 3})
		}},
		{"wabs", func(t *testing.T) {
			checkForms(t, s, "wabs", []float32{0.7}, []float32{0.3, 0.5, 1, 2, 10})
		}},
		{"constant", func(t *testing.T) {
			checkForms(t, s, "constant", []float32{3.25}, []float32{1, 2, 3})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.run)
	}
}

func scaleBy[T Real](_ []T, ne int, param []T, _ int, photar, _ []T) error {
	for i := 0; i < ne; i++ {
		photar[i] *= param[0]
	}
	return nil
}

func TestConvolution_InverseRoundTrip(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))
	grid := []float64{1, 2, 3, 4, 5}
	start := []float64{0.5, 3, 7.25, 1e-3}

	double := NewF77DoubleConvolution("scale", 1, scaleBy[float64])
	single := NewF77Convolution("scale", 1, scaleBy[float32])

	for _, factor := range []float64{2, 0.25, 1024} {
		t.Run(fmt.Sprint(factor), func(t *testing.T) {
			spec := slices.Clone(start)
			if _, err := double.Convolve(s, Vec([]float64{factor}), Vec(grid), Vec(spec)); err != nil {
				t.Fatal(err)
			}
			if _, err := double.Convolve(s, Vec([]float64{1 / factor}), Vec(grid), Vec(spec)); err != nil {
				t.Fatal(err)
			}
			if !sameBits(spec, start) {
				t.Errorf("double: %v, want %v", spec, start)
			}

			spec32 := narrow(start)
			if _, err := single.Convolve(s, Vec([]float32{float32(factor)}), Vec(narrow(grid)), Vec(spec32)); err != nil {
				t.Fatal(err)
			}
			if _, err := single.Convolve(s, Vec([]float32{float32(1 / factor)}), Vec(narrow(grid)), Vec(spec32)); err != nil {
				t.Fatal(err)
			}
			if !sameBits(spec32, narrow(start)) {
				t.Errorf("single: %v, want %v", spec32, narrow(start))
			}
		})
	}

	// A zero shift is its own inverse.
	za, err := LookupConvolution[float64](s.Catalog(), "zashift")
	if err != nil {
		t.Fatal(err)
	}
	spec := slices.Clone(start)
	if _, err := za.Convolve(s, Vec([]float64{0}), Vec(grid), Vec(spec)); err != nil {
		t.Fatal(err)
	}
	if !sameBits(spec, start) {
		t.Errorf("zashift(0): %v, want %v", spec, start)
	}
}

func TestModel_ThreeParameterExample(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))
	grid := Vec([]float64{0.1, 0.2, 0.3, 0.4})

	zg, err := LookupModel[float64](s.Catalog(), "zgauss")
	if err != nil {
		t.Fatal(err)
	}
	flux, err := zg.Eval(s, Vec([]float64{1.0, 1.0, 0.0}), grid)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if len(flux) != 3 {
		t.Errorf("len(flux) = %d, want 3", len(flux))
	}

	spy := &countingC{}
	three := NewCModel("three", 3, spy.fn)
	tests := []struct {
		name  string
		model interface {
			Eval(*Session, Buffer[float64], Buffer[float64], ...Option) ([]float64, error)
		}
	}{
		{"zgauss", zg},
		{"spy", three},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.model.Eval(s, Vec([]float64{1.0, 1.0}), grid)
			pce := wantErrorAs[*ParameterCountError](t, err)
			if pce.Expected != 3 || pce.Got != 2 {
				t.Errorf("got %+v, want expected=3 got=2", pce)
			}
		})
	}
	if spy.calls != 0 {
		t.Errorf("native calls = %d, want 0", spy.calls)
	}
}
