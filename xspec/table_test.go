package xspec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"xsmodels/core"
)

const testTable = `name: ramp
parameter:
  name: kT
  values: [1.0, 2.0]
energies: [1.0, 2.0, 3.0]
spectra:
  - [1.0, 2.0]
  - [3.0, 4.0]
`

func writeTableFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ramp.yaml")
	if err := os.WriteFile(path, []byte(testTable), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseTableType(t *testing.T) {
	for in, want := range map[string]TableType{"add": TableAdd, "MUL": TableMul, "Exp": TableExp} {
		if got, err := ParseTableType(in); err != nil || got != want {
			t.Errorf("ParseTableType(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseTableType("atable"); err == nil {
		t.Error("ParseTableType(atable) should fail")
	}
}

func TestSession_TableModel(t *testing.T) {
	path := writeTableFile(t)
	rec := &recorder{}
	s := newTestSession(t, newSpyLib(t), WithRecorder(rec))

	flux, err := s.TableModel(path, TableAdd, Vec([]float32{1.5, 2}), Vec([]float32{1, 2, 3}))
	if err != nil {
		t.Fatalf("TableModel() error = %v", err)
	}
	if flux[0] != 4 || flux[1] != 6 {
		t.Errorf("flux = %v, want [4 6]", flux)
	}
	if len(rec.calls) != 1 || rec.calls[0].Convention != ConventionTable || rec.calls[0].Model != path {
		t.Errorf("recorded %+v", rec.calls)
	}

	out := make([]float32, 2)
	if _, err := s.TableModelInto(path, TableMul, Vec([]float32{1}), Vec([]float32{1, 2, 3}), Vec(out)); err != nil {
		t.Fatalf("TableModelInto() error = %v", err)
	}
	if out[0] != 1 || out[1] != 2 {
		t.Errorf("out = %v", out)
	}
}

func TestSession_TableModelErrors(t *testing.T) {
	path := writeTableFile(t)
	s := newTestSession(t, newSpyLib(t))

	t.Run("arity is left to the library", func(t *testing.T) {
		_, err := s.TableModel(path, TableAdd, Vec([]float32{1}), Vec([]float32{1, 2, 3}))
		if !errors.Is(err, ErrNative) {
			t.Errorf("error = %v, want native error", err)
		}
		if errors.Is(err, ErrInvalidShape) {
			t.Error("parameter count should not be checked before the call")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := s.TableModel(filepath.Join(t.TempDir(), "none.yaml"), TableAdd, Vec([]float32{1, 1}), Vec([]float32{1, 2, 3}))
		if !errors.Is(err, ErrNative) {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("grid checks still apply", func(t *testing.T) {
		_, err := s.TableModel(path, TableAdd, Vec([]float32{1, 1}), Vec([]float32{1, 2}))
		wantErrorAs[*GridTooSmallError](t, err)

		_, err = s.TableModelInto(path, TableAdd, Vec([]float32{1, 1}), Vec([]float32{1, 2, 3}), Vec(make([]float32, 3)))
		wantErrorAs[*GridSizeError](t, err)
	})
}

func TestApplyProfile(t *testing.T) {
	s := newTestSession(t, newSpyLib(t))
	chatter := 5
	p := &core.Profile{
		Chatter:      &chatter,
		Abundance:    "wilm",
		CrossSection: "bcmc",
		Cosmology:    &core.ProfileCosmology{H0: 67, Q0: 0, Lambda0: 0.7},
		ModelStrings: map[string]string{"APECROOT": "3.0.9"},
		Keywords:     map[string]float64{"ZMAX": 2},
		XFLT:         map[int]map[string]float64{1: {"XFLT0001": 8}},
	}
	if err := ApplyProfile(s, p); err != nil {
		t.Fatalf("ApplyProfile() error = %v", err)
	}

	if got, _ := s.Chatter(); got != 5 {
		t.Errorf("Chatter() = %d", got)
	}
	if got, _ := s.Abundance(); got != "wilm" {
		t.Errorf("Abundance() = %q", got)
	}
	if got, _ := s.Cosmology(); got.H0 != 67 || got.Lambda0 != 0.7 {
		t.Errorf("Cosmology() = %+v", got)
	}
	if v, _ := s.XFLTValueAt(1, 1); v != 8 {
		t.Errorf("XFLTValueAt() = %v", v)
	}
	if v, _ := s.Keyword("ZMAX"); v != 2 {
		t.Errorf("Keyword() = %v", v)
	}

	if err := ApplyProfile(s, &core.Profile{Abundance: "nosuch"}); !errors.Is(err, ErrLookup) {
		t.Errorf("bad table: %v", err)
	}
	if err := ApplyProfile(s, nil); err != nil {
		t.Errorf("nil profile: %v", err)
	}
}
