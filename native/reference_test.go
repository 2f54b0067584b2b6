package native

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"xsmodels/db"
)

func newTestReference(t *testing.T) *Reference {
	t.Helper()
	r, err := OpenReference(db.MemoryPath)
	if err != nil {
		t.Fatalf("OpenReference() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestReference_Defaults(t *testing.T) {
	r := newTestReference(t)

	if got := r.Chatter(); got != 10 {
		t.Errorf("Chatter() = %d, want 10", got)
	}
	if got := r.Abundance(); got != "angr" {
		t.Errorf("Abundance() = %q, want angr", got)
	}
	if got := r.CrossSection(); got != "vern" {
		t.Errorf("CrossSection() = %q, want vern", got)
	}
	h0, q0, l0 := r.Cosmology()
	if h0 != 70 || q0 != 0 || l0 != 0.73 {
		t.Errorf("Cosmology() = %v %v %v, want 70 0 0.73", h0, q0, l0)
	}
	if r.NumberElements() != 30 {
		t.Errorf("NumberElements() = %d, want 30", r.NumberElements())
	}
	if r.Version() != ReferenceVersion {
		t.Errorf("Version() = %q", r.Version())
	}
}

func TestReference_InitPrintsBanner(t *testing.T) {
	r := newTestReference(t)

	out, err := CaptureStdout(r.Init)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !strings.Contains(out, "Solar Abundance Vector set to angr") {
		t.Errorf("Init() output = %q", out)
	}

	if err := r.SetChatter(0); err != nil {
		t.Fatalf("SetChatter() error = %v", err)
	}
	out, err = CaptureStdout(r.Init)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if out != "" {
		t.Errorf("Init() with chatter 0 printed %q", out)
	}
}

func TestReference_InitFailsWhenStoreClosed(t *testing.T) {
	r, err := OpenReference(db.MemoryPath)
	if err != nil {
		t.Fatalf("OpenReference() error = %v", err)
	}
	r.Close()

	var ne *NativeError
	if err := r.Init(); !errors.As(err, &ne) || ne.Op != "init" {
		t.Errorf("Init() error = %v, want NativeError{Op: init}", err)
	}
}

func TestReference_ElementAbundances(t *testing.T) {
	r := newTestReference(t)
	if err := r.SetAbundance("lodd"); err != nil {
		t.Fatalf("SetAbundance(lodd) error = %v", err)
	}

	tests := []struct {
		z    int
		name string
		want float64
	}{
		{1, "H", 1.0},
		{2, "He", 0.0792},
		{17, "Cl", 1.82e-7},
		{29, "Cu", 1.82e-8},
		{30, "Zn", 4.27e-8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ElementAbundanceByZ(tt.z); math.Abs(got-tt.want) > tt.want*1e-9 {
				t.Errorf("ElementAbundanceByZ(%d) = %g, want %g", tt.z, got, tt.want)
			}
			if got := r.ElementAbundance(tt.name); math.Abs(got-tt.want) > tt.want*1e-9 {
				t.Errorf("ElementAbundance(%s) = %g, want %g", tt.name, got, tt.want)
			}
			if got := r.ElementName(tt.z - 1); got != tt.name {
				t.Errorf("ElementName(%d) = %q, want %q", tt.z-1, got, tt.name)
			}
		})
	}
}

func TestReference_UnknownElementWritesStderr(t *testing.T) {
	r := newTestReference(t)

	var v float64
	out, err := CaptureStderr(func() error {
		v = r.ElementAbundance("Xx")
		return nil
	})
	if err != nil {
		t.Fatalf("CaptureStderr() error = %v", err)
	}
	if v != 0 {
		t.Errorf("ElementAbundance(Xx) = %g, want 0", v)
	}
	if !strings.Contains(out, "Invalid element: Xx") {
		t.Errorf("stderr = %q", out)
	}
}

func TestReference_Tables(t *testing.T) {
	r := newTestReference(t)

	if err := r.SetAbundance("WILM"); err != nil {
		t.Fatalf("SetAbundance(WILM) error = %v", err)
	}
	if r.Abundance() != "wilm" {
		t.Errorf("Abundance() = %q, want wilm", r.Abundance())
	}
	if err := r.SetAbundance("nope"); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("SetAbundance(nope) error = %v, want ErrUnknownTable", err)
	}
	if r.Abundance() != "wilm" {
		t.Errorf("failed SetAbundance changed table to %q", r.Abundance())
	}

	if err := r.SetCrossSection("bcmc"); err != nil {
		t.Fatalf("SetCrossSection(bcmc) error = %v", err)
	}
	if err := r.SetCrossSection("nope"); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("SetCrossSection(nope) error = %v, want ErrUnknownTable", err)
	}
	if r.CrossSection() != "bcmc" {
		t.Errorf("CrossSection() = %q, want bcmc", r.CrossSection())
	}
}

func TestReference_Sentinels(t *testing.T) {
	r := newTestReference(t)

	if got := r.XFLTValue(1, "missing"); got != BadValue {
		t.Errorf("XFLTValue(missing) = %g, want BadValue", got)
	}
	if got := r.Keyword("missing"); got != BadValue {
		t.Errorf("Keyword(missing) = %g, want BadValue", got)
	}
	if got := r.ModelString("missing"); got != NotAKey {
		t.Errorf("ModelString(missing) = %q, want NotAKey", got)
	}

	_ = r.SetXFLT(1, map[string]float64{"inner": 1.5})
	_ = r.SetKeyword("redshift", 0.2)
	_ = r.SetModelString("neivers", "3.0")

	if got := r.XFLTValue(1, "inner"); got != 1.5 {
		t.Errorf("XFLTValue(inner) = %g, want 1.5", got)
	}
	if got := r.Keyword("redshift"); got != 0.2 {
		t.Errorf("Keyword(redshift) = %g, want 0.2", got)
	}
	if got := r.ModelString("NEIVERS"); got != "3.0" {
		t.Errorf("ModelString(NEIVERS) = %q, want 3.0", got)
	}
	if got := r.ModelStrings(); got["NEIVERS"] != "3.0" {
		t.Errorf("ModelStrings() = %v", got)
	}
}

func TestReference_StatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	r, err := OpenReference(path)
	if err != nil {
		t.Fatalf("OpenReference() error = %v", err)
	}
	if err := r.SetAbundance("lodd"); err != nil {
		t.Fatalf("SetAbundance() error = %v", err)
	}
	if err := r.SetCosmology(67.4, 0.1, 0.685); err != nil {
		t.Fatalf("SetCosmology() error = %v", err)
	}
	if err := r.SetModelString("APECROOT", "3.1.0"); err != nil {
		t.Fatalf("SetModelString() error = %v", err)
	}
	r.Close()

	r2, err := OpenReference(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer r2.Close()

	if r2.Abundance() != "lodd" {
		t.Errorf("Abundance() after reopen = %q, want lodd", r2.Abundance())
	}
	if h0, q0, l0 := r2.Cosmology(); h0 != 67.4 || q0 != 0.1 || l0 != 0.685 {
		t.Errorf("Cosmology() after reopen = %v %v %v", h0, q0, l0)
	}
	if r2.ModelString("apecroot") != "3.1.0" {
		t.Errorf("ModelString after reopen = %q", r2.ModelString("apecroot"))
	}
}

func TestReference_Reset(t *testing.T) {
	r := newTestReference(t)

	_ = r.SetChatter(0)
	_ = r.SetAbundance("lodd")
	_ = r.SetKeyword("k", 1)
	_ = r.SetModelString("K", "v")

	if err := r.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if r.Chatter() != 10 || r.Abundance() != "angr" {
		t.Errorf("after Reset chatter = %d abund = %q", r.Chatter(), r.Abundance())
	}
	if r.Keyword("k") != BadValue {
		t.Error("keyword survived Reset")
	}
	if r.ModelString("K") != NotAKey {
		t.Error("model string survived Reset")
	}
}

func TestReference_ClearDatabases(t *testing.T) {
	r := newTestReference(t)

	_ = r.SetXFLT(2, map[string]float64{"a": 1})
	_ = r.SetKeyword("k", 1)
	_ = r.SetModelString("K", "v")

	if err := r.ClearXFLT(); err != nil {
		t.Fatalf("ClearXFLT() error = %v", err)
	}
	if err := r.ClearKeywords(); err != nil {
		t.Fatalf("ClearKeywords() error = %v", err)
	}
	if err := r.ClearModelStrings(); err != nil {
		t.Fatalf("ClearModelStrings() error = %v", err)
	}
	if len(r.XFLT(2)) != 0 || r.Keyword("k") != BadValue || len(r.ModelStrings()) != 0 {
		t.Error("databases not cleared")
	}
}

func TestReference_SetCosmologyIsAtomic(t *testing.T) {
	r := newTestReference(t)
	for _, event := range []string{"INSERT", "UPDATE"} {
		stmt := `CREATE TRIGGER refuse_q0_` + event + ` BEFORE ` + event + ` ON settings
			WHEN NEW.key = '` + db.KeyCosmoQ0 + `' BEGIN SELECT RAISE(ABORT, 'refused'); END`
		if _, err := r.database.DB().Exec(stmt); err != nil {
			t.Fatalf("create trigger: %v", err)
		}
	}

	err := r.SetCosmology(50, 0.5, 0.5)
	var ne *NativeError
	if !errors.As(err, &ne) || ne.Op != "cosmo" {
		t.Fatalf("SetCosmology() error = %v, want a cosmo NativeError", err)
	}
	if h0, q0, l0 := r.Cosmology(); h0 != 70 || q0 != 0 || l0 != 0.73 {
		t.Errorf("Cosmology() = %v %v %v after a failed write", h0, q0, l0)
	}
	for key, want := range map[string]string{db.KeyCosmoH0: "70", db.KeyCosmoLambda0: "0.73"} {
		if got, _ := r.store.Setting(context.Background(), key); got != want {
			t.Errorf("stored %s = %q, want %q", key, got, want)
		}
	}
}
