package native

import "strings"

// Sentinel values the library returns instead of reporting "not found".
const (
	// BadValue is returned by real-valued lookups (XFLT, keyword database)
	// for keys that are not set.
	BadValue = -1.2e-34

	// NotAKey is returned by the model string database for unset keys.
	NotAKey = "$$NOT$$"
)

// CFunc is the C-style double precision entry point. energy has nFlux+1
// elements; flux and fluxErr have nFlux.
type CFunc func(energy []float64, nFlux int, params []float64, spectrum int, flux, fluxErr []float64, initStr string) error

// F77SingleFunc is the legacy single precision entry point.
type F77SingleFunc func(ear []float32, ne int, param []float32, ifl int, photar, photer []float32) error

// F77DoubleFunc is the legacy double precision entry point.
type F77DoubleFunc func(ear []float64, ne int, param []float64, ifl int, photar, photer []float64) error

// ModelType classifies how a model combines with others.
type ModelType int

const (
	Add ModelType = iota
	Mul
	Con
)

func (t ModelType) String() string {
	switch t {
	case Add:
		return "Add"
	case Mul:
		return "Mul"
	case Con:
		return "Con"
	default:
		return "Unknown"
	}
}

// ParseModelType accepts "add", "mul" and "con" in any case.
func ParseModelType(s string) (ModelType, bool) {
	switch strings.ToLower(s) {
	case "add":
		return Add, true
	case "mul":
		return Mul, true
	case "con":
		return Con, true
	}
	return 0, false
}

// LanguageStyle is the calling convention a model was written against.
type LanguageStyle int

const (
	CppStyle8 LanguageStyle = iota
	CStyle8
	F77Style4
	F77Style8
)

func (l LanguageStyle) String() string {
	switch l {
	case CppStyle8:
		return "CppStyle8"
	case CStyle8:
		return "CStyle8"
	case F77Style4:
		return "F77Style4"
	case F77Style8:
		return "F77Style8"
	default:
		return "Unknown"
	}
}

// ParseLanguageStyle matches the String form case-insensitively.
func ParseLanguageStyle(s string) (LanguageStyle, bool) {
	for _, l := range []LanguageStyle{CppStyle8, CStyle8, F77Style4, F77Style8} {
		if strings.EqualFold(s, l.String()) {
			return l, true
		}
	}
	return 0, false
}

// ParamType distinguishes ordinary parameters from switches and scales.
type ParamType int

const (
	ParamDefault ParamType = iota
	ParamSwitch
	ParamScale
	ParamPeriodic
)

func (p ParamType) String() string {
	switch p {
	case ParamSwitch:
		return "Switch"
	case ParamScale:
		return "Scale"
	case ParamPeriodic:
		return "Periodic"
	default:
		return "Default"
	}
}

// ParamInfo is the model.dat description of one parameter.
type ParamInfo struct {
	Name     string
	Type     ParamType
	Default  float64
	Units    string
	Frozen   bool
	SoftMin  float64
	SoftMax  float64
	HardMin  float64
	HardMax  float64
	Delta    float64
	Periodic bool
}

// ModelEntry registers one compiled-in model. Exactly one of C, F77Single
// and F77Double is set, matching Language: CppStyle8 and CStyle8 models are
// reached through C.
type ModelEntry struct {
	Name      string
	FuncName  string
	Type      ModelType
	Language  LanguageStyle
	Params    []ParamInfo
	ELow      float64
	EHigh     float64
	UseErrors bool
	CanCache  bool

	C         CFunc
	F77Single F77SingleFunc
	F77Double F77DoubleFunc
}

// Settings is the library's process-wide state: chatter, tables, cosmology
// and the string/keyword/XFLT databases. Getters never fail; lookups that
// miss return BadValue or NotAKey, or write to the process error stream.
type Settings interface {
	Version() string

	Chatter() int
	SetChatter(level int) error

	Abundance() string
	SetAbundance(table string) error
	CrossSection() string
	SetCrossSection(table string) error

	// ElementAbundance looks an element up by symbol in the current table.
	// Unknown symbols return 0 and write a diagnostic to the process error
	// stream.
	ElementAbundance(name string) float64
	// ElementAbundanceByZ takes a 1-based atomic number. It does no range
	// checking.
	ElementAbundanceByZ(z int) float64
	// ElementName takes a 0-based index. It does no range checking.
	ElementName(index int) string
	NumberElements() int

	Cosmology() (h0, q0, lambda0 float64)
	SetCosmology(h0, q0, lambda0 float64) error

	XFLT(spectrum int) map[string]float64
	SetXFLT(spectrum int, values map[string]float64) error
	XFLTValue(spectrum int, key string) float64
	ClearXFLT() error

	ModelString(key string) string
	SetModelString(key, value string) error
	ModelStrings() map[string]string
	ClearModelStrings() error

	Keyword(key string) float64
	SetKeyword(key string, value float64) error
	ClearKeywords() error
}

// Library is everything the dispatch layer needs from the model library.
type Library interface {
	Settings

	// Init performs one-time setup. Implementations may write to the
	// process standard output while doing so.
	Init() error

	// TableModel evaluates a table-model file. tableType is forwarded
	// verbatim.
	TableModel(path, tableType string, energy []float32, nFlux int, params []float32, spectrum int, flux, fluxErr []float32) error

	// Models lists the models compiled into the library.
	Models() []ModelEntry

	Close() error
}

// Config selects where a backend keeps its state.
type Config struct {
	// StatePath is the settings database used by the reference backend.
	StatePath string
}
