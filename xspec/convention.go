package xspec

import "xsmodels/native"

// Convention is the native calling convention behind a model.
type Convention int

const (
	// ConventionC is the C-style double precision signature with an
	// initialisation string.
	ConventionC Convention = iota
	// ConventionF77Single is the legacy single precision signature.
	ConventionF77Single
	// ConventionF77Double is the legacy double precision signature.
	ConventionF77Double
	// ConventionTable is the single precision table-file signature.
	ConventionTable
)

func (c Convention) String() string {
	switch c {
	case ConventionC:
		return "C"
	case ConventionF77Single:
		return "F77Single"
	case ConventionF77Double:
		return "F77Double"
	case ConventionTable:
		return "Table"
	default:
		return "Unknown"
	}
}

// AcceptsInitString reports whether the convention forwards an
// initialisation string.
func (c Convention) AcceptsInitString() bool {
	return c == ConventionC
}

// conventionFor maps a model's language style to the signature it is
// reached through. C++ models are called through their C wrappers.
func conventionFor(l native.LanguageStyle) Convention {
	switch l {
	case native.F77Style4:
		return ConventionF77Single
	case native.F77Style8:
		return ConventionF77Double
	default:
		return ConventionC
	}
}
