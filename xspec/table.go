package xspec

import (
	"fmt"
	"strings"
)

// TableType is how a table model combines with the rest of a model
// expression.
type TableType string

const (
	TableAdd TableType = "add"
	TableMul TableType = "mul"
	TableExp TableType = "exp"
)

// ParseTableType accepts add, mul and exp in any case.
func ParseTableType(s string) (TableType, error) {
	switch t := TableType(strings.ToLower(s)); t {
	case TableAdd, TableMul, TableExp:
		return t, nil
	}
	return "", fmt.Errorf("%w: table type %q is not add, mul or exp", ErrInvalidShape, s)
}

// TableModel evaluates the table-model file at path. The parameter count is
// defined by the file, so it is left for the library to check.
func (s *Session) TableModel(path string, typ TableType, pars, grid Buffer[float32], opts ...Option) ([]float32, error) {
	return evaluate(s, s.tableBinding(path, typ), pars, grid, nil, "", opts)
}

// TableModelInto evaluates a table model into out.
func (s *Session) TableModelInto(path string, typ TableType, pars, grid, out Buffer[float32], opts ...Option) ([]float32, error) {
	return evaluate(s, s.tableBinding(path, typ), pars, grid, &out, "out", opts)
}

// tableBinding adapts the library's table entry point. evaluate invokes it
// with the session lock held.
func (s *Session) tableBinding(path string, typ TableType) binding[float32] {
	return binding[float32]{
		name:       path,
		convention: ConventionTable,
		nPars:      -1,
		call: func(grid []float32, nFlux int, pars []float32, spectrum int, flux, fluxErr []float32, _ string) error {
			return s.lib.TableModel(path, string(typ), grid, nFlux, pars, spectrum, flux, fluxErr)
		},
	}
}
