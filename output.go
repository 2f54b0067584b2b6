package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
)

var (
	headerColor = color.New(color.Bold)
	nameColor   = color.New(color.FgCyan)
	okColor     = color.New(color.FgGreen)
	failColor   = color.New(color.FgRed)
)

// emit writes v as JSON under --json and calls text otherwise.
func (a *app) emit(v any, text func(w io.Writer)) error {
	if a.jsonOut {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(a.out)
	return nil
}

// parseFloats reads a comma or space separated list of numbers.
func parseFloats(flag, s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, usagef("--%s: %q is not a number", flag, f)
		}
		out = append(out, v)
	}
	return out, nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

// printBins writes one "elo ehi value" row per bin.
func printBins[T float32 | float64](w io.Writer, energies []float64, values []T) {
	for i, v := range values {
		fmt.Fprintf(w, "%-14g %-14g %g\n", energies[i], energies[i+1], v)
	}
}
