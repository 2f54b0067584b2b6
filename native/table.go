package native

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// TableFile is the reference backend's table-model format: a set of spectra
// tabulated on one energy grid against a single interpolation parameter.
//
//	name: bbody-grid
//	parameter:
//	  name: kT
//	  values: [0.5, 1.0, 2.0]
//	energies: [0.1, 0.5, 1.0, 2.0]
//	spectra:
//	  - [1.0, 2.0, 0.5]
//	  - [2.0, 3.0, 1.0]
//	  - [4.0, 5.0, 2.0]
//
// Additive tables take the parameter and a normalisation; multiplicative
// and exponential tables take the parameter only.
type TableFile struct {
	Name      string      `yaml:"name"`
	Parameter TableParam  `yaml:"parameter"`
	Energies  []float64   `yaml:"energies"`
	Spectra   [][]float64 `yaml:"spectra"`
}

// TableParam is the interpolation parameter of a TableFile.
type TableParam struct {
	Name   string    `yaml:"name"`
	Values []float64 `yaml:"values"`
}

// ReadTableFile parses and validates a table file.
func ReadTableFile(path string) (*TableFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTableModel, err)
	}
	var t TableFile
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrTableModel, path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the grid, the parameter values and the spectra agree.
func (t *TableFile) Validate() error {
	if len(t.Parameter.Values) == 0 {
		return fmt.Errorf("%w: no parameter values", ErrTableModel)
	}
	if !increasing(t.Parameter.Values) {
		return fmt.Errorf("%w: parameter values must be strictly increasing", ErrTableModel)
	}
	if len(t.Energies) < 2 {
		return fmt.Errorf("%w: need at least 2 energy edges, have %d", ErrTableModel, len(t.Energies))
	}
	if !increasing(t.Energies) {
		return fmt.Errorf("%w: energies must be strictly increasing", ErrTableModel)
	}
	if len(t.Spectra) != len(t.Parameter.Values) {
		return fmt.Errorf("%w: %d spectra for %d parameter values", ErrTableModel, len(t.Spectra), len(t.Parameter.Values))
	}
	for i, row := range t.Spectra {
		if len(row) != len(t.Energies)-1 {
			return fmt.Errorf("%w: spectrum %d has %d bins, want %d", ErrTableModel, i, len(row), len(t.Energies)-1)
		}
	}
	return nil
}

// NumParams returns the parameter count for tableType.
func NumParams(tableType string) (int, error) {
	switch strings.ToLower(tableType) {
	case "add":
		return 2, nil
	case "mul", "exp":
		return 1, nil
	}
	return 0, fmt.Errorf("%w: unknown table type %q", ErrTableModel, tableType)
}

// Evaluate writes the table's model for params onto the grid energy into
// flux. len(energy) must be len(flux)+1.
func (t *TableFile) Evaluate(tableType string, energy, params, flux []float32) error {
	want, err := NumParams(tableType)
	if err != nil {
		return err
	}
	if len(params) != want {
		return fmt.Errorf("%w: %s table expects %d parameters, got %d", ErrTableModel, tableType, want, len(params))
	}

	spectrum := t.interpolate(float64(params[0]))
	kind := strings.ToLower(tableType)
	for j := range flux {
		lo, hi := float64(energy[j]), float64(energy[j+1])
		var sum, covered float64
		for i, v := range spectrum {
			elo, ehi := t.Energies[i], t.Energies[i+1]
			overlap := math.Min(hi, ehi) - math.Max(lo, elo)
			if overlap <= 0 {
				continue
			}
			if kind == "add" {
				sum += v * overlap / (ehi - elo)
			} else {
				sum += v * overlap
				covered += overlap
			}
		}
		switch kind {
		case "add":
			flux[j] = float32(sum * float64(params[1]))
		case "mul":
			if covered == 0 {
				flux[j] = 1
			} else {
				flux[j] = float32(sum / covered)
			}
		case "exp":
			if covered == 0 {
				flux[j] = 1
			} else {
				flux[j] = float32(math.Exp(-sum / covered))
			}
		}
	}
	return nil
}

// interpolate returns the spectrum at p, linear between tabulated values
// and clamped at the ends.
func (t *TableFile) interpolate(p float64) []float64 {
	vals := t.Parameter.Values
	if p <= vals[0] {
		return t.Spectra[0]
	}
	last := len(vals) - 1
	if p >= vals[last] {
		return t.Spectra[last]
	}
	k := 1
	for vals[k] < p {
		k++
	}
	w := (p - vals[k-1]) / (vals[k] - vals[k-1])
	out := make([]float64, len(t.Spectra[k]))
	for i := range out {
		out[i] = (1-w)*t.Spectra[k-1][i] + w*t.Spectra[k][i]
	}
	return out
}

func increasing(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if !(v[i] > v[i-1]) {
			return false
		}
	}
	return true
}

// tableCache keeps parsed files until they change on disk.
type tableCache struct {
	mu      sync.Mutex
	entries map[string]cachedTable
}

type cachedTable struct {
	modTime time.Time
	table   *TableFile
}

func newTableCache() *tableCache {
	return &tableCache{entries: make(map[string]cachedTable)}
}

func (c *tableCache) get(path string) (*TableFile, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", ErrTableModel, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTableModel, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[path]; ok && e.modTime.Equal(info.ModTime()) {
		return e.table, nil
	}
	t, err := ReadTableFile(path)
	if err != nil {
		return nil, err
	}
	c.entries[path] = cachedTable{modTime: info.ModTime(), table: t}
	return t, nil
}
