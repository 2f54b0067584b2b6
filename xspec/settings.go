package xspec

import (
	"errors"
	"fmt"
	"strings"

	"xsmodels/native"
)

// Version returns the library version string.
func (s *Session) Version() (string, error) {
	var v string
	err := s.do(func(lib native.Library) error {
		v = lib.Version()
		return nil
	})
	return v, err
}

// Chatter returns the library's verbosity level.
func (s *Session) Chatter() (int, error) {
	var n int
	err := s.do(func(lib native.Library) error {
		n = lib.Chatter()
		return nil
	})
	return n, err
}

// SetChatter sets the library's verbosity level.
func (s *Session) SetChatter(level int) error {
	return s.do(func(lib native.Library) error {
		return nativeError("set chatter", lib.SetChatter(level))
	})
}

// Abundance returns the name of the current solar abundance table.
func (s *Session) Abundance() (string, error) {
	var v string
	err := s.do(func(lib native.Library) error {
		v = lib.Abundance()
		return nil
	})
	return v, err
}

// SetAbundance selects a solar abundance table by name.
func (s *Session) SetAbundance(table string) error {
	return s.do(func(lib native.Library) error {
		return tableError("abundance table", table, lib.SetAbundance(table))
	})
}

// CrossSection returns the name of the current photoelectric cross-section
// table.
func (s *Session) CrossSection() (string, error) {
	var v string
	err := s.do(func(lib native.Library) error {
		v = lib.CrossSection()
		return nil
	})
	return v, err
}

// SetCrossSection selects a photoelectric cross-section table by name.
func (s *Session) SetCrossSection(table string) error {
	return s.do(func(lib native.Library) error {
		return tableError("cross-section table", table, lib.SetCrossSection(table))
	})
}

func tableError(kind, name string, err error) error {
	if errors.Is(err, native.ErrUnknownTable) {
		return &KeyNotFoundError{Kind: kind, Key: name}
	}
	return nativeError("set "+kind, err)
}

// ElementAbundance returns the abundance of the element with the given
// symbol relative to hydrogen. The library reports an unknown symbol only
// by writing to standard error, so the stream is captured for the duration
// of the call and any output is treated as a miss.
func (s *Session) ElementAbundance(name string) (float64, error) {
	var v float64
	err := s.do(func(lib native.Library) error {
		out, err := native.CaptureStderr(func() error {
			v = lib.ElementAbundance(name)
			return nil
		})
		if err != nil {
			return nativeError("element abundance", err)
		}
		if strings.TrimSpace(out) != "" {
			s.logger.Debug("element lookup rejected by library")
			return &KeyNotFoundError{Kind: "element", Key: name}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return v, nil
}

// ElementAbundanceByZ returns the abundance of atomic number z, which must
// lie in [1, NumberElements].
func (s *Session) ElementAbundanceByZ(z int) (float64, error) {
	var v float64
	err := s.do(func(lib native.Library) error {
		if err := checkZ(lib, z); err != nil {
			return err
		}
		v = lib.ElementAbundanceByZ(z)
		return nil
	})
	return v, err
}

// ElementName returns the symbol of atomic number z, which must lie in
// [1, NumberElements].
func (s *Session) ElementName(z int) (string, error) {
	var v string
	err := s.do(func(lib native.Library) error {
		if err := checkZ(lib, z); err != nil {
			return err
		}
		v = lib.ElementName(z - 1)
		return nil
	})
	return v, err
}

func checkZ(lib native.Library, z int) error {
	if n := lib.NumberElements(); z < 1 || z > n {
		return &IndexOutOfRangeError{Kind: "atomic number", Index: z, Min: 1, Max: n}
	}
	return nil
}

// NumberElements returns how many elements the abundance tables cover.
func (s *Session) NumberElements() (int, error) {
	var n int
	err := s.do(func(lib native.Library) error {
		n = lib.NumberElements()
		return nil
	})
	return n, err
}

// Cosmology holds the parameters used by redshift-dependent models.
type Cosmology struct {
	H0      float64 `json:"h0" yaml:"h0"`
	Q0      float64 `json:"q0" yaml:"q0"`
	Lambda0 float64 `json:"lambda0" yaml:"lambda0"`
}

// Cosmology returns the current cosmology.
func (s *Session) Cosmology() (Cosmology, error) {
	var c Cosmology
	err := s.do(func(lib native.Library) error {
		c.H0, c.Q0, c.Lambda0 = lib.Cosmology()
		return nil
	})
	return c, err
}

// SetCosmology replaces all three cosmology parameters.
func (s *Session) SetCosmology(c Cosmology) error {
	return s.do(func(lib native.Library) error {
		return nativeError("set cosmology", lib.SetCosmology(c.H0, c.Q0, c.Lambda0))
	})
}

// XFLT returns the XFLT keywords stored for a spectrum.
func (s *Session) XFLT(spectrum int) (map[string]float64, error) {
	var m map[string]float64
	err := s.do(func(lib native.Library) error {
		m = lib.XFLT(spectrum)
		return nil
	})
	return m, err
}

// SetXFLT replaces the XFLT keywords stored for a spectrum.
func (s *Session) SetXFLT(spectrum int, values map[string]float64) error {
	return s.do(func(lib native.Library) error {
		return nativeError("set xflt", lib.SetXFLT(spectrum, values))
	})
}

// XFLTValue returns one XFLT keyword for a spectrum.
func (s *Session) XFLTValue(spectrum int, key string) (float64, error) {
	var v float64
	err := s.do(func(lib native.Library) error {
		v = lib.XFLTValue(spectrum, key)
		if v == native.BadValue {
			return &KeyNotFoundError{Kind: "XFLT keyword", Key: fmt.Sprintf("%s (spectrum %d)", key, spectrum)}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return v, nil
}

// XFLTValueAt returns the i'th positional XFLT keyword, stored as XFLT0001,
// XFLT0002 and so on.
func (s *Session) XFLTValueAt(spectrum, i int) (float64, error) {
	return s.XFLTValue(spectrum, fmt.Sprintf("XFLT%04d", i))
}

// InXFLT reports whether key is set for a spectrum.
func (s *Session) InXFLT(spectrum int, key string) (bool, error) {
	_, err := s.XFLTValue(spectrum, key)
	if errors.Is(err, ErrLookup) {
		return false, nil
	}
	return err == nil, err
}

// NumberXFLT returns how many XFLT keywords a spectrum has.
func (s *Session) NumberXFLT(spectrum int) (int, error) {
	m, err := s.XFLT(spectrum)
	return len(m), err
}

// ClearXFLT removes every XFLT keyword for every spectrum.
func (s *Session) ClearXFLT() error {
	return s.do(func(lib native.Library) error {
		return nativeError("clear xflt", lib.ClearXFLT())
	})
}

// ModelString returns a value from the model string database.
func (s *Session) ModelString(key string) (string, error) {
	var v string
	err := s.do(func(lib native.Library) error {
		v = lib.ModelString(key)
		if v == native.NotAKey {
			return &KeyNotFoundError{Kind: "model string", Key: key}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return v, nil
}

// SetModelString stores a value in the model string database.
func (s *Session) SetModelString(key, value string) error {
	return s.do(func(lib native.Library) error {
		return nativeError("set model string", lib.SetModelString(key, value))
	})
}

// ModelStrings returns the whole model string database.
func (s *Session) ModelStrings() (map[string]string, error) {
	var m map[string]string
	err := s.do(func(lib native.Library) error {
		m = lib.ModelStrings()
		return nil
	})
	return m, err
}

// ClearModelStrings empties the model string database.
func (s *Session) ClearModelStrings() error {
	return s.do(func(lib native.Library) error {
		return nativeError("clear model strings", lib.ClearModelStrings())
	})
}

// Keyword returns a value from the keyword database.
func (s *Session) Keyword(key string) (float64, error) {
	var v float64
	err := s.do(func(lib native.Library) error {
		v = lib.Keyword(key)
		if v == native.BadValue {
			return &KeyNotFoundError{Kind: "keyword", Key: key}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return v, nil
}

// SetKeyword stores a value in the keyword database.
func (s *Session) SetKeyword(key string, value float64) error {
	return s.do(func(lib native.Library) error {
		return nativeError("set keyword", lib.SetKeyword(key, value))
	})
}

// ClearKeywords empties the keyword database.
func (s *Session) ClearKeywords() error {
	return s.do(func(lib native.Library) error {
		return nativeError("clear keywords", lib.ClearKeywords())
	})
}
