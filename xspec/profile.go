package xspec

import (
	"fmt"
	"maps"
	"slices"

	"xsmodels/core"
)

// ApplyProfile pushes a settings profile into the library. It stops at the
// first setting the library rejects.
func ApplyProfile(s *Session, p *core.Profile) error {
	if p == nil {
		return nil
	}
	if p.Chatter != nil {
		if err := s.SetChatter(*p.Chatter); err != nil {
			return err
		}
	}
	if p.Abundance != "" {
		if err := s.SetAbundance(p.Abundance); err != nil {
			return err
		}
	}
	if p.CrossSection != "" {
		if err := s.SetCrossSection(p.CrossSection); err != nil {
			return err
		}
	}
	if c := p.Cosmology; c != nil {
		if err := s.SetCosmology(Cosmology{H0: c.H0, Q0: c.Q0, Lambda0: c.Lambda0}); err != nil {
			return err
		}
	}
	for _, k := range slices.Sorted(maps.Keys(p.ModelStrings)) {
		if err := s.SetModelString(k, p.ModelStrings[k]); err != nil {
			return fmt.Errorf("model string %s: %w", k, err)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(p.Keywords)) {
		if err := s.SetKeyword(k, p.Keywords[k]); err != nil {
			return fmt.Errorf("keyword %s: %w", k, err)
		}
	}
	for _, spec := range slices.Sorted(maps.Keys(p.XFLT)) {
		if err := s.SetXFLT(spec, p.XFLT[spec]); err != nil {
			return fmt.Errorf("xflt spectrum %d: %w", spec, err)
		}
	}
	return nil
}
