package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is a set of library settings applied at start-up. Nil and empty
// fields leave the library's value alone.
type Profile struct {
	Chatter      *int                       `yaml:"chatter"`
	Abundance    string                     `yaml:"abundance"`
	CrossSection string                     `yaml:"cross_section"`
	Cosmology    *ProfileCosmology          `yaml:"cosmology"`
	ModelStrings map[string]string          `yaml:"model_strings"`
	Keywords     map[string]float64         `yaml:"keywords"`
	XFLT         map[int]map[string]float64 `yaml:"xflt"`
}

// ProfileCosmology holds the three cosmology parameters. All must be given.
type ProfileCosmology struct {
	H0      float64 `yaml:"h0"`
	Q0      float64 `yaml:"q0"`
	Lambda0 float64 `yaml:"lambda0"`
}

// LoadProfile reads a YAML profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return &p, nil
}

// Validate rejects values the library would silently misuse.
func (p *Profile) Validate() error {
	if p.Chatter != nil && *p.Chatter < 0 {
		return fmt.Errorf("chatter must be non-negative, got %d", *p.Chatter)
	}
	if p.Cosmology != nil && p.Cosmology.H0 <= 0 {
		return fmt.Errorf("cosmology h0 must be positive, got %g", p.Cosmology.H0)
	}
	for spec := range p.XFLT {
		if spec < 1 {
			return fmt.Errorf("xflt spectrum numbers start at 1, got %d", spec)
		}
	}
	return nil
}

// IsEmpty reports whether applying p would change nothing.
func (p *Profile) IsEmpty() bool {
	return p.Chatter == nil && p.Abundance == "" && p.CrossSection == "" && p.Cosmology == nil &&
		len(p.ModelStrings) == 0 && len(p.Keywords) == 0 && len(p.XFLT) == 0
}
