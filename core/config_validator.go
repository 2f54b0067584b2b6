package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ValidationResult is the outcome of one configuration check.
type ValidationResult struct {
	Name    string
	Valid   bool
	Message string
	Error   error
}

// ConfigValidator runs the checks behind the `check` command.
type ConfigValidator struct {
	cfg *Config
}

// NewConfigValidator returns a validator for cfg.
func NewConfigValidator(cfg *Config) *ConfigValidator {
	return &ConfigValidator{cfg: cfg}
}

// CheckHeadas verifies that HEADAS names an existing directory. The model
// library refuses to initialize without it.
func (v *ConfigValidator) CheckHeadas() ValidationResult {
	res := ValidationResult{Name: EnvHeadas}
	if v.cfg.Headas == "" {
		res.Message = "HEADAS not set"
		res.Error = ErrHeadasMissing("")
		return res
	}
	info, err := os.Stat(v.cfg.Headas)
	if err != nil || !info.IsDir() {
		res.Message = "HEADAS directory missing"
		res.Error = ErrHeadasMissing(v.cfg.Headas)
		return res
	}
	res.Valid = true
	res.Message = fmt.Sprintf("HEADAS is %s", v.cfg.Headas)
	return res
}

// CheckStateDir verifies that the directory holding the state database
// exists, or can be created, and is writable.
func (v *ConfigValidator) CheckStateDir() ValidationResult {
	res := ValidationResult{Name: EnvStateDB}
	dir := filepath.Dir(v.cfg.StateDB)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		res.Message = "state directory cannot be created"
		res.Error = ErrStateDir(dir, err)
		return res
	}
	tmp, err := os.CreateTemp(dir, ".xsmodels-write-*")
	if err != nil {
		res.Message = "state directory is not writable"
		res.Error = ErrStateDir(dir, err)
		return res
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)

	res.Valid = true
	res.Message = fmt.Sprintf("state database at %s", v.cfg.StateDB)
	return res
}

// CheckProfile loads the configured profile, if any.
func (v *ConfigValidator) CheckProfile() ValidationResult {
	res := ValidationResult{Name: EnvProfile}
	p, err := v.cfg.LoadProfile()
	switch {
	case err != nil:
		res.Message = "profile does not load"
		res.Error = err
	case p == nil:
		res.Valid = true
		res.Message = "no profile configured"
	default:
		res.Valid = true
		res.Message = fmt.Sprintf("profile %s loads", v.cfg.ProfilePath)
	}
	return res
}

// ValidateAll runs every check.
func (v *ConfigValidator) ValidateAll() []ValidationResult {
	return []ValidationResult{
		v.CheckHeadas(),
		v.CheckStateDir(),
		v.CheckProfile(),
	}
}

// ValidateRequired joins the errors of all failed checks.
func (v *ConfigValidator) ValidateRequired() error {
	var errs []error
	for _, r := range v.ValidateAll() {
		if !r.Valid {
			errs = append(errs, r.Error)
		}
	}
	return errors.Join(errs...)
}
