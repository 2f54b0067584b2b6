package api

import (
	"io"

	"github.com/goccy/go-json"

	"xsmodels/metrics"
	"xsmodels/native"
	"xsmodels/xspec"
)

type ParamDTO struct {
	Name    string  `json:"name"`
	Units   string  `json:"units,omitempty"`
	Type    string  `json:"type"`
	Default float64 `json:"default"`
	SoftMin float64 `json:"soft_min"`
	SoftMax float64 `json:"soft_max"`
	HardMin float64 `json:"hard_min"`
	HardMax float64 `json:"hard_max"`
	Delta   float64 `json:"delta"`
	Frozen  bool    `json:"frozen"`
}

type ModelDTO struct {
	Name       string     `json:"name"`
	Function   string     `json:"function"`
	Type       string     `json:"type"`
	Language   string     `json:"language"`
	Convention string     `json:"convention"`
	ELow       float64    `json:"elow"`
	EHigh      float64    `json:"ehigh"`
	UseErrors  bool       `json:"use_errors"`
	CanCache   bool       `json:"can_cache"`
	Params     []ParamDTO `json:"params"`
}

// NewModelDTO flattens a catalog entry for JSON.
func NewModelDTO(m xspec.ModelInfo) ModelDTO {
	out := ModelDTO{
		Name:       m.Name,
		Function:   m.FuncName,
		Type:       m.Type.String(),
		Language:   m.Language.String(),
		Convention: m.Convention().String(),
		ELow:       m.ELow,
		EHigh:      m.EHigh,
		UseErrors:  m.UseErrors,
		CanCache:   m.CanCache,
		Params:     make([]ParamDTO, 0, len(m.Params)),
	}
	for _, p := range m.Params {
		out.Params = append(out.Params, paramDTO(p))
	}
	return out
}

func paramDTO(p native.ParamInfo) ParamDTO {
	return ParamDTO{
		Name:    p.Name,
		Units:   p.Units,
		Type:    p.Type.String(),
		Default: p.Default,
		SoftMin: p.SoftMin,
		SoftMax: p.SoftMax,
		HardMin: p.HardMin,
		HardMax: p.HardMax,
		Delta:   p.Delta,
		Frozen:  p.Frozen,
	}
}

// EvalRequest is the body of POST /v1/models/:name/eval.
type EvalRequest struct {
	Pars       []float64 `json:"pars"`
	Energies   []float64 `json:"energies"`
	Model      []float64 `json:"model,omitempty"`
	Spectrum   *int      `json:"spectrum,omitempty"`
	InitString string    `json:"init_string,omitempty"`
}

// TableEvalRequest is the body of POST /v1/tables/eval.
type TableEvalRequest struct {
	Path     string    `json:"path"`
	Type     string    `json:"type"`
	Pars     []float32 `json:"pars"`
	Energies []float32 `json:"energies"`
	Spectrum *int      `json:"spectrum,omitempty"`
}

type EvalResponse[T float32 | float64] struct {
	Model     string `json:"model"`
	Values    []T    `json:"values"`
	RequestID string `json:"request_id"`
}

// SettingsDTO is the library state returned by GET /v1/settings. The same
// shape, with every field optional, is accepted by PUT.
type SettingsDTO struct {
	Version      string                     `json:"version,omitempty"`
	Chatter      *int                       `json:"chatter,omitempty"`
	Abundance    string                     `json:"abundance,omitempty"`
	CrossSection string                     `json:"cross_section,omitempty"`
	Cosmology    *xspec.Cosmology           `json:"cosmology,omitempty"`
	ModelStrings map[string]string          `json:"model_strings,omitempty"`
	Keywords     map[string]float64         `json:"keywords,omitempty"`
	XFLT         map[int]map[string]float64 `json:"xflt,omitempty"`
}

type ElementDTO struct {
	Z         int     `json:"z"`
	Name      string  `json:"name"`
	Abundance float64 `json:"abundance"`
}

type MetricsDTO struct {
	Status metrics.SystemStatus `json:"status"`
	Calls  metrics.CallMetrics  `json:"calls"`
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
