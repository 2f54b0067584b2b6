package native

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// speedOfLight in km/s.
const speedOfLight = 299792.458

func referenceModels() []ModelEntry {
	return []ModelEntry{
		{
			Name: "powerlaw", FuncName: "C_powerLaw", Type: Add, Language: CppStyle8,
			ELow: 0, EHigh: 1e20, CanCache: true,
			Params: []ParamInfo{
				{Name: "PhoIndex", Default: 1, SoftMin: -2, SoftMax: 9, HardMin: -3, HardMax: 10, Delta: 0.01},
			},
			C: powerLaw,
		},
		{
			Name: "zgauss", FuncName: "C_zgauss", Type: Add, Language: CStyle8,
			ELow: 0, EHigh: 1e20, CanCache: true,
			Params: []ParamInfo{
				{Name: "LineE", Units: "keV", Default: 6.5, SoftMin: 0, SoftMax: 1e6, HardMin: 0, HardMax: 1e6, Delta: 0.05},
				{Name: "Sigma", Units: "keV", Default: 0.1, SoftMin: 0, SoftMax: 10, HardMin: 0, HardMax: 20, Delta: 0.05},
				{Name: "Redshift", Default: 0, Frozen: true, SoftMin: -0.999, SoftMax: 10, HardMin: -0.999, HardMax: 10, Delta: -0.01},
			},
			C: zGauss,
		},
		{
			Name: "gaussian", FuncName: "xsgaul_", Type: Add, Language: F77Style8,
			ELow: 0, EHigh: 1e20, CanCache: true,
			Params: []ParamInfo{
				{Name: "LineE", Units: "keV", Default: 6.5, SoftMin: 0, SoftMax: 1e6, HardMin: 0, HardMax: 1e6, Delta: 0.05},
				{Name: "Sigma", Units: "keV", Default: 0.1, SoftMin: 0, SoftMax: 10, HardMin: 0, HardMax: 20, Delta: 0.05},
			},
			F77Double: gaussianF77,
		},
		{
			Name: "constant", FuncName: "xscnst_", Type: Mul, Language: F77Style4,
			ELow: 0, EHigh: 1e20, CanCache: true,
			Params: []ParamInfo{
				{Name: "factor", Default: 1, SoftMin: 0, SoftMax: 1e10, HardMin: 0, HardMax: 1e10, Delta: 0.01},
			},
			F77Single: constantF77,
		},
		{
			Name: "wabs", FuncName: "xsabsw_", Type: Mul, Language: F77Style4,
			ELow: 0, EHigh: 1e20, CanCache: true,
			Params: []ParamInfo{
				{Name: "nH", Units: "10^22", Default: 1, SoftMin: 0, SoftMax: 1e5, HardMin: 0, HardMax: 1e6, Delta: 0.001},
			},
			F77Single: wabsF77,
		},
		{
			Name: "zashift", FuncName: "C_zashift", Type: Con, Language: CStyle8,
			ELow: 0, EHigh: 1e20,
			Params: []ParamInfo{
				{Name: "Redshift", Default: 0, Frozen: true, SoftMin: -0.999, SoftMax: 10, HardMin: -0.999, HardMax: 10, Delta: -0.01},
			},
			C: zaShift,
		},
		{
			Name: "vashift", FuncName: "vashift_", Type: Con, Language: F77Style4,
			ELow: 0, EHigh: 1e20,
			Params: []ParamInfo{
				{Name: "Velocity", Units: "km/s", Default: 0, Frozen: true, SoftMin: -1e4, SoftMax: 1e4, HardMin: -1e4, HardMax: 1e4, Delta: -1},
			},
			F77Single: vaShiftF77,
		},
	}
}

// powerLaw integrates E^-PhoIndex over each bin.
func powerLaw(energy []float64, nFlux int, params []float64, _ int, flux, _ []float64, _ string) error {
	index := params[0]
	alpha := 1 - index
	if math.Abs(alpha) < 1e-10 {
		for i := 0; i < nFlux; i++ {
			flux[i] = math.Log(energy[i+1] / energy[i])
		}
		return nil
	}
	prev := math.Pow(energy[0], alpha) / alpha
	for i := 0; i < nFlux; i++ {
		next := math.Pow(energy[i+1], alpha) / alpha
		flux[i] = next - prev
		prev = next
	}
	return nil
}

func zGauss(energy []float64, nFlux int, params []float64, _ int, flux, _ []float64, _ string) error {
	zf := 1 + params[2]
	if zf <= 0 {
		return fmt.Errorf("%w: redshift %g must exceed -1", ErrModelFailed, params[2])
	}
	gaussLine(energy[:nFlux+1], params[0]/zf, params[1]/zf, flux[:nFlux])
	for i := 0; i < nFlux; i++ {
		flux[i] /= zf
	}
	return nil
}

func gaussianF77(ear []float64, ne int, param []float64, _ int, photar, _ []float64) error {
	gaussLine(ear[:ne+1], param[0], param[1], photar[:ne])
	return nil
}

// gaussLine writes a unit-area Gaussian line integrated over each bin. A
// zero width puts the whole line in the bin containing center.
func gaussLine[T constraints.Float](energy []T, center, sigma float64, flux []T) {
	if sigma <= 0 {
		for i := range flux {
			flux[i] = 0
			if float64(energy[i]) <= center && center < float64(energy[i+1]) {
				flux[i] = 1
			}
		}
		return
	}
	scale := sigma * math.Sqrt2
	prev := math.Erf((float64(energy[0]) - center) / scale)
	for i := range flux {
		next := math.Erf((float64(energy[i+1]) - center) / scale)
		flux[i] = T(0.5 * (next - prev))
		prev = next
	}
}

func constantF77(_ []float32, ne int, param []float32, _ int, photar, _ []float32) error {
	for i := 0; i < ne; i++ {
		photar[i] = param[0]
	}
	return nil
}

// wabsF77 uses a single power-law photoabsorption cross-section,
// sigma(E) = 2e-22 E^-8/3 cm^2 with E in keV and nH in 1e22 cm^-2.
func wabsF77(ear []float32, ne int, param []float32, _ int, photar, _ []float32) error {
	nH := float64(param[0])
	for i := 0; i < ne; i++ {
		if nH == 0 {
			photar[i] = 1
			continue
		}
		mid := 0.5 * float64(ear[i]+ear[i+1])
		if mid <= 0 {
			photar[i] = 0
			continue
		}
		photar[i] = float32(math.Exp(-nH * 2 * math.Pow(mid, -8.0/3.0)))
	}
	return nil
}

func zaShift(energy []float64, nFlux int, params []float64, _ int, flux, _ []float64, _ string) error {
	zf := 1 + params[0]
	if zf <= 0 {
		return fmt.Errorf("%w: redshift %g must exceed -1", ErrModelFailed, params[0])
	}
	shiftRebin(energy[:nFlux+1], flux[:nFlux], 1/zf)
	return nil
}

func vaShiftF77(ear []float32, ne int, param []float32, _ int, photar, _ []float32) error {
	factor := 1 - float64(param[0])/speedOfLight
	if factor <= 0 {
		return fmt.Errorf("%w: velocity %g km/s is not below c", ErrModelFailed, param[0])
	}
	shiftRebin(ear[:ne+1], photar[:ne], factor)
	return nil
}

// shiftRebin moves the spectrum in flux so that a bin [lo, hi] lands on
// [lo*factor, hi*factor], then redistributes it over the original grid in
// proportion to overlap. Flux that lands outside the grid is lost.
func shiftRebin[T constraints.Float](energy, flux []T, factor float64) {
	if factor == 1 {
		return
	}
	src := make([]float64, len(flux))
	for i, v := range flux {
		src[i] = float64(v)
	}
	for j := range flux {
		lo, hi := float64(energy[j]), float64(energy[j+1])
		var sum float64
		for i, v := range src {
			slo, shi := float64(energy[i])*factor, float64(energy[i+1])*factor
			width := shi - slo
			if width <= 0 {
				continue
			}
			if overlap := math.Min(hi, shi) - math.Max(lo, slo); overlap > 0 {
				sum += v * overlap / width
			}
		}
		flux[j] = T(sum)
	}
}
