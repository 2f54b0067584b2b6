//go:build xspec && cgo

// Binding to the HEASoft XSPEC model library.
//
// Prerequisites:
//  1. HEASoft built with the XSPEC model library
//  2. CGO_CXXFLAGS including -I${HEADAS}/include
//  3. CGO_LDFLAGS including -L${HEADAS}/lib
//
// Example:
//
//	CGO_CXXFLAGS="-I${HEADAS}/include" \
//	CGO_LDFLAGS="-L${HEADAS}/lib -Wl,-rpath,${HEADAS}/lib" \
//	go build -tags xspec

package native

/*
#cgo CXXFLAGS: -std=c++17
#cgo LDFLAGS: -lXSFunctions -lXSUtil -lXS -lhdsp -lstdc++

#include <stdlib.h>
#include "xspec_shim.h"

// Model entry points. C_ functions follow the C-style double convention;
// trailing-underscore symbols are Fortran routines.
extern void C_powerLaw(const double* energy, int nFlux, const double* params, int spectrumNumber, double* flux, double* fluxError, const char* initStr);
extern void C_gaussianLine(const double* energy, int nFlux, const double* params, int spectrumNumber, double* flux, double* fluxError, const char* initStr);
extern void C_zashift(const double* energy, int nFlux, const double* params, int spectrumNumber, double* flux, double* fluxError, const char* initStr);
extern void xsabsw_(float* ear, int* ne, float* param, int* ifl, float* photar, float* photer);
extern void xscnst_(float* ear, int* ne, float* param, int* ifl, float* photar, float* photer);
*/
import "C"

import (
	"unsafe"
)

// Backend names the library compiled into this binary.
const Backend = "xspec"

const cbufLen = 4096

func init() {
	flushNative = func() { C.xsm_flush() }
}

// XSPEC is the Library backed by the HEASoft model library. All of its
// state lives in the library itself, so there is only one per process.
type XSPEC struct{}

// Open returns the XSPEC library. cfg is unused: the library keeps its own
// state.
func Open(cfg Config) (Library, error) {
	return &XSPEC{}, nil
}

func cstring(call func(buf *C.char, n C.int) C.int) string {
	buf := make([]byte, cbufLen)
	n := int(call((*C.char)(unsafe.Pointer(&buf[0])), C.int(len(buf))))
	if n >= len(buf) {
		buf = make([]byte, n+1)
		call((*C.char)(unsafe.Pointer(&buf[0])), C.int(len(buf)))
	}
	return C.GoString((*C.char)(unsafe.Pointer(&buf[0])))
}

func (x *XSPEC) Init() error {
	errbuf := make([]byte, cbufLen)
	if rc := C.xsm_init((*C.char)(unsafe.Pointer(&errbuf[0])), C.int(len(errbuf))); rc != 0 {
		return &NativeError{Op: "init", Code: int(rc), Message: C.GoString((*C.char)(unsafe.Pointer(&errbuf[0])))}
	}
	return nil
}

func (x *XSPEC) Close() error { return nil }

func (x *XSPEC) Version() string {
	return cstring(func(b *C.char, n C.int) C.int { return C.xsm_version(b, n) })
}

func (x *XSPEC) Chatter() int { return int(C.xsm_get_chatter()) }

func (x *XSPEC) SetChatter(level int) error {
	C.xsm_set_chatter(C.int(level))
	return nil
}

func (x *XSPEC) Abundance() string {
	return cstring(func(b *C.char, n C.int) C.int { return C.xsm_get_abund(b, n) })
}

func (x *XSPEC) SetAbundance(table string) error {
	ct := C.CString(table)
	defer C.free(unsafe.Pointer(ct))
	if ierr := C.xsm_set_abund(ct); ierr != 0 {
		return &NativeError{Op: "abund", Code: int(ierr), Message: "invalid abundance table " + table, Err: ErrUnknownTable}
	}
	return nil
}

func (x *XSPEC) CrossSection() string {
	return cstring(func(b *C.char, n C.int) C.int { return C.xsm_get_xsect(b, n) })
}

func (x *XSPEC) SetCrossSection(table string) error {
	ct := C.CString(table)
	defer C.free(unsafe.Pointer(ct))
	if ierr := C.xsm_set_xsect(ct); ierr != 0 {
		return &NativeError{Op: "xsect", Code: int(ierr), Message: "invalid cross-section table " + table, Err: ErrUnknownTable}
	}
	return nil
}

func (x *XSPEC) ElementAbundance(name string) float64 {
	cn := C.CString(name)
	defer C.free(unsafe.Pointer(cn))
	return float64(C.xsm_abundance_name(cn))
}

func (x *XSPEC) ElementAbundanceByZ(z int) float64 {
	return float64(C.xsm_abundance_z(C.int(z)))
}

func (x *XSPEC) ElementName(index int) string {
	return cstring(func(b *C.char, n C.int) C.int { return C.xsm_element_name(C.int(index), b, n) })
}

func (x *XSPEC) NumberElements() int { return int(C.xsm_number_elements()) }

func (x *XSPEC) Cosmology() (float64, float64, float64) {
	return float64(C.xsm_get_h0()), float64(C.xsm_get_q0()), float64(C.xsm_get_lambda0())
}

func (x *XSPEC) SetCosmology(h0, q0, lambda0 float64) error {
	C.xsm_set_cosmology(C.float(h0), C.float(q0), C.float(lambda0))
	return nil
}

func (x *XSPEC) XFLT(spectrum int) map[string]float64 {
	n := int(C.xsm_xflt_count(C.int(spectrum)))
	out := make(map[string]float64, n)
	for i := 0; i < n; i++ {
		var v C.double
		key := cstring(func(b *C.char, l C.int) C.int { return C.xsm_xflt_entry(C.int(spectrum), C.int(i), b, l, &v) })
		out[key] = float64(v)
	}
	return out
}

func (x *XSPEC) SetXFLT(spectrum int, values map[string]float64) error {
	if len(values) == 0 {
		C.xsm_xflt_set(C.int(spectrum), 0, nil, nil)
		return nil
	}
	keys := C.malloc(C.size_t(len(values)) * C.size_t(unsafe.Sizeof(uintptr(0))))
	defer C.free(keys)
	ckeys := unsafe.Slice((**C.char)(keys), len(values))
	vals := make([]C.double, 0, len(values))
	i := 0
	for k, v := range values {
		ckeys[i] = C.CString(k)
		vals = append(vals, C.double(v))
		i++
	}
	defer func() {
		for _, p := range ckeys {
			C.free(unsafe.Pointer(p))
		}
	}()
	C.xsm_xflt_set(C.int(spectrum), C.int(len(values)), (**C.char)(keys), &vals[0])
	return nil
}

func (x *XSPEC) XFLTValue(spectrum int, key string) float64 {
	ck := C.CString(key)
	defer C.free(unsafe.Pointer(ck))
	return float64(C.xsm_xflt_value(C.int(spectrum), ck))
}

func (x *XSPEC) ClearXFLT() error {
	C.xsm_xflt_clear()
	return nil
}

func (x *XSPEC) ModelString(key string) string {
	ck := C.CString(key)
	defer C.free(unsafe.Pointer(ck))
	return cstring(func(b *C.char, n C.int) C.int { return C.xsm_mstr_get(ck, b, n) })
}

func (x *XSPEC) SetModelString(key, value string) error {
	ck, cv := C.CString(key), C.CString(value)
	defer C.free(unsafe.Pointer(ck))
	defer C.free(unsafe.Pointer(cv))
	C.xsm_mstr_set(ck, cv)
	return nil
}

func (x *XSPEC) ModelStrings() map[string]string {
	n := int(C.xsm_mstr_count())
	out := make(map[string]string, n)
	for i := 0; i < n; i++ {
		vbuf := make([]byte, cbufLen)
		key := cstring(func(b *C.char, l C.int) C.int {
			return C.xsm_mstr_entry(C.int(i), b, l, (*C.char)(unsafe.Pointer(&vbuf[0])), C.int(len(vbuf)))
		})
		out[key] = C.GoString((*C.char)(unsafe.Pointer(&vbuf[0])))
	}
	return out
}

func (x *XSPEC) ClearModelStrings() error {
	C.xsm_mstr_clear()
	return nil
}

func (x *XSPEC) Keyword(key string) float64 {
	ck := C.CString(key)
	defer C.free(unsafe.Pointer(ck))
	return float64(C.xsm_db_get(ck))
}

func (x *XSPEC) SetKeyword(key string, value float64) error {
	ck := C.CString(key)
	defer C.free(unsafe.Pointer(ck))
	C.xsm_db_set(ck, C.double(value))
	return nil
}

func (x *XSPEC) ClearKeywords() error {
	C.xsm_db_clear()
	return nil
}

func (x *XSPEC) TableModel(path, tableType string, energy []float32, nFlux int, params []float32, spectrum int, flux, fluxErr []float32) error {
	cpath, ctype := C.CString(path), C.CString(tableType)
	defer C.free(unsafe.Pointer(cpath))
	defer C.free(unsafe.Pointer(ctype))

	var pp *C.float
	if len(params) > 0 {
		pp = (*C.float)(unsafe.Pointer(&params[0]))
	}
	errbuf := make([]byte, cbufLen)
	rc := C.xsm_tabint(
		(*C.float)(unsafe.Pointer(&energy[0])), C.int(nFlux),
		pp, C.int(len(params)), cpath, C.int(spectrum), ctype,
		(*C.float)(unsafe.Pointer(&flux[0])), (*C.float)(unsafe.Pointer(&fluxErr[0])),
		(*C.char)(unsafe.Pointer(&errbuf[0])), C.int(len(errbuf)))
	if rc != 0 {
		return &NativeError{Op: "tabint", Code: int(rc), Message: C.GoString((*C.char)(unsafe.Pointer(&errbuf[0]))), Err: ErrTableModel}
	}
	return nil
}

// cModel adapts a C-style entry point. The shim turns a C++ exception into
// a non-zero status; none of the slices contain Go pointers.
func cModel(name string, fn C.xsm_c_model) CFunc {
	return func(energy []float64, nFlux int, params []float64, spectrum int, flux, fluxErr []float64, initStr string) error {
		cinit := C.CString(initStr)
		defer C.free(unsafe.Pointer(cinit))
		var pp *C.double
		if len(params) > 0 {
			pp = (*C.double)(unsafe.Pointer(&params[0]))
		}
		errbuf := make([]byte, cbufLen)
		rc := C.xsm_call_c(fn, (*C.double)(unsafe.Pointer(&energy[0])), C.int(nFlux), pp, C.int(spectrum),
			(*C.double)(unsafe.Pointer(&flux[0])), (*C.double)(unsafe.Pointer(&fluxErr[0])), cinit,
			(*C.char)(unsafe.Pointer(&errbuf[0])), C.int(len(errbuf)))
		return modelStatus(name, int(rc), C.GoString((*C.char)(unsafe.Pointer(&errbuf[0]))))
	}
}

func f77Model(name string, fn C.xsm_f77_model) F77SingleFunc {
	return func(ear []float32, ne int, param []float32, ifl int, photar, photer []float32) error {
		var pp *C.float
		if len(param) > 0 {
			pp = (*C.float)(unsafe.Pointer(&param[0]))
		}
		errbuf := make([]byte, cbufLen)
		rc := C.xsm_call_f77(fn, (*C.float)(unsafe.Pointer(&ear[0])), C.int(ne), pp, C.int(ifl),
			(*C.float)(unsafe.Pointer(&photar[0])), (*C.float)(unsafe.Pointer(&photer[0])),
			(*C.char)(unsafe.Pointer(&errbuf[0])), C.int(len(errbuf)))
		return modelStatus(name, int(rc), C.GoString((*C.char)(unsafe.Pointer(&errbuf[0]))))
	}
}

// Models lists the entry points this binding was built with.
func (x *XSPEC) Models() []ModelEntry {
	return []ModelEntry{
		{
			Name: "powerlaw", FuncName: "C_powerLaw", Type: Add, Language: CppStyle8,
			ELow: 0, EHigh: 1e20, CanCache: true,
			Params: []ParamInfo{{Name: "PhoIndex", Default: 1, SoftMin: -2, SoftMax: 9, HardMin: -3, HardMax: 10, Delta: 0.01}},
			C:      cModel("C_powerLaw", C.xsm_c_model(C.C_powerLaw)),
		},
		{
			Name: "gaussian", FuncName: "C_gaussianLine", Type: Add, Language: CppStyle8,
			ELow: 0, EHigh: 1e20, CanCache: true,
			Params: []ParamInfo{
				{Name: "LineE", Units: "keV", Default: 6.5, SoftMin: 0, SoftMax: 1e6, HardMin: 0, HardMax: 1e6, Delta: 0.05},
				{Name: "Sigma", Units: "keV", Default: 0.1, SoftMin: 0, SoftMax: 10, HardMin: 0, HardMax: 20, Delta: 0.05},
			},
			C: cModel("C_gaussianLine", C.xsm_c_model(C.C_gaussianLine)),
		},
		{
			Name: "constant", FuncName: "xscnst_", Type: Mul, Language: F77Style4,
			ELow: 0, EHigh: 1e20, CanCache: true,
			Params:    []ParamInfo{{Name: "factor", Default: 1, SoftMin: 0, SoftMax: 1e10, HardMin: 0, HardMax: 1e10, Delta: 0.01}},
			F77Single: f77Model("xscnst_", C.xsm_f77_model(C.xscnst_)),
		},
		{
			Name: "wabs", FuncName: "xsabsw_", Type: Mul, Language: F77Style4,
			ELow: 0, EHigh: 1e20, CanCache: true,
			Params:    []ParamInfo{{Name: "nH", Units: "10^22", Default: 1, SoftMin: 0, SoftMax: 1e5, HardMin: 0, HardMax: 1e6, Delta: 0.001}},
			F77Single: f77Model("xsabsw_", C.xsm_f77_model(C.xsabsw_)),
		},
		{
			Name: "zashift", FuncName: "C_zashift", Type: Con, Language: CStyle8,
			ELow: 0, EHigh: 1e20,
			Params: []ParamInfo{{Name: "Redshift", Default: 0, Frozen: true, SoftMin: -0.999, SoftMax: 10, HardMin: -0.999, HardMax: 10, Delta: -0.01}},
			C:      cModel("C_zashift", C.xsm_c_model(C.C_zashift)),
		},
	}
}
