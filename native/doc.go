// Package native is the boundary to the compiled spectral-model library.
//
// Two backends exist, selected at build time:
//
//   - xspec && cgo: binds the HEASoft XSPEC model library (libXSFunctions,
//     libXSUtil and friends). HEADAS must point at an initialised HEASoft
//     installation at run time.
//   - default: a pure-Go reference backend with a small set of models, the
//     standard element abundance tables and a sqlite-backed settings store.
//
// Example build against a HEASoft installation:
//
//	CGO_CFLAGS="-I${HEADAS}/include" \
//	CGO_LDFLAGS="-L${HEADAS}/lib -lXSFunctions -lXSUtil -lXS -lhdsp" \
//	go build -tags xspec
//
// Nothing in this package validates buffer shapes. Callers are expected to
// go through package xspec, which checks every length before handing a slice
// to an entry point.
package native
