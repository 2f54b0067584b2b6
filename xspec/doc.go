// Package xspec is the dispatch layer between Go callers and the spectral
// model library.
//
// Every evaluation goes through a Session. Before anything is sent to the
// library the session makes sure its one-time setup has run, then checks
// the buffers: parameters, energy grid and any output must be 1D, the
// parameter count must match the model, and the grid must have at least
// MinGridEdges edges and exactly one more element than the output. Only
// then is the native entry point called, once.
//
// Models are bound in one of three calling conventions (see Convention).
// Single precision models take and return float32 buffers; the catalog's
// Evaluate converts for callers that only hold float64 data.
//
// Lookups in the library's settings databases that miss are reported as
// *KeyNotFoundError rather than the sentinel values the library returns.
package xspec
