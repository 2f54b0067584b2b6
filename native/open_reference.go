//go:build !xspec || !cgo

package native

// Backend names the library compiled into this binary.
const Backend = "reference"

// Open returns the reference library with its settings in cfg.StatePath.
func Open(cfg Config) (Library, error) {
	return OpenReference(cfg.StatePath)
}
