package native

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"xsmodels/db"
)

// ReferenceVersion is reported by the reference backend.
const ReferenceVersion = "12.14.0-reference"

// Reference is a pure-Go Library. Settings are held in memory and written
// through to a db.Store so they survive between processes.
type Reference struct {
	mu       sync.Mutex
	store    *db.Store
	database *db.Database

	chatter    int
	abund      string
	abundances []float64
	xsect      string
	h0         float64
	q0         float64
	lambda0    float64

	xflt         map[int]map[string]float64
	modelStrings map[string]string
	keywords     map[string]float64

	tables *tableCache
}

// OpenReference opens (or creates) the settings database at path and
// returns a Reference backed by it. db.MemoryPath gives a throwaway state.
func OpenReference(path string) (*Reference, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, &NativeError{Op: "open", Message: "settings store unavailable", Err: err}
	}
	r, err := NewReference(db.NewStore(database))
	if err != nil {
		database.Close()
		return nil, err
	}
	r.database = database
	return r, nil
}

// NewReference loads the state held in store.
func NewReference(store *db.Store) (*Reference, error) {
	r := &Reference{store: store, tables: newTableCache()}
	if err := r.load(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reference) load(ctx context.Context) error {
	get := func(key string) (string, error) {
		v, err := r.store.Setting(ctx, key)
		if err != nil {
			return "", &NativeError{Op: "load", Message: "reading " + key, Err: err}
		}
		return v, nil
	}
	num := func(key string) (float64, error) {
		v, err := get(key)
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, &NativeError{Op: "load", Message: "parsing " + key, Err: err}
		}
		return f, nil
	}

	chatter, err := num(db.KeyChatter)
	if err != nil {
		return err
	}
	abund, err := get(db.KeyAbundance)
	if err != nil {
		return err
	}
	values, err := r.store.Abundances(ctx, abund)
	if err != nil {
		return &NativeError{Op: "load", Message: "abundance table " + abund, Err: err}
	}
	xsect, err := get(db.KeyCrossSection)
	if err != nil {
		return err
	}
	h0, err := num(db.KeyCosmoH0)
	if err != nil {
		return err
	}
	q0, err := num(db.KeyCosmoQ0)
	if err != nil {
		return err
	}
	l0, err := num(db.KeyCosmoLambda0)
	if err != nil {
		return err
	}
	strs, err := r.store.ModelStrings(ctx)
	if err != nil {
		return &NativeError{Op: "load", Message: "model strings", Err: err}
	}

	r.chatter = int(chatter)
	r.abund = abund
	r.abundances = values
	r.xsect = xsect
	r.h0, r.q0, r.lambda0 = h0, q0, l0
	r.modelStrings = strs
	// XFLT and keywords are read on demand.
	r.xflt = make(map[int]map[string]float64)
	r.keywords = make(map[string]float64)
	return nil
}

// Init prints the start-up banner the real library prints.
func (r *Reference) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Ping(); err != nil {
		return &NativeError{Op: "init", Message: "settings store unavailable", Err: err}
	}
	if r.chatter > 0 {
		fmt.Fprintf(os.Stdout, " xsmodels reference library %s\n", ReferenceVersion)
		fmt.Fprintf(os.Stdout, " Solar Abundance Vector set to %s\n", r.abund)
		fmt.Fprintf(os.Stdout, " Cross Section Table set to %s\n", r.xsect)
	}
	return nil
}

// Close closes the settings database if OpenReference opened it.
func (r *Reference) Close() error {
	if r.database == nil {
		return nil
	}
	return r.database.Close()
}

// Reset restores the default settings and reloads them.
func (r *Reference) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := context.Background()
	if err := r.store.Reset(ctx); err != nil {
		return &NativeError{Op: "reset", Message: "settings store", Err: err}
	}
	return r.load(ctx)
}

func (r *Reference) Version() string { return ReferenceVersion }

func (r *Reference) Chatter() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chatter
}

func (r *Reference) SetChatter(level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.put(db.KeyChatter, strconv.Itoa(level)); err != nil {
		return err
	}
	r.chatter = level
	return nil
}

func (r *Reference) Abundance() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.abund
}

func (r *Reference) SetAbundance(table string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(table)
	values, err := r.store.Abundances(context.Background(), name)
	if err != nil {
		return &NativeError{Op: "abund", Message: fmt.Sprintf("invalid abundance table %q", table), Err: ErrUnknownTable}
	}
	if err := r.put(db.KeyAbundance, name); err != nil {
		return err
	}
	r.abund = name
	r.abundances = values
	return nil
}

func (r *Reference) CrossSection() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.xsect
}

func (r *Reference) SetCrossSection(table string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(table)
	known, err := r.store.CrossSectionTables(context.Background())
	if err != nil {
		return &NativeError{Op: "xsect", Message: "listing tables", Err: err}
	}
	found := false
	for _, k := range known {
		if k == name {
			found = true
			break
		}
	}
	if !found {
		return &NativeError{Op: "xsect", Message: fmt.Sprintf("invalid cross-section table %q", table), Err: ErrUnknownTable}
	}
	if err := r.put(db.KeyCrossSection, name); err != nil {
		return err
	}
	r.xsect = name
	return nil
}

func (r *Reference) ElementAbundance(name string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sym := range elementSymbols {
		if strings.EqualFold(sym, name) {
			return r.abundanceAt(i)
		}
	}
	fmt.Fprintf(os.Stderr, " Invalid element: %s entered, returning 0.\n", name)
	return 0
}

func (r *Reference) ElementAbundanceByZ(z int) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.abundanceAt(z - 1)
}

func (r *Reference) abundanceAt(i int) float64 {
	if i < 0 || i >= len(r.abundances) {
		return 0
	}
	return r.abundances[i]
}

func (r *Reference) ElementName(index int) string {
	if index < 0 || index >= len(elementSymbols) {
		return ""
	}
	return elementSymbols[index]
}

func (r *Reference) NumberElements() int { return NumberElements }

func (r *Reference) Cosmology() (float64, float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.h0, r.q0, r.lambda0
}

func (r *Reference) SetCosmology(h0, q0, lambda0 float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := map[string]string{
		db.KeyCosmoH0:      strconv.FormatFloat(h0, 'g', -1, 64),
		db.KeyCosmoQ0:      strconv.FormatFloat(q0, 'g', -1, 64),
		db.KeyCosmoLambda0: strconv.FormatFloat(lambda0, 'g', -1, 64),
	}
	if err := r.store.PutSettings(context.Background(), values); err != nil {
		return &NativeError{Op: "cosmo", Message: "cosmology not stored", Err: err}
	}
	r.h0, r.q0, r.lambda0 = h0, q0, lambda0
	return nil
}

func (r *Reference) XFLT(spectrum int) map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.store.XFLT(context.Background(), spectrum)
	if err != nil {
		return map[string]float64{}
	}
	return values
}

func (r *Reference) SetXFLT(spectrum int, values map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.ReplaceXFLT(context.Background(), spectrum, values); err != nil {
		return &NativeError{Op: "xflt", Message: "write", Err: err}
	}
	return nil
}

func (r *Reference) XFLTValue(spectrum int, key string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.store.XFLTValue(context.Background(), spectrum, key)
	if err != nil {
		return BadValue
	}
	return v
}

func (r *Reference) ClearXFLT() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.ClearXFLT(context.Background()); err != nil {
		return &NativeError{Op: "xflt", Message: "clear", Err: err}
	}
	return nil
}

// Model string keys are case-insensitive.
func (r *Reference) ModelString(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.modelStrings[strings.ToUpper(key)]
	if !ok {
		return NotAKey
	}
	return v
}

func (r *Reference) SetModelString(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key = strings.ToUpper(key)
	if err := r.store.PutModelString(context.Background(), key, value); err != nil {
		return &NativeError{Op: "mstr", Message: "write", Err: err}
	}
	r.modelStrings[key] = value
	return nil
}

func (r *Reference) ModelStrings() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]string, len(r.modelStrings))
	for k, v := range r.modelStrings {
		out[k] = v
	}
	return out
}

func (r *Reference) ClearModelStrings() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.ClearModelStrings(context.Background()); err != nil {
		return &NativeError{Op: "mstr", Message: "clear", Err: err}
	}
	r.modelStrings = make(map[string]string)
	return nil
}

func (r *Reference) Keyword(key string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.keywords[key]; ok {
		return v
	}
	v, err := r.store.Keyword(context.Background(), key)
	if err != nil {
		return BadValue
	}
	r.keywords[key] = v
	return v
}

func (r *Reference) SetKeyword(key string, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.PutKeyword(context.Background(), key, value); err != nil {
		return &NativeError{Op: "keyword", Message: "write", Err: err}
	}
	r.keywords[key] = value
	return nil
}

func (r *Reference) ClearKeywords() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.ClearKeywords(context.Background()); err != nil {
		return &NativeError{Op: "keyword", Message: "clear", Err: err}
	}
	r.keywords = make(map[string]float64)
	return nil
}

// TableModel evaluates a YAML table file; see ReadTableFile.
func (r *Reference) TableModel(path, tableType string, energy []float32, nFlux int, params []float32, spectrum int, flux, fluxErr []float32) error {
	table, err := r.tables.get(path)
	if err != nil {
		return &NativeError{Op: "tabint", Message: path, Err: err}
	}
	if err := table.Evaluate(tableType, energy[:nFlux+1], params, flux[:nFlux]); err != nil {
		return &NativeError{Op: "tabint", Message: path, Err: err}
	}
	return nil
}

// Models lists the reference models.
func (r *Reference) Models() []ModelEntry {
	return referenceModels()
}

func (r *Reference) put(key, value string) error {
	if err := r.store.PutSetting(context.Background(), key, value); err != nil {
		return &NativeError{Op: "set", Message: key, Err: err}
	}
	return nil
}
