package cache

// keyVersion is bumped whenever the encoding of cached results changes so
// that stale entries are never decoded.
const keyVersion = "v1"

// FretboardKeyOpts identifies a computed fretboard.
type FretboardKeyOpts struct {
	Tuning    string `json:"tuning"`
	StartFret int    `json:"start"`
	EndFret   int    `json:"end"`
	MaxFret   int    `json:"max"`
	// Source is a canonical description such as "scale:C:major" or
	// "chord:G:dominant:9:b5@0".
	Source   string `json:"source"`
	Root     string `json:"root,omitempty"`
	Selected []int  `json:"selected,omitempty"`
	Hover    string `json:"hover,omitempty"`
	Pressed  string `json:"pressed,omitempty"`
	Display  string `json:"display"`
}

// ChordKeyOpts identifies a chord with its fingering search.
type ChordKeyOpts struct {
	Root            string   `json:"root"`
	Quality         string   `json:"quality"`
	Extensions      []string `json:"ext,omitempty"`
	Alterations     []string `json:"alt,omitempty"`
	Tuning          string   `json:"tuning"`
	StartFret       int      `json:"start"`
	MaxFret         int      `json:"max"`
	MaxSpan         int      `json:"span"`
	MaxCandidates   int      `json:"candidates"`
	Limit           int      `json:"limit"`
	AllowInversions bool     `json:"inv"`
}

// ScaleKeyOpts identifies a generated scale.
type ScaleKeyOpts struct {
	Root string `json:"root"`
	Type string `json:"type"`
}

// Keyer derives cache keys. Implementations must return equal keys for
// equal options.
type Keyer interface {
	FretboardKey(opts FretboardKeyOpts) string
	ChordKey(opts ChordKeyOpts) string
	ScaleKey(opts ScaleKeyOpts) string
}

// DefaultKeyer hashes options under a per-kind prefix.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) FretboardKey(opts FretboardKeyOpts) string {
	return hashKey("fretboard", keyVersion, opts)
}

func (DefaultKeyer) ChordKey(opts ChordKeyOpts) string {
	return hashKey("chord", keyVersion, opts)
}

func (DefaultKeyer) ScaleKey(opts ScaleKeyOpts) string {
	return hashKey("scale", keyVersion, opts)
}

// ScopedKeyer prefixes every key of an inner keyer, giving callers such as
// separate config profiles their own namespace in a shared cache.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) FretboardKey(opts FretboardKeyOpts) string {
	return k.prefix + k.inner.FretboardKey(opts)
}

func (k *ScopedKeyer) ChordKey(opts ChordKeyOpts) string {
	return k.prefix + k.inner.ChordKey(opts)
}

func (k *ScopedKeyer) ScaleKey(opts ScaleKeyOpts) string {
	return k.prefix + k.inner.ScaleKey(opts)
}
