package cache

// Keyer builds cache keys.
type Keyer interface {
	// CoverKey identifies the exported cover of the graph whose file hashes
	// to graphHash under the given options.
	CoverKey(graphHash string, opts CoverKeyOpts) string
}

// CoverKeyOpts are the options that change a cover's output.
type CoverKeyOpts struct {
	Solver        string `json:"solver"`
	Optimizer     string `json:"optimizer"`
	MaxIterations int    `json:"max_iterations"`
	Depth         int    `json:"depth"`
	Format        string `json:"format"`
}

// DefaultKeyer produces keys of the form "cover:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// CoverKey implements Keyer.
func (DefaultKeyer) CoverKey(graphHash string, opts CoverKeyOpts) string {
	return hashKey("cover", graphHash, opts)
}
