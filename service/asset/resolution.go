package asset

// Status is the outcome of resolving one reference
type Status int

const (
	// StatusFound means the normalized path exists in the asset store
	StatusFound Status = iota
	// StatusMissing means the normalized path does not exist
	StatusMissing
)

// String returns status name
func (s Status) String() string {
	if s == StatusFound {
		return "found"
	}
	return "missing"
}

// Resolution describes how a reference resolved. A missing reference may
// carry a suggested existing path for operator review; it is never applied
// automatically.
type Resolution struct {
	Reference  string `json:"reference"`
	Path       string `json:"path"`
	URL        string `json:"url,omitempty"`
	Status     Status `json:"-"`
	Suggestion string `json:"suggestion,omitempty"`
	Score      int    `json:"score,omitempty"`
}

// Found returns true if the reference resolved to an asset
func (r *Resolution) Found() bool {
	return r.Status == StatusFound
}
