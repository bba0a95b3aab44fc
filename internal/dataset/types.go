package dataset

import "github.com/danielpatrickdp/xp-complexity/go-generator/internal/normalize"

// #region record

// Record is one labeled row of the dataset file.
type Record struct {
	Text       string
	Complexity float64
}

// Header is the first row of every dataset file.
var Header = []string{"text", "complexity"}

// #endregion record

// #region dedup-set

// DedupSet tracks the keys of every accepted text. It only grows.
type DedupSet struct {
	seen map[string]struct{}
}

// NewDedupSet creates an empty set.
func NewDedupSet() *DedupSet {
	return &DedupSet{seen: make(map[string]struct{})}
}

// Contains reports whether text (under its dedup key) was already accepted.
func (d *DedupSet) Contains(text string) bool {
	_, ok := d.seen[normalize.DedupKey(text)]
	return ok
}

// Add marks text as accepted. Empty keys are ignored.
func (d *DedupSet) Add(text string) {
	if key := normalize.DedupKey(text); key != "" {
		d.seen[key] = struct{}{}
	}
}

// Len returns the number of distinct keys.
func (d *DedupSet) Len() int {
	return len(d.seen)
}

// #endregion dedup-set
