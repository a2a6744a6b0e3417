package blockdupes

import (
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// candidateIndex is a path-ordered index of candidates. The context of
// each entry is the scan root the candidate was first found under.
type candidateIndex struct {
	skiplist *zcsl.ZeroCopySkiplist[Candidate, string, string]
}

// newCandidateIndex creates an empty candidate index
func newCandidateIndex(maxLevels int) *candidateIndex {
	if maxLevels < 8 {
		maxLevels = 16
	}

	getKeyFromItem := func(c *Candidate) string {
		return c.Path
	}

	getItemSize := func(c *Candidate) int {
		return len(c.Path) + 16
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	return &candidateIndex{
		skiplist: zcsl.MakeZeroCopySkiplist[Candidate, string, string](
			maxLevels,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
	}
}

// Add inserts c unless a candidate with the same path is already indexed.
// It returns false for a repeat.
func (ci *candidateIndex) Add(c Candidate) bool {
	if ci.Contains(c.Path) {
		return false
	}
	item := c
	return ci.skiplist.Insert(&item, c.Root)
}

// Contains returns true if path is indexed
func (ci *candidateIndex) Contains(path string) bool {
	itemPtr, _ := ci.skiplist.Find(path)
	return itemPtr != nil
}

// Length returns the number of indexed candidates
func (ci *candidateIndex) Length() int {
	return ci.skiplist.Length()
}

// Sorted returns the indexed candidates in path order
func (ci *candidateIndex) Sorted() []Candidate {
	out := make([]Candidate, 0, ci.skiplist.Length())
	for current := ci.skiplist.First(); current != nil; current = current.Next() {
		c := *current.Item()
		c.Root = current.Context()
		out = append(out, c)
	}
	return out
}
