package blockdupes

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// writeFile creates path (and its parents) with the given content
func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// candidatesFor writes each content to its own file under dir and returns
// the candidates in the given order
func candidatesFor(t *testing.T, dir string, contents ...string) []Candidate {
	t.Helper()
	var out []Candidate
	for i, content := range contents {
		path := writeFile(t, filepath.Join(dir, "f"+string(rune('a'+i))+".txt"), content)
		out = append(out, Candidate{Path: path, Size: int64(len(content))})
	}
	return out
}

// countingAlgorithm wraps an algorithm and counts Digest calls
type countingAlgorithm struct {
	HashAlgorithm
	calls atomic.Int64
}

func (c *countingAlgorithm) Digest(block []byte) Digest {
	c.calls.Add(1)
	return c.HashAlgorithm.Digest(block)
}

func mustAlgorithm(t *testing.T, name string) HashAlgorithm {
	t.Helper()
	algorithm, err := GetHashAlgorithm(name)
	if err != nil {
		t.Fatalf("GetHashAlgorithm(%q) failed: %v", name, err)
	}
	return algorithm
}

// duplicatePaths flattens groups into kept path -> duplicate paths, skipping empty groups
func duplicatePaths(groups []DuplicateSet) map[string][]string {
	out := make(map[string][]string)
	for _, g := range groups {
		if !g.HasDuplicates() {
			continue
		}
		for _, d := range g.Duplicates {
			out[g.Kept.Path] = append(out[g.Kept.Path], d.Path)
		}
	}
	return out
}
