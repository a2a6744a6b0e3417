package blockdupes

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
)

// ScanOptions are the already-validated filters applied while scanning
type ScanOptions struct {
	Recursive   bool           // descend into subdirectories
	Exclude     *ExcludeSet    // directories never descended into
	NamePattern *regexp.Regexp // full-match filename filter; nil matches nothing
	MinSize     int64          // smallest candidate size in bytes
	SortByPath  bool           // return candidates in path order instead of enumeration order
}

// Scanner walks root directories and yields the candidate list
type Scanner struct {
	opts    ScanOptions
	readDir func(string) ([]os.DirEntry, error)
	errors  []error
}

// NewScanner creates a scanner with the given filters
func NewScanner(opts ScanOptions) *Scanner {
	return &Scanner{opts: opts, readDir: os.ReadDir}
}

// CompileNamePattern compiles a filename pattern that must match the whole
// name. An empty pattern yields nil, which matches no file.
func CompileNamePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, ConfigErrorf("invalid file pattern %q: %v", pattern, err)
	}
	return re, nil
}

// Errors returns the ScanErrors recorded by the last Scan; each one cost
// a single entry or subtree, never the whole scan
func (s *Scanner) Errors() []error {
	return append([]error(nil), s.errors...)
}

func (s *Scanner) recordError(err error) {
	Warnf("%v", err)
	s.errors = append(s.errors, err)
}

// Scan walks roots in order and returns the candidates in enumeration order.
// A file reachable from more than one root is listed once. If ctx is
// cancelled the candidates found so far are returned with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, roots []string) ([]Candidate, error) {
	defer VerboseEnter()()
	s.errors = nil

	index := newCandidateIndex(16)
	var candidates []Candidate
	var scanned []string

	for _, root := range roots {
		canonical, err := CanonicalPath(root)
		if err != nil {
			s.recordError(scanError(err, root))
			continue
		}
		if s.opts.Exclude.Excludes(canonical) {
			VerboseLog(1, "Skipping excluded root: %s", canonical)
			continue
		}
		if s.coveredBy(canonical, scanned) {
			if IsDebugEnabled(DebugScan) {
				VerboseLog(3, "Scan: root %s already covered", canonical)
			}
			continue
		}
		scanned = append(scanned, canonical)

		info, err := os.Stat(canonical)
		if err != nil {
			s.recordError(scanError(err, canonical))
			continue
		}
		if !info.IsDir() {
			s.recordError(scanError(os.ErrInvalid, canonical))
			continue
		}

		if err := s.scanDir(ctx, canonical, canonical, index, &candidates); err != nil {
			return s.result(index, candidates), err
		}
	}

	return s.result(index, candidates), nil
}

// coveredBy reports whether root lies inside an already scanned recursive root
func (s *Scanner) coveredBy(root string, scanned []string) bool {
	for _, prev := range scanned {
		if prev == root {
			return true
		}
		if s.opts.Recursive && isPathUnder(root, prev) && !s.excludedBetween(root, prev) {
			return true
		}
	}
	return false
}

// excludedBetween reports whether any directory from child up to (not
// including) parent is excluded, in which case parent's walk did not reach child
func (s *Scanner) excludedBetween(child, parent string) bool {
	for dir := child; dir != parent && isPathUnder(dir, parent); dir = filepath.Dir(dir) {
		if s.opts.Exclude.Excludes(dir) {
			return true
		}
	}
	return false
}

func (s *Scanner) result(index *candidateIndex, candidates []Candidate) []Candidate {
	if s.opts.SortByPath {
		return index.Sorted()
	}
	return candidates
}

// scanDir lists dir and recurses into subdirectories when configured.
// Only cancellation is returned as an error.
func (s *Scanner) scanDir(ctx context.Context, dir, root string, index *candidateIndex, candidates *[]Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := s.readDir(dir)
	if err != nil {
		// Abandon this subtree only
		s.recordError(scanError(err, dir))
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, entry.Name())
		info, err := os.Lstat(path)
		if err != nil {
			if os.IsNotExist(err) {
				if IsDebugEnabled(DebugScan) {
					VerboseLog(3, "Scan: %s vanished before stat", path)
				}
				continue
			}
			s.recordError(scanError(err, path))
			continue
		}

		mode := info.Mode()
		switch {
		case mode&os.ModeSymlink != 0:
			if IsDebugEnabled(DebugScan) {
				VerboseLog(3, "Scan: skipping symlink %s", path)
			}
		case mode.IsDir():
			if !s.opts.Recursive {
				continue
			}
			if s.opts.Exclude.Excludes(path) {
				VerboseLog(1, "Skipping excluded directory: %s", path)
				continue
			}
			if err := s.scanDir(ctx, path, root, index, candidates); err != nil {
				return err
			}
		case mode.IsRegular():
			if !s.accept(entry.Name(), info.Size()) {
				continue
			}
			c := Candidate{Path: path, Size: info.Size(), Root: root}
			if !index.Add(c) {
				continue
			}
			if IsDebugEnabled(DebugScan) {
				VerboseLog(3, "Scan: candidate %s (%d bytes)", path, c.Size)
			}
			*candidates = append(*candidates, c)
		}
	}
	return nil
}

// accept applies the filename and size filters
func (s *Scanner) accept(name string, size int64) bool {
	if s.opts.NamePattern == nil || !s.opts.NamePattern.MatchString(name) {
		return false
	}
	return size >= s.opts.MinSize
}
