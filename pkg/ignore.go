package blockdupes

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ExcludeSet decides which directories the scanner must not descend into.
// It holds canonical directory paths and optional regular expressions read
// from an ignore file.
type ExcludeSet struct {
	paths    map[string]struct{}
	patterns []*regexp.Regexp
}

// NewExcludeSet canonicalises dirs and returns the resulting set.
// Directories that do not exist are kept by their cleaned absolute path.
func NewExcludeSet(dirs []string) (*ExcludeSet, error) {
	es := &ExcludeSet{paths: make(map[string]struct{}, len(dirs))}
	for _, dir := range dirs {
		if err := es.AddPath(dir); err != nil {
			return nil, err
		}
	}
	return es, nil
}

// AddPath adds a directory to the set
func (es *ExcludeSet) AddPath(dir string) error {
	canonical, err := CanonicalPath(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to resolve excluded directory %s: %w", dir, err)
		}
		abs, absErr := filepath.Abs(dir)
		if absErr != nil {
			return fmt.Errorf("failed to resolve excluded directory %s: %w", dir, absErr)
		}
		canonical = filepath.Clean(abs)
		VerboseLog(1, "Excluded directory %s does not exist", canonical)
	}
	es.paths[canonical] = struct{}{}
	return nil
}

// AddPattern adds an ignore pattern matched against slash-separated absolute paths
func (es *ExcludeSet) AddPattern(patternStr string) error {
	pattern, err := regexp.Compile(patternStr)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %s - %w", patternStr, err)
	}
	es.patterns = append(es.patterns, pattern)
	return nil
}

// LoadIgnoreFile reads one regular expression per line from path.
// Empty lines and lines starting with # are skipped.
func (es *ExcludeSet) LoadIgnoreFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := es.AddPattern(line); err != nil {
			return fmt.Errorf("ignore file %s line %d: %w", path, lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ignore file: %w", err)
	}
	return nil
}

// Excludes reports whether the canonical directory path must be skipped
func (es *ExcludeSet) Excludes(path string) bool {
	if es == nil {
		return false
	}
	if _, ok := es.paths[path]; ok {
		return true
	}
	if len(es.patterns) == 0 {
		return false
	}
	slashPath := filepath.ToSlash(path)
	for _, pattern := range es.patterns {
		if pattern.MatchString(slashPath) {
			return true
		}
	}
	return false
}

// Paths returns the number of excluded directories
func (es *ExcludeSet) Paths() int {
	if es == nil {
		return 0
	}
	return len(es.paths)
}

// Patterns returns the number of ignore patterns
func (es *ExcludeSet) Patterns() int {
	if es == nil {
		return 0
	}
	return len(es.patterns)
}
