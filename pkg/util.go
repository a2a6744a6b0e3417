package blockdupes

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// CanonicalPath returns the absolute, symlink-free, cleaned form of path
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return filepath.Clean(resolved), nil
}

// SplitList splits a comma-separated list, trimming blanks and dropping empty items
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParseHumanSize parses sizes like "4096", "4K", "4KiB" or "1M" into bytes
func ParseHumanSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(sizeStr)
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}
	n, err := humanize.ParseBytes(sizeStr)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", sizeStr, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("size %q too large", sizeStr)
	}
	return int64(n), nil
}

// isPathUnder checks if childPath is under parentPath
func isPathUnder(childPath, parentPath string) bool {
	childPath = filepath.Clean(childPath)
	parentPath = filepath.Clean(parentPath)
	if childPath == parentPath {
		return false
	}
	parentWithSep := parentPath
	if !strings.HasSuffix(parentWithSep, string(filepath.Separator)) {
		parentWithSep += string(filepath.Separator)
	}
	return strings.HasPrefix(childPath, parentWithSep)
}
