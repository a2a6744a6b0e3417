package blockdupes

import (
	"context"
	"fmt"
)

// Result is the outcome of one scan and detection run
type Result struct {
	Candidates []Candidate
	Groups     []DuplicateSet
	Stats      Stats
	ScanErrors []error
	Algorithm  HashAlgorithm
	BlockSize  int
}

// Duplicates returns only the groups that have at least one duplicate
func (r *Result) Duplicates() []DuplicateSet {
	var out []DuplicateSet
	for _, g := range r.Groups {
		if g.HasDuplicates() {
			out = append(out, g)
		}
	}
	return out
}

// FindDuplicates scans the configured roots and partitions the candidates
// into duplicate sets. Invalid settings fail with ErrConfiguration before
// any scanning. On cancellation the partial result is returned with ctx.Err().
func FindDuplicates(ctx context.Context, s *Settings) (*Result, error) {
	defer VerboseEnter()()
	if err := s.Validate(); err != nil {
		return nil, err
	}

	algorithm, err := GetHashAlgorithmWithSize(s.Hash, s.DigestSize)
	if err != nil {
		return nil, err
	}
	pattern, err := CompileNamePattern(s.Pattern)
	if err != nil {
		return nil, err
	}

	exclude, err := NewExcludeSet(s.Exclude)
	if err != nil {
		return nil, ConfigErrorf("%v", err)
	}
	if s.IgnoreFile != "" {
		if err := exclude.LoadIgnoreFile(s.IgnoreFile); err != nil {
			return nil, ConfigErrorf("%v", err)
		}
	}

	detector, err := NewDetector(DetectOptions{
		BlockSize:    s.BlockSize,
		Algorithm:    algorithm,
		Workers:      s.Workers,
		SizeBuckets:  s.SizeBuckets,
		MaxOpenFiles: s.MaxOpenFiles,
	})
	if err != nil {
		return nil, err
	}

	scanner := NewScanner(ScanOptions{
		Recursive:   s.Recursive,
		Exclude:     exclude,
		NamePattern: pattern,
		MinSize:     s.MinSize,
		SortByPath:  s.SortPaths,
	})

	result := &Result{Algorithm: algorithm, BlockSize: s.BlockSize}

	candidates, err := scanner.Scan(ctx, s.Roots)
	result.Candidates = candidates
	result.ScanErrors = scanner.Errors()
	if err != nil {
		return result, fmt.Errorf("scan interrupted: %w", err)
	}
	VerboseLog(1, "Scanned %d candidates (%d scan errors)", len(candidates), len(result.ScanErrors))

	groups, err := detector.Detect(ctx, candidates)
	result.Groups = groups
	result.Stats = detector.Stats()
	if err != nil {
		return result, fmt.Errorf("detection interrupted: %w", err)
	}
	return result, nil
}
