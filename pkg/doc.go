// Package blockdupes finds duplicate files across directory trees without
// hashing whole files up front.
//
// Files are compared pairwise in lock-step, one block at a time. Block
// digests are computed lazily and cached per file, and a comparison stops
// at the first block that differs, so unrelated files usually cost one
// block of I/O each.
//
// # Core API
//
// The one-call entry point scans and detects:
//
//	settings := blockdupes.DefaultSettings()
//	settings.Roots = []string{"/data/a", "/data/b"}
//	settings.Pattern = `.*\.txt`
//	result, err := blockdupes.FindDuplicates(ctx, settings)
//	for _, group := range result.Duplicates() {
//		fmt.Println(group.Kept.Path, group.Duplicates)
//	}
//
// The scanner and detector can also be used on their own:
//
//	scanner := blockdupes.NewScanner(blockdupes.ScanOptions{Recursive: true, NamePattern: re})
//	candidates, err := scanner.Scan(ctx, roots)
//
//	algorithm, _ := blockdupes.GetHashAlgorithm("blake2b")
//	detector, err := blockdupes.NewDetector(blockdupes.DetectOptions{BlockSize: 4096, Algorithm: algorithm})
//	groups, err := detector.Detect(ctx, candidates)
//
// # Errors
//
// Errors are classified with errors.Is against ErrConfiguration, ErrScan and
// ErrComparison, or with IsConfigurationError, IsScanError and
// IsComparisonError. Only configuration errors stop a run; unreadable paths are
// logged and skipped, and a file that fails mid-comparison is treated as
// not a duplicate.
//
// Equal digests are trusted: the detector never re-reads raw bytes, so a
// hash collision can report two different files as duplicates. Choose a
// cryptographic algorithm (blake2b, sha256) when that matters.
//
// # Configuration
//
// Enable debug output:
//
//	blockdupes.SetDebugFlags("scan,compare")
//	blockdupes.SetVerboseLevel(2)
package blockdupes
