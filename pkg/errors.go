package blockdupes

import (
	"github.com/cockroachdb/errors"
)

// Error classes. Both the standard library's errors.Is and
// cockroachdb/errors.Is match a returned error against these; the
// IsConfigurationError, IsScanError and IsComparisonError helpers do the same.
var (
	// ErrConfiguration marks invalid settings; fatal before any scanning starts
	ErrConfiguration = errors.New("configuration error")
	// ErrScan marks a path that could not be listed or stat'ed; the entry is skipped
	ErrScan = errors.New("scan error")
	// ErrComparison marks a file that became unreadable during a pair comparison
	ErrComparison = errors.New("comparison error")
)

// classifiedError attaches an error class to a cause. The class is matched
// through Is, the cause through Unwrap.
type classifiedError struct {
	class error
	cause error
}

func (e *classifiedError) Error() string { return e.cause.Error() }

func (e *classifiedError) Unwrap() error { return e.cause }

func (e *classifiedError) Is(target error) bool { return target == e.class }

// classify marks cause with class for cockroachdb's marker lookup and wraps
// it so the standard library's errors.Is sees the class too
func classify(cause, class error) error {
	return &classifiedError{class: class, cause: errors.Mark(cause, class)}
}

// ConfigErrorf returns a new error classified as ErrConfiguration
func ConfigErrorf(format string, args ...interface{}) error {
	return classify(errors.Newf(format, args...), ErrConfiguration)
}

// scanError wraps err with the offending path and classifies it as ErrScan
func scanError(err error, path string) error {
	return classify(errors.Wrapf(err, "scan %s", path), ErrScan)
}

// comparisonError wraps err with the offending path and classifies it as ErrComparison
func comparisonError(err error, path string) error {
	return classify(errors.Wrapf(err, "compare %s", path), ErrComparison)
}

// IsConfigurationError reports whether err was caused by invalid settings
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsScanError reports whether err is a path the scanner had to skip
func IsScanError(err error) bool {
	return errors.Is(err, ErrScan)
}

// IsComparisonError reports whether err is a read failure during a pair comparison
func IsComparisonError(err error) bool {
	return errors.Is(err, ErrComparison)
}
