package blockdupes

import (
	"sort"
	"strings"
)

// Hash type constants
const (
	HashTypeCRC32   uint16 = 1 // CRC-32 IEEE (4 bytes)
	HashTypeXXHash  uint16 = 2 // xxHash64 (8 bytes)
	HashTypeBlake2b uint16 = 3 // BLAKE2b generic hash (16-64 bytes)
	HashTypeMD5     uint16 = 4 // MD5 (16 bytes), legacy
	HashTypeSHA1    uint16 = 5 // SHA-1 (20 bytes), legacy
	HashTypeSHA256  uint16 = 6 // SHA-256 (32 bytes)
	HashTypeSHA512  uint16 = 7 // SHA-512 (64 bytes)
)

// Hash size constants
const (
	HashSizeCRC32  = 4
	HashSizeXXHash = 8
	HashSizeMD5    = 16
	HashSizeSHA1   = 20
	HashSizeSHA256 = 32
	HashSizeSHA512 = 64
)

var hashTypesByName = map[string]uint16{
	"crc32":       HashTypeCRC32,
	"xxhash":      HashTypeXXHash,
	"blake2b":     HashTypeBlake2b,
	"generichash": HashTypeBlake2b,
	"md5":         HashTypeMD5,
	"sha1":        HashTypeSHA1,
	"sha256":      HashTypeSHA256,
	"sha512":      HashTypeSHA512,
}

// HashTypeName returns the human-readable name for a hash type
func HashTypeName(hashType uint16) string {
	switch hashType {
	case HashTypeCRC32:
		return "crc32"
	case HashTypeXXHash:
		return "xxhash"
	case HashTypeBlake2b:
		return "blake2b"
	case HashTypeMD5:
		return "md5"
	case HashTypeSHA1:
		return "sha1"
	case HashTypeSHA256:
		return "sha256"
	case HashTypeSHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

// HashTypeFromName returns the hash type constant from a name (case-insensitive)
func HashTypeFromName(name string) (uint16, bool) {
	t, ok := hashTypesByName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// SupportedHashNames returns the accepted hash algorithm names in sorted order
func SupportedHashNames() []string {
	names := make([]string, 0, len(hashTypesByName))
	for name := range hashTypesByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Output formats
const (
	FormatHuman  = "human"
	FormatFdupes = "fdupes"
	FormatJSON   = "json"
	FormatCSV    = "csv"
)

// Defaults, following the original tool where it had one
const (
	DefaultBlockSize    = 4096
	DefaultHash         = "crc32"
	DefaultPattern      = ".*"
	DefaultMinSize      = 1
	DefaultFormat       = FormatHuman
	DefaultWorkers      = 1
	DefaultMaxOpenFiles = 64
)

// Debug flag names understood by SetDebugFlags
const (
	DebugScan    = "scan"
	DebugCompare = "compare"
	DebugCache   = "cache"
)
