package blockdupes

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
)

// Config represents the bdupes configuration file
type Config struct {
	configPath string
	ini        *ini.File
}

// ScanConfig represents the scanner configuration
type ScanConfig struct {
	Dirs       string // Comma-separated scan roots
	Exclude    string // Comma-separated excluded directories
	Recursive  bool   // Descend into subdirectories
	Pattern    string // Full-match filename regular expression
	MinSize    string // Minimum file size, human form allowed
	IgnoreFile string // Optional file of ignore regular expressions
	Sort       bool   // Order candidates by path
}

// DetectConfig represents the duplicate detector configuration
type DetectConfig struct {
	BlockSize    string // Block size, human form allowed
	Hash         string // Hash algorithm name
	DigestSize   int    // blake2b digest length in bytes (0 = default)
	Workers      int    // Concurrent size buckets
	SizeBuckets  bool   // Pre-bucket candidates by size
	MaxOpenFiles int    // Open file handles per detection run
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format string // human, fdupes, json, csv
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // 0=quiet, 1=progress, 2=pairs, 3=trace
	Debug string // Comma-separated debug flags
}

// AllConfig represents all configuration options
type AllConfig struct {
	Scan    *ScanConfig
	Detect  *DetectConfig
	Output  *OutputConfig
	Verbose *VerboseConfig
}

// overrideKeys maps each override key to its ini section
var overrideKeys = map[string]string{
	"dirs":           "scan",
	"exclude":        "scan",
	"recursive":      "scan",
	"pattern":        "scan",
	"min_size":       "scan",
	"ignore_file":    "scan",
	"sort":           "scan",
	"block_size":     "detect",
	"hash":           "detect",
	"digest_size":    "detect",
	"workers":        "detect",
	"size_buckets":   "detect",
	"max_open_files": "detect",
	"format":         "output",
	"level":          "verbose",
	"debug":          "verbose",
}

// NewConfig returns an in-memory configuration holding only defaults
func NewConfig() *Config {
	cfg := &Config{ini: ini.Empty()}
	cfg.setDefaults()
	return cfg
}

// LoadConfig loads configuration from configPath, creating a default file if it does not exist
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		configPath: configPath,
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg.ini = ini.Empty()
		cfg.setDefaults()
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		return cfg, nil
	}

	iniFile, err := ini.Load(configPath)
	if err != nil {
		return nil, ConfigErrorf("failed to load config file %s: %v", configPath, err)
	}
	cfg.ini = iniFile
	return cfg, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() {
	defaults := []struct{ section, key, value string }{
		{"scan", "dirs", "."},
		{"scan", "exclude", ""},
		{"scan", "recursive", "true"},
		{"scan", "pattern", DefaultPattern},
		{"scan", "min_size", strconv.Itoa(DefaultMinSize)},
		{"scan", "ignore_file", ""},
		{"scan", "sort", "false"},
		{"detect", "block_size", strconv.Itoa(DefaultBlockSize)},
		{"detect", "hash", DefaultHash},
		{"detect", "digest_size", "0"},
		{"detect", "workers", strconv.Itoa(DefaultWorkers)},
		{"detect", "size_buckets", "true"},
		{"detect", "max_open_files", strconv.Itoa(DefaultMaxOpenFiles)},
		{"output", "format", DefaultFormat},
		{"verbose", "level", "0"},
		{"verbose", "debug", ""},
	}
	for _, d := range defaults {
		c.ini.Section(d.section).Key(d.key).SetValue(d.value)
	}
}

// GetScanConfig returns the scanner configuration
func (c *Config) GetScanConfig() *ScanConfig {
	scanConfig := &ScanConfig{
		Dirs:      ".",
		Recursive: true,
		Pattern:   DefaultPattern,
		MinSize:   strconv.Itoa(DefaultMinSize),
	}

	if c.ini.HasSection("scan") {
		section := c.ini.Section("scan")
		if section.HasKey("dirs") {
			scanConfig.Dirs = section.Key("dirs").String()
		}
		if section.HasKey("exclude") {
			scanConfig.Exclude = section.Key("exclude").String()
		}
		if section.HasKey("recursive") {
			if recursive, err := section.Key("recursive").Bool(); err == nil {
				scanConfig.Recursive = recursive
			}
		}
		if section.HasKey("pattern") {
			scanConfig.Pattern = section.Key("pattern").String()
		}
		if section.HasKey("min_size") {
			scanConfig.MinSize = section.Key("min_size").String()
		}
		if section.HasKey("ignore_file") {
			scanConfig.IgnoreFile = section.Key("ignore_file").String()
		}
		if section.HasKey("sort") {
			if sortPaths, err := section.Key("sort").Bool(); err == nil {
				scanConfig.Sort = sortPaths
			}
		}
	}

	return scanConfig
}

// GetDetectConfig returns the detector configuration
func (c *Config) GetDetectConfig() *DetectConfig {
	detectConfig := &DetectConfig{
		BlockSize:    strconv.Itoa(DefaultBlockSize),
		Hash:         DefaultHash,
		Workers:      DefaultWorkers,
		SizeBuckets:  true,
		MaxOpenFiles: DefaultMaxOpenFiles,
	}

	if c.ini.HasSection("detect") {
		section := c.ini.Section("detect")
		if section.HasKey("block_size") {
			detectConfig.BlockSize = section.Key("block_size").String()
		}
		if section.HasKey("hash") {
			detectConfig.Hash = section.Key("hash").String()
		}
		if section.HasKey("digest_size") {
			if size, err := section.Key("digest_size").Int(); err == nil {
				detectConfig.DigestSize = size
			}
		}
		if section.HasKey("workers") {
			if workers, err := section.Key("workers").Int(); err == nil {
				detectConfig.Workers = workers
			}
		}
		if section.HasKey("size_buckets") {
			if buckets, err := section.Key("size_buckets").Bool(); err == nil {
				detectConfig.SizeBuckets = buckets
			}
		}
		if section.HasKey("max_open_files") {
			if maxOpen, err := section.Key("max_open_files").Int(); err == nil {
				detectConfig.MaxOpenFiles = maxOpen
			}
		}
	}

	return detectConfig
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	outputConfig := &OutputConfig{Format: DefaultFormat}
	if c.ini.HasSection("output") {
		section := c.ini.Section("output")
		if section.HasKey("format") {
			outputConfig.Format = section.Key("format").String()
		}
	}
	return outputConfig
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{}
	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
		if section.HasKey("debug") {
			verboseConfig.Debug = section.Key("debug").String()
		}
	}
	return verboseConfig
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Scan:    c.GetScanConfig(),
		Detect:  c.GetDetectConfig(),
		Output:  c.GetOutputConfig(),
		Verbose: c.GetVerboseConfig(),
	}
}

// Set stores value under an override key such as "hash" or "block_size"
func (c *Config) Set(key, value string) error {
	section, ok := overrideKeys[key]
	if !ok {
		return ConfigErrorf("unsupported config key '%s' (supported: %s)", key, strings.Join(supportedOverrideKeys(), ", "))
	}
	c.ini.Section(section).Key(key).SetValue(value)
	return nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("config has no file path")
	}
	return c.ini.SaveTo(c.configPath)
}

// ApplyOverrides applies command-line overrides to the configuration
// Accepts strings like "hash:sha256", "format:json", "level:2", "block_size:64K"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return ConfigErrorf("invalid override format '%s', expected 'key:value'", override)
		}
		if err := c.Set(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])); err != nil {
			return err
		}
	}
	return nil
}

func supportedOverrideKeys() []string {
	keys := make([]string, 0, len(overrideKeys))
	for _, section := range []string{"scan", "detect", "output", "verbose"} {
		keys = append(keys, sectionKeyOrder[section]...)
	}
	return keys
}

var sectionKeyOrder = map[string][]string{
	"scan":    {"dirs", "exclude", "recursive", "pattern", "min_size", "ignore_file", "sort"},
	"detect":  {"block_size", "hash", "digest_size", "workers", "size_buckets", "max_open_files"},
	"output":  {"format"},
	"verbose": {"level", "debug"},
}

// typedKeys are the keys whose values must parse as an integer or a boolean
var typedKeys = []struct {
	section, key string
	isBool       bool
}{
	{"scan", "recursive", true},
	{"scan", "sort", true},
	{"detect", "digest_size", false},
	{"detect", "workers", false},
	{"detect", "size_buckets", true},
	{"detect", "max_open_files", false},
	{"verbose", "level", false},
}

// checkTypedKeys rejects present keys that the getters would otherwise
// replace with their default
func (c *Config) checkTypedKeys() error {
	for _, tk := range typedKeys {
		if !c.ini.HasSection(tk.section) || !c.ini.Section(tk.section).HasKey(tk.key) {
			continue
		}
		key := c.ini.Section(tk.section).Key(tk.key)
		if tk.isBool {
			if _, err := key.Bool(); err != nil {
				return ConfigErrorf("%s.%s: invalid boolean %q", tk.section, tk.key, key.String())
			}
			continue
		}
		if _, err := key.Int(); err != nil {
			return ConfigErrorf("%s.%s: invalid integer %q", tk.section, tk.key, key.String())
		}
	}
	return nil
}

// Settings resolves the configuration into validated run settings
func (c *Config) Settings() (*Settings, error) {
	if err := c.checkTypedKeys(); err != nil {
		return nil, err
	}
	all := c.GetAllConfig()

	minSize, err := ParseHumanSize(all.Scan.MinSize)
	if err != nil {
		return nil, ConfigErrorf("scan.min_size: %v", err)
	}
	blockSize, err := ParseHumanSize(all.Detect.BlockSize)
	if err != nil {
		return nil, ConfigErrorf("detect.block_size: %v", err)
	}
	if blockSize > int64(maxBlockSize) {
		return nil, ConfigErrorf("detect.block_size: %d exceeds maximum %d", blockSize, maxBlockSize)
	}

	s := &Settings{
		Roots:        SplitList(all.Scan.Dirs),
		Exclude:      SplitList(all.Scan.Exclude),
		IgnoreFile:   all.Scan.IgnoreFile,
		Recursive:    all.Scan.Recursive,
		Pattern:      all.Scan.Pattern,
		MinSize:      minSize,
		SortPaths:    all.Scan.Sort,
		BlockSize:    int(blockSize),
		Hash:         all.Detect.Hash,
		DigestSize:   all.Detect.DigestSize,
		Workers:      all.Detect.Workers,
		SizeBuckets:  all.Detect.SizeBuckets,
		MaxOpenFiles: all.Detect.MaxOpenFiles,
		Format:       all.Output.Format,
		VerboseLevel: all.Verbose.Level,
		Debug:        all.Verbose.Debug,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// maxBlockSize bounds the per-reader buffer
const maxBlockSize = 1 << 30

// Settings are the fixed inputs of one run
type Settings struct {
	Roots        []string
	Exclude      []string
	IgnoreFile   string
	Recursive    bool
	Pattern      string
	MinSize      int64
	SortPaths    bool
	BlockSize    int
	Hash         string
	DigestSize   int
	Workers      int
	SizeBuckets  bool
	MaxOpenFiles int
	Format       string
	VerboseLevel int
	Debug        string
}

// DefaultSettings returns the settings used when no configuration is given
func DefaultSettings() *Settings {
	return &Settings{
		Roots:        []string{"."},
		Recursive:    true,
		Pattern:      DefaultPattern,
		MinSize:      DefaultMinSize,
		BlockSize:    DefaultBlockSize,
		Hash:         DefaultHash,
		Workers:      DefaultWorkers,
		SizeBuckets:  true,
		MaxOpenFiles: DefaultMaxOpenFiles,
		Format:       DefaultFormat,
	}
}

// Validate checks every setting; failures are ErrConfiguration
func (s *Settings) Validate() error {
	if len(s.Roots) == 0 {
		return ConfigErrorf("no directories to scan")
	}
	if s.BlockSize <= 0 {
		return ConfigErrorf("block size must be positive, got: %d", s.BlockSize)
	}
	if s.MinSize < 0 {
		return ConfigErrorf("minimum size must not be negative, got: %d", s.MinSize)
	}
	if _, err := GetHashAlgorithmWithSize(s.Hash, s.DigestSize); err != nil {
		return err
	}
	if _, err := CompileNamePattern(s.Pattern); err != nil {
		return err
	}
	if err := ValidateOutputFormat(s.Format); err != nil {
		return err
	}
	if err := ValidateVerboseLevel(s.VerboseLevel); err != nil {
		return err
	}
	return ValidateWorkers(s.Workers)
}

// ValidateOutputFormat validates that an output format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatHuman, FormatFdupes, FormatJSON, FormatCSV:
		return nil
	default:
		return ConfigErrorf("unsupported output format: %s (supported: human, fdupes, json, csv)", format)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return ConfigErrorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}

// ValidateWorkers validates that the worker count is reasonable
func ValidateWorkers(workers int) error {
	if workers < 1 {
		return ConfigErrorf("workers must be at least 1, got: %d", workers)
	}
	if workers > 64 {
		return ConfigErrorf("workers should not exceed 64, got: %d", workers)
	}
	return nil
}
