package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	blockdupes "github.com/mattkeenan/blockdupes/pkg"
)

// cliOptions holds the raw command-line values. Only flags the user set
// override the config file.
type cliOptions struct {
	configPath string
	overrides  []string

	scanDirs   string
	exclDirs   string
	level      int
	minFSize   string
	fmask      string
	ignoreFile string
	sortPaths  bool

	blockSize  string
	hashType   string
	digestSize int
	workers    int
	maxOpen    int
	noBuckets  bool

	format  string
	output  string
	verbose int
	debug   string
}

func (o *cliOptions) register(flags *pflag.FlagSet) {
	flags.StringVarP(&o.configPath, "config", "c", "", "Configuration file (ini); created with defaults if missing")
	flags.StringArrayVar(&o.overrides, "set", nil, "Override a config key, e.g. --set hash:sha256 (repeatable)")

	flags.StringVar(&o.scanDirs, "scandirs", ".", "Comma-separated directories to scan")
	flags.StringVar(&o.exclDirs, "excldirs", "", "Comma-separated directories to exclude")
	flags.IntVar(&o.level, "level", 1, "Scan level: 1 - with subdirs, 0 - only the given directories")
	flags.StringVar(&o.minFSize, "minfsize", strconv.Itoa(blockdupes.DefaultMinSize), "Minimal file size in bytes (accepts 4K, 1MiB)")
	flags.StringVar(&o.fmask, "fmask", blockdupes.DefaultPattern, "Regular expression the whole file name must match")
	flags.StringVar(&o.ignoreFile, "ignore-file", "", "File of regular expressions for directories to skip")
	flags.BoolVar(&o.sortPaths, "sort", false, "Compare files in path order instead of directory order")

	flags.StringVar(&o.blockSize, "blocksize", strconv.Itoa(blockdupes.DefaultBlockSize), "Reading block size in bytes (accepts 4KiB, 1MiB)")
	flags.StringVar(&o.hashType, "hashtype", blockdupes.DefaultHash, "Hash algorithm: "+strings.Join(blockdupes.SupportedHashNames(), ", "))
	flags.IntVar(&o.digestSize, "digest-size", 0, "blake2b digest length in bytes (16-64, 0 for default)")
	flags.IntVar(&o.workers, "workers", blockdupes.DefaultWorkers, "Size buckets compared concurrently")
	flags.IntVar(&o.maxOpen, "max-open-files", blockdupes.DefaultMaxOpenFiles, "Open file handles kept for partially hashed files")
	flags.BoolVar(&o.noBuckets, "no-buckets", false, "Compare files of different sizes too")

	flags.StringVar(&o.format, "format", blockdupes.DefaultFormat, "Output format: human, fdupes, json, csv")
	flags.StringVarP(&o.output, "output", "o", "", "Write the report to this file instead of stdout")
	flags.CountVarP(&o.verbose, "verbose", "v", "Verbose output (repeat for more)")
	flags.StringVar(&o.debug, "debug", "", "Comma-separated debug flags: scan, compare, cache")
}

// buildSettings layers defaults, the config file, explicitly set flags and
// --set overrides, in that order of precedence
func buildSettings(cmd *cobra.Command, o *cliOptions, args []string) (*blockdupes.Settings, error) {
	cfg := blockdupes.NewConfig()
	if o.configPath != "" {
		loaded, err := blockdupes.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	set := func(flag, key, value string) error {
		if !flags.Changed(flag) {
			return nil
		}
		return cfg.Set(key, value)
	}

	if o.verbose > 3 {
		o.verbose = 3
	}

	if flags.Changed("level") {
		if o.level != 0 && o.level != 1 {
			return nil, blockdupes.ConfigErrorf("invalid scan level %d (supported: 0, 1)", o.level)
		}
		if err := cfg.Set("recursive", strconv.FormatBool(o.level == 1)); err != nil {
			return nil, err
		}
	}

	for _, s := range []struct{ flag, key, value string }{
		{"scandirs", "dirs", o.scanDirs},
		{"excldirs", "exclude", o.exclDirs},
		{"minfsize", "min_size", o.minFSize},
		{"fmask", "pattern", o.fmask},
		{"ignore-file", "ignore_file", o.ignoreFile},
		{"sort", "sort", strconv.FormatBool(o.sortPaths)},
		{"blocksize", "block_size", o.blockSize},
		{"hashtype", "hash", o.hashType},
		{"digest-size", "digest_size", strconv.Itoa(o.digestSize)},
		{"workers", "workers", strconv.Itoa(o.workers)},
		{"max-open-files", "max_open_files", strconv.Itoa(o.maxOpen)},
		{"no-buckets", "size_buckets", strconv.FormatBool(!o.noBuckets)},
		{"format", "format", o.format},
		{"verbose", "level", strconv.Itoa(o.verbose)},
		{"debug", "debug", o.debug},
	} {
		if err := set(s.flag, s.key, s.value); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyOverrides(o.overrides); err != nil {
		return nil, err
	}

	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		settings.Roots = args
	}
	return settings, nil
}
