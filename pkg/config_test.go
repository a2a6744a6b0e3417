package blockdupes

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNewConfig_Defaults(t *testing.T) {
	settings, err := NewConfig().Settings()
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}

	if !reflect.DeepEqual(settings, DefaultSettings()) {
		t.Errorf("Default config settings differ:\n got  %+v\n want %+v", settings, DefaultSettings())
	}
}

func TestLoadConfig_CreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bdupes.ini")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected default config file to be created: %v", err)
	}

	detect := cfg.GetDetectConfig()
	if detect.Hash != DefaultHash || !detect.SizeBuckets {
		t.Errorf("Unexpected detect defaults: %+v", detect)
	}
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "bdupes.ini"), `[scan]
dirs = /data, /backup
exclude = /data/tmp
recursive = false
pattern = .*\.jpg
min_size = 1KiB
sort = true

[detect]
block_size = 64K
hash = blake2b
digest_size = 16
workers = 4
size_buckets = false
max_open_files = 32

[output]
format = json

[verbose]
level = 2
debug = compare
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	s, err := cfg.Settings()
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}

	want := &Settings{
		Roots:        []string{"/data", "/backup"},
		Exclude:      []string{"/data/tmp"},
		Recursive:    false,
		Pattern:      `.*\.jpg`,
		MinSize:      1024,
		SortPaths:    true,
		BlockSize:    64000,
		Hash:         "blake2b",
		DigestSize:   16,
		Workers:      4,
		SizeBuckets:  false,
		MaxOpenFiles: 32,
		Format:       FormatJSON,
		VerboseLevel: 2,
		Debug:        "compare",
	}
	if !reflect.DeepEqual(s, want) {
		t.Errorf("Settings mismatch:\n got  %+v\n want %+v", s, want)
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "bad.ini"), "[scan\ndirs = /x\n")

	if _, err := LoadConfig(path); !IsConfigurationError(err) {
		t.Errorf("Expected configuration error, got: %v", err)
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bdupes.ini")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := cfg.Set("hash", "sha256"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := reloaded.GetDetectConfig().Hash; got != "sha256" {
		t.Errorf("Expected saved hash sha256, got %s", got)
	}

	if err := NewConfig().Save(); err == nil {
		t.Error("Expected error saving in-memory config")
	}
}

func TestConfig_ApplyOverrides(t *testing.T) {
	cfg := NewConfig()
	err := cfg.ApplyOverrides([]string{"hash:xxhash", "block_size: 8KiB", "format:csv", "dirs:/a,/b"})
	if err != nil {
		t.Fatalf("ApplyOverrides failed: %v", err)
	}

	s, err := cfg.Settings()
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if s.Hash != "xxhash" || s.BlockSize != 8192 || s.Format != FormatCSV {
		t.Errorf("Overrides not applied: %+v", s)
	}
	if !reflect.DeepEqual(s.Roots, []string{"/a", "/b"}) {
		t.Errorf("Expected roots [/a /b], got %v", s.Roots)
	}

	for _, bad := range []string{"hash", "colour:blue"} {
		if err := cfg.ApplyOverrides([]string{bad}); !IsConfigurationError(err) {
			t.Errorf("ApplyOverrides(%q): expected configuration error, got %v", bad, err)
		}
	}
}

func TestConfig_SettingsRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, value   string
		key2, value2 string
	}{
		{"block_size", "0", "", ""},
		{"block_size", "huge", "", ""},
		{"block_size", "2GiB", "", ""},
		{"min_size", "x", "", ""},
		{"hash", "whirlpool", "", ""},
		{"digest_size", "8", "hash", "blake2b"},
		{"pattern", "([", "", ""},
		{"format", "xml", "", ""},
		{"level", "7", "", ""},
		{"workers", "0", "", ""},
		{"workers", "100", "", ""},
		{"dirs", " , ", "", ""},
		{"workers", "abc", "", ""},
		{"max_open_files", "many", "", ""},
		{"digest_size", "big", "hash", "blake2b"},
		{"level", "loud", "", ""},
		{"recursive", "maybe", "", ""},
		{"sort", "perhaps", "", ""},
		{"size_buckets", "2", "", ""},
	}

	for _, tt := range tests {
		cfg := NewConfig()
		if err := cfg.Set(tt.key, tt.value); err != nil {
			t.Fatalf("Set(%s) failed: %v", tt.key, err)
		}
		if tt.key2 != "" {
			if err := cfg.Set(tt.key2, tt.value2); err != nil {
				t.Fatalf("Set(%s) failed: %v", tt.key2, err)
			}
		}
		if _, err := cfg.Settings(); !IsConfigurationError(err) {
			t.Errorf("%s=%q: expected configuration error, got %v", tt.key, tt.value, err)
		}
	}
}

func TestValidateOutputFormat(t *testing.T) {
	for _, format := range []string{"human", "fdupes", "JSON", "csv"} {
		if err := ValidateOutputFormat(format); err != nil {
			t.Errorf("ValidateOutputFormat(%s) failed: %v", format, err)
		}
	}
	if err := ValidateOutputFormat("yaml"); err == nil {
		t.Error("Expected error for yaml")
	}
}

func TestLoadConfig_InvalidTypedValue(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "bdupes.ini"), "[scan]\nrecursive = maybe\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if _, err := cfg.Settings(); !IsConfigurationError(err) {
		t.Errorf("Expected configuration error for recursive = maybe, got: %v", err)
	}

	if err := cfg.ApplyOverrides([]string{"recursive:false", "workers:abc"}); err != nil {
		t.Fatalf("ApplyOverrides failed: %v", err)
	}
	if _, err := cfg.Settings(); !IsConfigurationError(err) {
		t.Errorf("Expected configuration error for workers:abc, got: %v", err)
	}
}
