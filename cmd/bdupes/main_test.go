package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blockdupes "github.com/mattkeenan/blockdupes/pkg"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func parseSettings(t *testing.T, args ...string) (*blockdupes.Settings, error) {
	t.Helper()
	cmd := &cobra.Command{}
	opts := &cliOptions{}
	opts.register(cmd.Flags())
	require.NoError(t, cmd.ParseFlags(args))
	return buildSettings(cmd, opts, cmd.Flags().Args())
}

func TestBuildSettings_Defaults(t *testing.T) {
	settings, err := parseSettings(t)
	require.NoError(t, err)
	assert.Equal(t, blockdupes.DefaultSettings(), settings)
}

func TestBuildSettings_Flags(t *testing.T) {
	settings, err := parseSettings(t,
		"--scandirs", "/a,/b",
		"--excldirs", "/a/tmp",
		"--level", "0",
		"--minfsize", "1KiB",
		"--fmask", `.*\.jpg`,
		"--blocksize", "64KiB",
		"--hashtype", "sha256",
		"--workers", "4",
		"--no-buckets",
		"--format", "fdupes",
		"-vv",
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"/a", "/b"}, settings.Roots)
	assert.Equal(t, []string{"/a/tmp"}, settings.Exclude)
	assert.False(t, settings.Recursive)
	assert.Equal(t, int64(1024), settings.MinSize)
	assert.Equal(t, `.*\.jpg`, settings.Pattern)
	assert.Equal(t, 65536, settings.BlockSize)
	assert.Equal(t, "sha256", settings.Hash)
	assert.Equal(t, 4, settings.Workers)
	assert.False(t, settings.SizeBuckets)
	assert.Equal(t, "fdupes", settings.Format)
	assert.Equal(t, 2, settings.VerboseLevel)
}

func TestBuildSettings_PositionalRootsReplaceScandirs(t *testing.T) {
	settings, err := parseSettings(t, "--scandirs", "/ignored", "/x,with,commas", "/y")
	require.NoError(t, err)
	assert.Equal(t, []string{"/x,with,commas", "/y"}, settings.Roots)
}

func TestBuildSettings_Precedence(t *testing.T) {
	configPath := writeFile(t, filepath.Join(t.TempDir(), "bdupes.ini"), "[detect]\nhash = xxhash\nblock_size = 512\n\n[output]\nformat = csv\n")

	settings, err := parseSettings(t, "-c", configPath, "--hashtype", "md5", "--set", "format:json")
	require.NoError(t, err)

	assert.Equal(t, "md5", settings.Hash, "flag beats config file")
	assert.Equal(t, 512, settings.BlockSize, "config file beats default")
	assert.Equal(t, "json", settings.Format, "--set beats everything")
}

func TestBuildSettings_VerboseClamped(t *testing.T) {
	settings, err := parseSettings(t, "-vvvvv")
	require.NoError(t, err)
	assert.Equal(t, 3, settings.VerboseLevel)
}

func TestBuildSettings_Errors(t *testing.T) {
	for _, args := range [][]string{
		{"--level", "2"},
		{"--hashtype", "whirlpool"},
		{"--blocksize", "0"},
		{"--set", "nonsense"},
		{"--format", "xml"},
	} {
		_, err := parseSettings(t, args...)
		assert.True(t, blockdupes.IsConfigurationError(err), "%v: got %v", args, err)
	}
}

func TestExecute_FindsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "x.txt"), "hello")
	writeFile(t, filepath.Join(dir, "b", "y.txt"), "hello")
	writeFile(t, filepath.Join(dir, "b", "z.txt"), "world")

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--format", "json", "--blocksize", "2", dir}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var report blockdupes.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	require.Len(t, report.Groups, 1)
	assert.True(t, strings.HasSuffix(report.Groups[0].Kept.Path, filepath.Join("a", "x.txt")))
	require.Len(t, report.Groups[0].Duplicates, 1)
	assert.True(t, strings.HasSuffix(report.Groups[0].Duplicates[0].Path, filepath.Join("b", "y.txt")))
}

func TestExecute_OutputFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.txt"), "same")
	writeFile(t, filepath.Join(dir, "y.txt"), "same")
	output := filepath.Join(t.TempDir(), "dupes.txt")

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--format", "fdupes", "-o", output, dir}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Empty(t, stdout.String())

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(written), "\n"))
}

func TestExecute_ConfigErrorExitCode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--hashtype", "whirlpool", t.TempDir()}, &stdout, &stderr)

	assert.Equal(t, exitConfigError, code)
	assert.Contains(t, stderr.String(), "unsupported hash algorithm")
}

func TestExecute_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--no-such-flag"}, &stdout, &stderr)
	assert.Equal(t, exitFailure, code)
}

func TestExecute_Interrupted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.txt"), "same")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := execute(ctx, []string{dir}, &stdout, &stderr)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), "interrupted")
}

func TestBuildSettings_LevelSetsRecursion(t *testing.T) {
	configPath := writeFile(t, filepath.Join(t.TempDir(), "bdupes.ini"), "[scan]\nrecursive = false\n")

	settings, err := parseSettings(t, "-c", configPath)
	require.NoError(t, err)
	assert.False(t, settings.Recursive)

	settings, err = parseSettings(t, "-c", configPath, "--level", "1")
	require.NoError(t, err)
	assert.True(t, settings.Recursive, "--level 1 overrides the config file")

	settings, err = parseSettings(t, "--level", "0")
	require.NoError(t, err)
	assert.False(t, settings.Recursive)
}
