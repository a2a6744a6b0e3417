package blockdupes

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestBlockReader_PadsFinalBlock(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "data"), "abcdefg")

	br, err := openBlockReader(path, 3, 0)
	if err != nil {
		t.Fatalf("openBlockReader failed: %v", err)
	}
	defer br.Close()

	expected := []struct {
		block string
		n     int
	}{
		{"abc", 3},
		{"def", 3},
		{"g\x00\x00", 1},
	}
	for i, want := range expected {
		buf, n, err := br.next()
		if err != nil {
			t.Fatalf("block %d: %v", i, err)
		}
		if n != want.n {
			t.Errorf("block %d: expected %d bytes, got %d", i, want.n, n)
		}
		if !bytes.Equal(buf, []byte(want.block)) {
			t.Errorf("block %d: expected %q, got %q", i, want.block, buf)
		}
	}

	buf, n, err := br.next()
	if err != nil || n != 0 || buf != nil {
		t.Errorf("Expected clean end of file, got buf=%q n=%d err=%v", buf, n, err)
	}
	if br.offset != 7 {
		t.Errorf("Expected offset 7, got %d", br.offset)
	}
}

func TestBlockReader_ResumesAtOffset(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "data"), "0123456789")

	br, err := openBlockReader(path, 4, 8)
	if err != nil {
		t.Fatalf("openBlockReader failed: %v", err)
	}
	defer br.Close()

	buf, n, err := br.next()
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if n != 2 || !bytes.Equal(buf, []byte("89\x00\x00")) {
		t.Errorf("Expected padded tail \"89\", got %q (n=%d)", buf, n)
	}
}

func TestBlockReader_EmptyFile(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "empty"), "")

	br, err := openBlockReader(path, 4, 0)
	if err != nil {
		t.Fatalf("openBlockReader failed: %v", err)
	}
	defer br.Close()

	if _, n, err := br.next(); n != 0 || err != nil {
		t.Errorf("Expected immediate end of file, got n=%d err=%v", n, err)
	}
}

func TestBlockReader_MissingFile(t *testing.T) {
	if _, err := openBlockReader(filepath.Join(t.TempDir(), "missing"), 4, 0); err == nil {
		t.Error("Expected error opening missing file")
	}
}
