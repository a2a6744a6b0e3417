package blockdupes

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/google/vectorio"
)

// iovMax is the number of iovecs passed to one writev call (Linux IOV_MAX)
const iovMax = 1024

// Report is the reporter's view of a run
type Report struct {
	RunID     string         `json:"run_id"`
	Algorithm string         `json:"algorithm"`
	BlockSize int            `json:"block_size"`
	Groups    []DuplicateSet `json:"groups"`
	Stats     Stats          `json:"stats"`
}

// NewReport builds a report from a result, keeping only groups with duplicates
func NewReport(r *Result) *Report {
	report := &Report{
		RunID:     uuid.NewString(),
		BlockSize: r.BlockSize,
		Groups:    r.Duplicates(),
		Stats:     r.Stats,
	}
	if r.Algorithm != nil {
		report.Algorithm = r.Algorithm.Name()
	}
	if report.Groups == nil {
		report.Groups = []DuplicateSet{}
	}
	return report
}

// WriteReport writes the report to w in the given format
func WriteReport(w io.Writer, format string, report *Report) error {
	switch strings.ToLower(format) {
	case FormatHuman:
		return writeLines(w, humanLines(report))
	case FormatFdupes:
		return writeLines(w, fdupesLines(report))
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatCSV:
		return writeCSV(w, report)
	default:
		return ConfigErrorf("unsupported output format: %s", format)
	}
}

// humanLines renders the original tool's console layout
func humanLines(report *Report) [][]byte {
	var lines [][]byte
	for _, g := range report.Groups {
		lines = append(lines, []byte("Check file: "+g.Kept.Path+":\n"))
		for _, d := range g.Duplicates {
			lines = append(lines, []byte(" - "+d.Path+"\n"))
		}
	}
	return lines
}

// fdupesLines renders each group as one path per line, groups separated by a blank line
func fdupesLines(report *Report) [][]byte {
	var lines [][]byte
	for i, g := range report.Groups {
		if i > 0 {
			lines = append(lines, []byte("\n"))
		}
		for _, p := range g.Paths() {
			lines = append(lines, []byte(p+"\n"))
		}
	}
	return lines
}

func writeCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"group", "kept", "duplicate", "size"}); err != nil {
		return err
	}
	for i, g := range report.Groups {
		for _, d := range g.Duplicates {
			record := []string{strconv.Itoa(i + 1), g.Kept.Path, d.Path, strconv.FormatInt(d.Size, 10)}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeLines writes lines to w. Files are written with writev in IOV_MAX sized batches.
func writeLines(w io.Writer, lines [][]byte) error {
	if len(lines) == 0 {
		return nil
	}
	file, ok := w.(*os.File)
	if !ok {
		for _, line := range lines {
			if _, err := w.Write(line); err != nil {
				return err
			}
		}
		return nil
	}

	for offset := 0; offset < len(lines); offset += iovMax {
		end := offset + iovMax
		if end > len(lines) {
			end = len(lines)
		}
		if err := writevLines(file, lines[offset:end]); err != nil {
			return err
		}
	}
	return nil
}

// writevLines writes one batch of non-empty lines, finishing short writes with Write
func writevLines(file *os.File, lines [][]byte) error {
	iovecs := make([]syscall.Iovec, len(lines))
	total := 0
	for i, line := range lines {
		iovecs[i].Base = &line[0]
		iovecs[i].SetLen(len(line))
		total += len(line)
	}

	nw, err := vectorio.WritevRaw(uintptr(file.Fd()), iovecs)
	if err != nil {
		return fmt.Errorf("failed to write report with vectorio: %w", err)
	}
	if nw == total {
		return nil
	}

	// Short write: resume after the last byte writev accepted
	for _, line := range lines {
		if nw >= len(line) {
			nw -= len(line)
			continue
		}
		if _, err := file.Write(line[nw:]); err != nil {
			return err
		}
		nw = 0
	}
	return nil
}
