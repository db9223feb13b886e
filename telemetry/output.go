// Package telemetry implements the analysis observer: a dual .bin/.csv
// sampler attached to the observer chain, plus a rolling performance
// collector for the scheduler's own phase timings. Grounded on the source's
// AnalysisObserver/cvs_exporter pair, adapted from the prior per-tick
// telemetry.csv/perf.csv layout to the paired binary+CSV format and the
// unique per-run output directory §6 specifies.
package telemetry

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/murmuration/engine/config"
)

// NewRunDir creates a unique timestamp-plus-random subdirectory under root
// and copies the resolved configuration into it (§6). Returns "" and a nil
// error if root is empty (analysis disabled).
func NewRunDir(root string, cfg *config.Config) (string, error) {
	if root == "" {
		return "", nil
	}
	name := time.Now().UTC().Format("20060102T150405Z") + "-" + uuid.NewString()[:8]
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating analysis output directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling resolved config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644); err != nil {
		return "", fmt.Errorf("writing resolved config: %w", err)
	}
	return dir, nil
}

// expandHeader turns "name[k]" into "name0,name1,...,name{k-1}" and leaves
// plain column names untouched (§6's CSV header convention).
func expandHeader(cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		open := strings.IndexByte(c, '[')
		if open < 0 || !strings.HasSuffix(c, "]") {
			out = append(out, c)
			continue
		}
		base := c[:open]
		n, err := strconv.Atoi(c[open+1 : len(c)-1])
		if err != nil {
			out = append(out, c)
			continue
		}
		for i := 0; i < n; i++ {
			out = append(out, fmt.Sprintf("%s%d", base, i))
		}
	}
	return out
}

// BinCSVWriter appends little-endian f32 rows to a .bin file and mirrors
// them as comma-separated text to a sibling .csv file (§6). Rows must all
// have len(row) == len(Header).
type BinCSVWriter struct {
	Header []string

	bin *os.File
	csv *os.File
	buf [4]byte
}

// NewBinCSVWriter creates name.bin and name.csv under dir, writing the
// expanded header line to the .csv file immediately.
func NewBinCSVWriter(dir, name string, rawHeader []string) (*BinCSVWriter, error) {
	header := expandHeader(rawHeader)

	bin, err := os.Create(filepath.Join(dir, name+".bin"))
	if err != nil {
		return nil, fmt.Errorf("creating %s.bin: %w", name, err)
	}
	csvFile, err := os.Create(filepath.Join(dir, name+".csv"))
	if err != nil {
		bin.Close()
		return nil, fmt.Errorf("creating %s.csv: %w", name, err)
	}
	if _, err := csvFile.WriteString(strings.Join(header, ",") + "\n"); err != nil {
		bin.Close()
		csvFile.Close()
		return nil, fmt.Errorf("writing %s.csv header: %w", name, err)
	}
	return &BinCSVWriter{Header: header, bin: bin, csv: csvFile}, nil
}

// WriteRow appends one row to both files.
func (w *BinCSVWriter) WriteRow(row []float32) error {
	if len(row) != len(w.Header) {
		return fmt.Errorf("row has %d columns, want %d", len(row), len(w.Header))
	}
	for _, v := range row {
		binary.LittleEndian.PutUint32(w.buf[:], math.Float32bits(v))
		if _, err := w.bin.Write(w.buf[:]); err != nil {
			return fmt.Errorf("writing bin row: %w", err)
		}
	}

	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	if _, err := w.csv.WriteString(strings.Join(parts, ",") + "\n"); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}
	return nil
}

// Close flushes and closes both files.
func (w *BinCSVWriter) Close() error {
	errBin := w.bin.Close()
	errCSV := w.csv.Close()
	if errBin != nil {
		return errBin
	}
	return errCSV
}
