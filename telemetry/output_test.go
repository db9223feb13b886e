package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/murmuration/engine/config"
)

func TestNewRunDirEmptyRootDisablesAnalysis(t *testing.T) {
	dir, err := NewRunDir("", &config.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if dir != "" {
		t.Errorf("NewRunDir(\"\", ...) = %q, want empty", dir)
	}
}

func TestNewRunDirCreatesUniqueSubdirWithConfig(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{Prey: config.SpeciesConfig{N: 42}}

	dirA, err := NewRunDir(root, cfg)
	if err != nil {
		t.Fatal(err)
	}
	dirB, err := NewRunDir(root, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if dirA == dirB {
		t.Error("two NewRunDir calls should produce distinct directories")
	}

	if _, err := os.Stat(filepath.Join(dirA, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func TestExpandHeaderExpandsBracketedColumns(t *testing.T) {
	got := expandHeader([]string{"tick", "pos[3]", "state"})
	want := []string{"tick", "pos0", "pos1", "pos2", "state"}
	if len(got) != len(want) {
		t.Fatalf("expandHeader length = %v, want %v", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expandHeader[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExpandHeaderLeavesPlainColumnsAlone(t *testing.T) {
	got := expandHeader([]string{"a", "b"})
	if got[0] != "a" || got[1] != "b" {
		t.Errorf("expandHeader = %v, want unchanged", got)
	}
}

func TestBinCSVWriterWritesPairedFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewBinCSVWriter(dir, "sample", []string{"tick", "pos[2]"})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow([]float32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	csvData, err := os.ReadFile(filepath.Join(dir, "sample.csv"))
	if err != nil {
		t.Fatal(err)
	}
	want := "tick,pos0,pos1\n1,2,3\n"
	if string(csvData) != want {
		t.Errorf("sample.csv = %q, want %q", string(csvData), want)
	}

	binData, err := os.ReadFile(filepath.Join(dir, "sample.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(binData) != 3*4 {
		t.Errorf("sample.bin length = %v, want 12 bytes (3 float32s)", len(binData))
	}
}

func TestBinCSVWriterRejectsWrongRowWidth(t *testing.T) {
	dir := t.TempDir()
	w, err := NewBinCSVWriter(dir, "sample", []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.WriteRow([]float32{1}); err == nil {
		t.Fatal("expected an error writing a row of the wrong width")
	}
}
