package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Simulation.DT <= 0 {
		t.Errorf("Simulation.DT = %v, want > 0 from embedded defaults", cfg.Simulation.DT)
	}
	if cfg.Prey.N <= 0 {
		t.Errorf("Prey.N = %v, want > 0 from embedded defaults", cfg.Prey.N)
	}
}

func TestLoadOverlayOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	overlay := []byte("Prey:\n  N: 7\n")
	if err := os.WriteFile(path, overlay, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) failed: %v", path, err)
	}
	if cfg.Prey.N != 7 {
		t.Errorf("Prey.N = %v, want overridden to 7", cfg.Prey.N)
	}
	if cfg.Simulation.DT <= 0 {
		t.Errorf("Simulation.DT = %v, want default value preserved", cfg.Simulation.DT)
	}
}

func TestValidateRejectsNonPositiveDT(t *testing.T) {
	cfg := &Config{Simulation: SimulationConfig{DT: 0}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for Simulation.DT <= 0")
	}
}

func TestValidateRejectsHeadlessWithoutTmax(t *testing.T) {
	cfg := &Config{
		Simulation: SimulationConfig{DT: 0.1, Tmax: 0},
		GUI:        GUIConfig{Headless: true},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a headless run with no finite Tmax")
	}
}

func TestValidateAcceptsHeadlessWithFiniteTmax(t *testing.T) {
	cfg := &Config{
		Simulation: SimulationConfig{DT: 0.1, Tmax: 100},
		GUI:        GUIConfig{Headless: true},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Cfg() before Init() should panic")
		}
	}()
	global = nil
	Cfg()
}

func TestInitInstallsGlobal(t *testing.T) {
	defer func() { global = nil }()
	if err := Init(""); err != nil {
		t.Fatalf("Init(\"\") failed: %v", err)
	}
	if Cfg() == nil {
		t.Error("Cfg() after Init() should return a non-nil config")
	}
}
