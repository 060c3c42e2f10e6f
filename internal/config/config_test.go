package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "jcdp.conf")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
# a comment
time_to_solve = 2.5
usable_threads=4
matrix_free = false
chain_min_length=3
chain_max_length = 6
chain_seed = 99
chain_min_dim=2
chain_max_dim=16
available_memory = 1024
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Config{
		TimeToSolve:     2500 * time.Millisecond,
		UsableThreads:   4,
		AvailableMemory: 1024,
		MatrixFree:      false,
		InnerScheduler:  "bnb",
		ChainMinLength:  3,
		ChainMaxLength:  6,
		ChainSeed:       99,
		ChainMinDim:     2,
		ChainMaxDim:     16,
		ChainsPerLength: 1,
	}
	if cfg != want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoadKeepsDefaultsForOmittedKeys(t *testing.T) {
	path := writeTempConfig(t, "chain_seed = 5\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := DefaultConfig()
	if cfg.TimeToSolve != def.TimeToSolve || cfg.MatrixFree != def.MatrixFree {
		t.Errorf("Load() should start from DefaultConfig for omitted keys, got %+v", cfg)
	}
	if cfg.ChainSeed != 5 {
		t.Errorf("ChainSeed = %d, want 5", cfg.ChainSeed)
	}
}

func TestLoadOverridesInnerScheduler(t *testing.T) {
	path := writeTempConfig(t, "inner_scheduler = annealing\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InnerScheduler != "annealing" {
		t.Errorf("InnerScheduler = %q, want %q", cfg.InnerScheduler, "annealing")
	}
}

func TestLoadRejectsUnrecognisedInnerScheduler(t *testing.T) {
	path := writeTempConfig(t, "inner_scheduler = quantum\n")
	if _, err := Load(path); err == nil {
		t.Errorf("Load should reject an unrecognised inner_scheduler value")
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeTempConfig(t, "not_a_real_key = 1\n")
	if _, err := Load(path); err == nil {
		t.Errorf("Load should reject an unrecognised key")
	}
}

func TestLoadRejectsMissingEquals(t *testing.T) {
	path := writeTempConfig(t, "chain_seed 5\n")
	if _, err := Load(path); err == nil {
		t.Errorf("Load should reject a line with no '='")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.conf")); err == nil {
		t.Errorf("Load should error on a nonexistent path")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"negative time", func(c *Config) { c.TimeToSolve = -1 }, true},
		{"negative threads", func(c *Config) { c.UsableThreads = -1 }, true},
		{"negative memory", func(c *Config) { c.AvailableMemory = -1 }, true},
		{"zero min length", func(c *Config) { c.ChainMinLength = 0 }, true},
		{"max below min length", func(c *Config) { c.ChainMaxLength = c.ChainMinLength - 1 }, true},
		{"zero min dim", func(c *Config) { c.ChainMinDim = 0 }, true},
		{"max below min dim", func(c *Config) { c.ChainMaxDim = c.ChainMinDim - 1 }, true},
		{"unrecognised inner scheduler", func(c *Config) { c.InnerScheduler = "quantum" }, true},
		{"annealing inner scheduler ok", func(c *Config) { c.InnerScheduler = "annealing" }, false},
		{"zero chains per length", func(c *Config) { c.ChainsPerLength = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
