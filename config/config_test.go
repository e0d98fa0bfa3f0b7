package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Field.Size != 256 {
		t.Errorf("field size = %d, want 256", cfg.Field.Size)
	}
	if cfg.Derived.ScoutsPerType != 666 {
		t.Errorf("scouts per type = %d, want 666", cfg.Derived.ScoutsPerType)
	}
	if cfg.Derived.Population != 666*NumScoutTypes {
		t.Errorf("population = %d, want %d", cfg.Derived.Population, 666*NumScoutTypes)
	}
	if cfg.Scout.ActivationDecay != 0.9 || cfg.Scout.VelocityDamping != 0.8 {
		t.Errorf("unexpected scout constants: %+v", cfg.Scout)
	}
	if cfg.Attractor.DepositRate != 0.1 {
		t.Errorf("deposit rate = %v, want 0.1", cfg.Attractor.DepositRate)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	data := []byte("field:\n  size: 64\npopulation:\n  total: 120\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Field.Size != 64 {
		t.Errorf("field size = %d, want 64", cfg.Field.Size)
	}
	if cfg.Derived.ScoutsPerType != 10 {
		t.Errorf("scouts per type = %d, want 10", cfg.Derived.ScoutsPerType)
	}
	// Untouched keys keep their defaults
	if cfg.Scout.Margin != 5 {
		t.Errorf("margin = %v, want default 5", cfg.Scout.Margin)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero field", func(c *Config) { c.Field.Size = 0 }},
		{"negative field", func(c *Config) { c.Field.Size = -4 }},
		{"zero population", func(c *Config) { c.Population.Total = 0 }},
		{"population below type count", func(c *Config) { c.Population.Total = NumScoutTypes - 1 }},
		{"margin too wide", func(c *Config) { c.Field.Size = 8; c.Scout.Margin = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			cfg.ComputeDerived()
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Field.Size = 128

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Field.Size != 128 {
		t.Errorf("field size = %d, want 128", loaded.Field.Size)
	}
}

func TestCfgAfterInit(t *testing.T) {
	MustInit("")
	if Cfg().Field.Size <= 0 {
		t.Error("expected positive field size from global config")
	}
}
