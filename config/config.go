// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// NumScoutTypes is the size of the fixed scout specialization enumeration.
const NumScoutTypes = 12

// ErrInvalid is returned when a configuration cannot produce a runnable simulation.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Field      FieldConfig      `yaml:"field"`
	Population PopulationConfig `yaml:"population"`
	Scout      ScoutConfig      `yaml:"scout"`
	Attractor  AttractorConfig  `yaml:"attractor"`
	Parallel   ParallelConfig   `yaml:"parallel"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Source     SourceConfig     `yaml:"source"`
	Stream     StreamConfig     `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// FieldConfig holds perception field dimensions.
type FieldConfig struct {
	Size int `yaml:"size"` // Side length; the field is Size x Size
}

// PopulationConfig holds the fixed scout population size.
type PopulationConfig struct {
	Total int `yaml:"total"`
}

// ScoutConfig holds the per-tick update constants and the ranges per-instance
// constants are drawn from.
type ScoutConfig struct {
	ActivationDecay float64 `yaml:"activation_decay"`
	StimulusGain    float64 `yaml:"stimulus_gain"`
	GradientForce   float64 `yaml:"gradient_force"`
	ClusterForce    float64 `yaml:"cluster_force"`
	Jitter          float64 `yaml:"jitter"`
	VelocityDamping float64 `yaml:"velocity_damping"`
	ForceGain       float64 `yaml:"force_gain"`
	Margin          float64 `yaml:"margin"`
	EnergyDecay     float64 `yaml:"energy_decay"`

	SensitivityMin   float64 `yaml:"sensitivity_min"`
	SensitivityRange float64 `yaml:"sensitivity_range"`
	ThresholdMin     float64 `yaml:"threshold_min"`
	ThresholdRange   float64 `yaml:"threshold_range"`
	EnergyMin        float64 `yaml:"energy_min"`
	EnergyRange      float64 `yaml:"energy_range"`
}

// AttractorConfig holds attractor aggregation parameters.
type AttractorConfig struct {
	DepositRate float64 `yaml:"deposit_rate"` // Deposit per unit of activation
}

// ParallelConfig holds worker pool parameters for the per-scout phase.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`    // 0 = GOMAXPROCS
	ChunkSize int `yaml:"chunk_size"` // Scouts per chunk; each chunk owns one RNG stream
	Threshold int `yaml:"threshold"`  // Below this population, run single-threaded
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int     `yaml:"stats_window"` // Ticks per window
	ActiveThreshold     float64 `yaml:"active_threshold"`
	ClusterSize         int     `yaml:"cluster_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// SourceConfig selects and tunes the frame producer.
type SourceConfig struct {
	Kind       string  `yaml:"kind"` // synthetic | dir
	Dir        string  `yaml:"dir"`
	Resize     bool    `yaml:"resize"` // Scale dir frames to the field instead of rejecting them
	NoiseScale float64 `yaml:"noise_scale"`
	TimeScale  float64 `yaml:"time_scale"`
	BlobRadius float64 `yaml:"blob_radius"`
	BlobSpeed  float64 `yaml:"blob_speed"`
}

// StreamConfig holds the websocket stats stream settings.
type StreamConfig struct {
	Addr string `yaml:"addr"` // Empty disables the stream
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScoutsPerType int     // Population.Total / NumScoutTypes
	Population    int     // ScoutsPerType * NumScoutTypes
	FieldSize32   float32 // Field.Size as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ComputeDerived calculates values derived from loaded config.
// Call again after mutating a loaded config in code.
func (c *Config) ComputeDerived() {
	c.Derived.ScoutsPerType = 0
	if c.Population.Total > 0 {
		c.Derived.ScoutsPerType = c.Population.Total / NumScoutTypes
	}
	c.Derived.Population = c.Derived.ScoutsPerType * NumScoutTypes
	c.Derived.FieldSize32 = float32(c.Field.Size)
}

// Validate rejects configurations that cannot run: an empty field or an
// empty population. Both must fail here rather than on the first tick.
func (c *Config) Validate() error {
	if c.Field.Size <= 0 {
		return fmt.Errorf("%w: field size %d must be positive", ErrInvalid, c.Field.Size)
	}
	if c.Derived.Population <= 0 {
		return fmt.Errorf("%w: population %d gives zero scouts across %d types",
			ErrInvalid, c.Population.Total, NumScoutTypes)
	}
	if c.Scout.Margin < 0 || 2*c.Scout.Margin > float64(c.Field.Size) {
		return fmt.Errorf("%w: margin %.1f does not fit field size %d", ErrInvalid, c.Scout.Margin, c.Field.Size)
	}
	if c.Parallel.ChunkSize < 0 || c.Parallel.Workers < 0 {
		return fmt.Errorf("%w: negative parallel settings", ErrInvalid)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
