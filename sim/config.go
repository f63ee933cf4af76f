package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable of the transportation core. Values load from a
// YAML file and individual fields can be overridden by flags in main.
type Config struct {
	GridWidth  int   `yaml:"grid_width"`
	GridHeight int   `yaml:"grid_height"`
	Seed       int64 `yaml:"seed"`

	// TickMillis is the real-time interval between simulation ticks when the
	// engine free-runs; tests drive Tick directly and ignore it.
	TickMillis int `yaml:"tick_millis"`

	SpawnRate   float64 `yaml:"spawn_rate"` // probability of a new vehicle per tick
	MaxVehicles int     `yaml:"max_vehicles"`

	PathCacheCapacity int `yaml:"path_cache_capacity"`
	RebuildInterval   int `yaml:"rebuild_interval_ticks"`

	CommuteInterval       int     `yaml:"commute_interval_ticks"` // ticks between daily cycles
	CommuteBudget         int     `yaml:"commute_budget_ticks"`   // per-commuter tick budget
	CommuteSpeed          float64 `yaml:"commute_speed"`          // path nodes per tick
	CongestionThreshold   int     `yaml:"congestion_threshold"`   // commuters per edge before slowdown
	CongestionCeiling     int     `yaml:"congestion_ceiling"`     // commuters per edge for full slowdown
	CongestionSlowdownCap float64 `yaml:"congestion_slowdown_cap"`

	ListenAddr string `yaml:"listen_addr"`
}

// DefaultConfig returns the baked-in defaults.
func DefaultConfig() Config {
	return Config{
		GridWidth:             64,
		GridHeight:            64,
		Seed:                  1,
		TickMillis:            100,
		SpawnRate:             0.3,
		MaxVehicles:           120,
		PathCacheCapacity:     DefaultPathCacheCapacity,
		RebuildInterval:       30,
		CommuteInterval:       600,
		CommuteBudget:         200,
		CommuteSpeed:          0.5,
		CongestionThreshold:   3,
		CongestionCeiling:     10,
		CongestionSlowdownCap: 0.6,
		ListenAddr:            ":8080",
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path keeps
// the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.GridWidth <= 0 || c.GridHeight <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", c.GridWidth, c.GridHeight)
	}
	if c.SpawnRate < 0 || c.SpawnRate > 1 {
		return fmt.Errorf("spawn_rate must be in [0,1], got %v", c.SpawnRate)
	}
	if c.CongestionCeiling <= c.CongestionThreshold {
		return fmt.Errorf("congestion_ceiling (%d) must exceed congestion_threshold (%d)",
			c.CongestionCeiling, c.CongestionThreshold)
	}
	if c.CongestionSlowdownCap < 0 || c.CongestionSlowdownCap >= 1 {
		return fmt.Errorf("congestion_slowdown_cap must be in [0,1), got %v", c.CongestionSlowdownCap)
	}
	return nil
}
