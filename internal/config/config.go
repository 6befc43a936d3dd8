// Package config loads and validates the server configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sunward.gg/internal/model"
	"sunward.gg/internal/world"
)

// Config is the full server configuration
type Config struct {
	Server     ServerConfig              `yaml:"server"`
	Storage    StorageConfig             `yaml:"storage"`
	Simulation SimulationConfig          `yaml:"simulation"`
	Placement  PlacementConfig           `yaml:"placement"`
	Materials  map[string]MaterialConfig `yaml:"materials"`
	World      WorldConfig               `yaml:"world"`
	Snapshot   SnapshotConfig            `yaml:"snapshot"`
	Admin      AdminConfig               `yaml:"admin"`
	Logging    LoggingConfig             `yaml:"logging"`
}

type ServerConfig struct {
	Addr                   string `yaml:"addr"`
	ShutdownTimeoutSeconds int    `yaml:"shutdownTimeoutSeconds"`
}

type StorageConfig struct {
	// Type selects the backend: memory, redis or sqlite
	Type   string       `yaml:"type"`
	Redis  RedisConfig  `yaml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

type RedisConfig struct {
	URL       string `yaml:"url"`
	KeyPrefix string `yaml:"keyPrefix"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type SimulationConfig struct {
	TickRateMillis               int     `yaml:"tickRateMillis"`
	ExposureCheckIntervalSeconds float64 `yaml:"exposureCheckIntervalSeconds"`
	HealthCheckIntervalSeconds   float64 `yaml:"healthCheckIntervalSeconds"`
	WarningThreshold             float64 `yaml:"warningThreshold"`
	CriticalThreshold            float64 `yaml:"criticalThreshold"`
	EnvironmentalDamageEnabled   bool    `yaml:"environmentalDamageEnabled"`
	NotificationCooldownSeconds  float64 `yaml:"notificationCooldownSeconds"`
	// ExposureDirection points from a structure toward the damage source.
	// A fixed configured vector; there is no simulated sun path.
	ExposureDirection VecConfig `yaml:"exposureDirection"`
}

type PlacementConfig struct {
	MaxStructuresPerOwner          int     `yaml:"maxStructuresPerOwner"`
	MaxPlacementDistanceFromOrigin float64 `yaml:"maxPlacementDistanceFromOrigin"`
	RateLimitWindowSeconds         float64 `yaml:"rateLimitWindowSeconds"`
	MaxActionsPerWindow            int     `yaml:"maxActionsPerWindow"`
	// DefaultMaterial is the material assigned to placements; MaterialByType
	// overrides it per structure type.
	DefaultMaterial string            `yaml:"defaultMaterial"`
	MaterialByType  map[string]string `yaml:"materialByType"`
}

type MaterialConfig struct {
	MaxHealth          float64 `yaml:"maxHealth"`
	DecayRatePerSecond float64 `yaml:"decayRatePerSecond"`
	RepairCost         int     `yaml:"repairCost"`
}

type WorldConfig struct {
	Occluders []BoxConfig `yaml:"occluders"`
}

type BoxConfig struct {
	Min VecConfig `yaml:"min"`
	Max VecConfig `yaml:"max"`
}

type VecConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type SnapshotConfig struct {
	// Path of the shutdown snapshot archive; empty disables snapshotting
	Path           string `yaml:"path"`
	RestoreOnStart bool   `yaml:"restoreOnStart"`
}

type AdminConfig struct {
	// KeyHash is the bcrypt hash of the admin key; empty disables the
	// admin endpoints
	KeyHash string `yaml:"keyHash"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the configuration file at path, or returns the defaults when
// path is empty
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a runnable single-node configuration
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:                   ":8080",
			ShutdownTimeoutSeconds: 10,
		},
		Storage: StorageConfig{
			Type: "memory",
			Redis: RedisConfig{
				URL:       "redis://localhost:6379",
				KeyPrefix: "sunward",
			},
			SQLite: SQLiteConfig{
				Path: "data/sunward.db",
			},
		},
		Simulation: SimulationConfig{
			TickRateMillis:               100,
			ExposureCheckIntervalSeconds: 1,
			HealthCheckIntervalSeconds:   1,
			WarningThreshold:             50,
			CriticalThreshold:            20,
			EnvironmentalDamageEnabled:   true,
			NotificationCooldownSeconds:  5,
			ExposureDirection:            VecConfig{X: 0.5, Y: 1, Z: 0.3},
		},
		Placement: PlacementConfig{
			MaxStructuresPerOwner:          20,
			MaxPlacementDistanceFromOrigin: 500,
			RateLimitWindowSeconds:         10,
			MaxActionsPerWindow:            5,
			DefaultMaterial:                "wood",
		},
		Materials: map[string]MaterialConfig{
			"wood":  {MaxHealth: 100, DecayRatePerSecond: 1, RepairCost: 10},
			"stone": {MaxHealth: 300, DecayRatePerSecond: 0.5, RepairCost: 25},
			"metal": {MaxHealth: 500, DecayRatePerSecond: 0.25, RepairCost: 50},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Normalize lower-cases material keys, trims names and normalizes the
// exposure direction. Called by Load before Validate.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.Storage.Type = strings.ToLower(strings.TrimSpace(c.Storage.Type))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	materials := make(map[string]MaterialConfig, len(c.Materials))
	for key, m := range c.Materials {
		materials[strings.ToLower(strings.TrimSpace(key))] = m
	}
	c.Materials = materials
	c.Placement.DefaultMaterial = strings.ToLower(strings.TrimSpace(c.Placement.DefaultMaterial))
	byType := make(map[string]string, len(c.Placement.MaterialByType))
	for t, key := range c.Placement.MaterialByType {
		byType[strings.TrimSpace(t)] = strings.ToLower(strings.TrimSpace(key))
	}
	c.Placement.MaterialByType = byType

	dir := c.ExposureDir().Normalized()
	c.Simulation.ExposureDirection = VecConfig{X: dir.X, Y: dir.Y, Z: dir.Z}
}

// Validate rejects configurations the server cannot run with
func (c Config) Validate() error {
	switch c.Storage.Type {
	case "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("storage.type must be memory, redis or sqlite, got %q", c.Storage.Type)
	}
	if c.Storage.Type == "redis" && strings.TrimSpace(c.Storage.Redis.URL) == "" {
		return fmt.Errorf("storage.redis.url must not be empty")
	}
	if c.Storage.Type == "sqlite" && strings.TrimSpace(c.Storage.SQLite.Path) == "" {
		return fmt.Errorf("storage.sqlite.path must not be empty")
	}

	if c.Simulation.TickRateMillis <= 0 {
		return fmt.Errorf("simulation.tickRateMillis must be > 0")
	}
	if c.Simulation.ExposureCheckIntervalSeconds <= 0 {
		return fmt.Errorf("simulation.exposureCheckIntervalSeconds must be > 0")
	}
	if c.Simulation.HealthCheckIntervalSeconds <= 0 {
		return fmt.Errorf("simulation.healthCheckIntervalSeconds must be > 0")
	}
	if c.Simulation.WarningThreshold < 0 || c.Simulation.CriticalThreshold < 0 {
		return fmt.Errorf("simulation thresholds must be >= 0")
	}
	if c.Simulation.CriticalThreshold > c.Simulation.WarningThreshold {
		return fmt.Errorf("simulation.criticalThreshold must not exceed warningThreshold")
	}
	if c.Simulation.NotificationCooldownSeconds < 0 {
		return fmt.Errorf("simulation.notificationCooldownSeconds must be >= 0")
	}
	if c.ExposureDir() == (model.Vec3{}) {
		return fmt.Errorf("simulation.exposureDirection must not be the zero vector")
	}

	if c.Placement.MaxStructuresPerOwner <= 0 {
		return fmt.Errorf("placement.maxStructuresPerOwner must be > 0")
	}
	if c.Placement.MaxPlacementDistanceFromOrigin <= 0 {
		return fmt.Errorf("placement.maxPlacementDistanceFromOrigin must be > 0")
	}
	if c.Placement.RateLimitWindowSeconds <= 0 {
		return fmt.Errorf("placement.rateLimitWindowSeconds must be > 0")
	}
	if c.Placement.MaxActionsPerWindow <= 0 {
		return fmt.Errorf("placement.maxActionsPerWindow must be > 0")
	}

	if len(c.Materials) == 0 {
		return fmt.Errorf("materials must not be empty")
	}
	for key, m := range c.Materials {
		if m.MaxHealth <= 0 {
			return fmt.Errorf("material %s maxHealth must be > 0", key)
		}
		if m.DecayRatePerSecond < 0 {
			return fmt.Errorf("material %s decayRatePerSecond must be >= 0", key)
		}
	}
	if _, ok := c.Materials[c.Placement.DefaultMaterial]; !ok {
		return fmt.Errorf("placement.defaultMaterial %q is not in materials", c.Placement.DefaultMaterial)
	}
	for t, key := range c.Placement.MaterialByType {
		if _, err := model.ParseStructureType(t); err != nil {
			return fmt.Errorf("placement.materialByType: unknown structure type %q", t)
		}
		if _, ok := c.Materials[key]; !ok {
			return fmt.Errorf("placement.materialByType: material %q is not in materials", key)
		}
	}

	for i, b := range c.World.Occluders {
		if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z {
			return fmt.Errorf("world.occluders[%d]: min must not exceed max", i)
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}

// MaterialTable converts the configured materials into the model table
func (c Config) MaterialTable() model.Materials {
	table := make(model.Materials, len(c.Materials))
	for key, m := range c.Materials {
		table[model.MaterialKey(key)] = model.MaterialProfile{
			Name:               key,
			MaxHealth:          m.MaxHealth,
			DecayRatePerSecond: m.DecayRatePerSecond,
			RepairCost:         m.RepairCost,
		}
	}
	return table
}

// MaterialFor returns the material assigned to new placements of the given
// structure type
func (c Config) MaterialFor(t model.StructureType) model.MaterialKey {
	if key, ok := c.Placement.MaterialByType[string(t)]; ok {
		return model.MaterialKey(key)
	}
	return model.MaterialKey(c.Placement.DefaultMaterial)
}

// StaticOccluders converts the configured world boxes into scan geometry
func (c Config) StaticOccluders() []world.AABB {
	boxes := make([]world.AABB, len(c.World.Occluders))
	for i, b := range c.World.Occluders {
		boxes[i] = world.AABB{
			Min: model.Vec3{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
			Max: model.Vec3{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
		}
	}
	return boxes
}

// ExposureDir returns the configured exposure direction as a vector
func (c Config) ExposureDir() model.Vec3 {
	d := c.Simulation.ExposureDirection
	return model.Vec3{X: d.X, Y: d.Y, Z: d.Z}
}

// Duration accessors so callers never re-derive units.

func (c Config) TickRate() time.Duration {
	return time.Duration(c.Simulation.TickRateMillis) * time.Millisecond
}

func (c Config) ExposureCheckInterval() time.Duration {
	return secondsToDuration(c.Simulation.ExposureCheckIntervalSeconds)
}

func (c Config) HealthCheckInterval() time.Duration {
	return secondsToDuration(c.Simulation.HealthCheckIntervalSeconds)
}

func (c Config) NotificationCooldown() time.Duration {
	return secondsToDuration(c.Simulation.NotificationCooldownSeconds)
}

func (c Config) RateLimitWindow() time.Duration {
	return secondsToDuration(c.Placement.RateLimitWindowSeconds)
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
