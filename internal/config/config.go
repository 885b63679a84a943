package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game      GameConfig      `toml:"game"`
	Carrier   CarrierConfig   `toml:"carrier"`
	Generator GeneratorConfig `toml:"generator"`
	Recycler  RecyclerConfig  `toml:"recycler"`
	Vehicle   VehicleConfig   `toml:"vehicle"`
	Motion    MotionConfig    `toml:"motion"`
	Data      DataConfig      `toml:"data"`
	Scripting ScriptingConfig `toml:"scripting"`
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
}

type GameConfig struct {
	Name     string   `toml:"name"`
	TickRate Duration `toml:"tick_rate"`
}

// CarrierConfig tunes stack placement and the drain loop.
type CarrierConfig struct {
	BackwardOffset  float64  `toml:"backward_offset"`
	UpwardOffset    float64  `toml:"upward_offset"`
	DrainPeriod     Duration `toml:"drain_period"`
	CollectDuration Duration `toml:"collect_duration"` // arc / reposition tween length
	JumpPower       float64  `toml:"jump_power"`
	RotateDuration  Duration `toml:"rotate_duration"`
}

type GeneratorConfig struct {
	Interval        Duration `toml:"interval"`
	HeightOffset    float64  `toml:"height_offset"`
	HandoffInterval Duration `toml:"handoff_interval"`
}

type RecyclerConfig struct {
	FlightDuration Duration `toml:"flight_duration"`
}

type VehicleConfig struct {
	MoveSpeed         float64 `toml:"move_speed"`
	RotationSpeed     float64 `toml:"rotation_speed"`
	FollowDistance    float64 `toml:"follow_distance"`
	FollowLerpSpeed   float64 `toml:"follow_lerp_speed"`
	FollowerRotSpeed  float64 `toml:"follower_rotate_speed"`
	MinRecordDistance float64 `toml:"min_record_distance"`
}

type MotionConfig struct {
	MoveSpeed         float64 `toml:"move_speed"`
	RotationSpeed     float64 `toml:"rotation_speed"`
	MinSwipeDistance  float64 `toml:"min_swipe_distance"`
	UseCameraRelative bool    `toml:"use_camera_relative"`
}

type DataConfig struct {
	Catalog string `toml:"catalog"`
	Scene   string `toml:"scene"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

type DatabaseConfig struct {
	Driver          string   `toml:"driver"` // "sqlite" or "postgres"; empty disables the ledger
	DSN             string   `toml:"dsn"`
	MaxOpenConns    int      `toml:"max_open_conns"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
	FlushEvery      int      `toml:"flush_every"` // ticks between ledger flushes
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // empty logs to stderr
}

// Duration decodes TOML strings such as "150ms" or "1.5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the game loop cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Game.TickRate.Duration <= 0:
		return fmt.Errorf("game.tick_rate must be positive")
	case c.Carrier.DrainPeriod.Duration <= 0:
		return fmt.Errorf("carrier.drain_period must be positive")
	case c.Generator.Interval.Duration <= 0:
		return fmt.Errorf("generator.interval must be positive")
	case c.Generator.HandoffInterval.Duration <= 0:
		return fmt.Errorf("generator.handoff_interval must be positive")
	case c.Vehicle.FollowDistance <= 0:
		return fmt.Errorf("vehicle.follow_distance must be positive")
	}
	switch c.Database.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver %q not supported", c.Database.Driver)
	}
	return nil
}

// Default returns the tuning used by the original scene.
func Default() *Config {
	return &Config{
		Game: GameConfig{
			Name:     "stackyard",
			TickRate: Duration{20 * time.Millisecond},
		},
		Carrier: CarrierConfig{
			BackwardOffset:  0.5,
			UpwardOffset:    0.5,
			DrainPeriod:     Duration{150 * time.Millisecond},
			CollectDuration: Duration{500 * time.Millisecond},
			JumpPower:       1.0,
			RotateDuration:  Duration{200 * time.Millisecond},
		},
		Generator: GeneratorConfig{
			Interval:        Duration{1500 * time.Millisecond},
			HeightOffset:    0.65,
			HandoffInterval: Duration{850 * time.Millisecond},
		},
		Recycler: RecyclerConfig{
			FlightDuration: Duration{500 * time.Millisecond},
		},
		Vehicle: VehicleConfig{
			MoveSpeed:         5,
			RotationSpeed:     10,
			FollowDistance:    1.0,
			FollowLerpSpeed:   10,
			FollowerRotSpeed:  20,
			MinRecordDistance: 0.01,
		},
		Motion: MotionConfig{
			MoveSpeed:         5,
			RotationSpeed:     10,
			MinSwipeDistance:  10,
			UseCameraRelative: true,
		},
		Data: DataConfig{
			Catalog: "data/yaml/catalog.yaml",
			Scene:   "data/yaml/scene.yaml",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "stackyard.db",
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: Duration{30 * time.Minute},
			FlushEvery:      50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
