// Package config provides YAML-based game configuration loading and
// difficulty management for the platformer.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// GameConfig contains the tuning shared by every scene.
type GameConfig struct {
	Physics    PhysicsConfig    `yaml:"physics"`
	Player     PlayerConfig     `yaml:"player"`
	Enemy      EnemyConfig      `yaml:"enemy"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// PhysicsConfig defines engine-wide physics parameters in world units per tick.
type PhysicsConfig struct {
	Gravity        float64 `yaml:"gravity"`
	MinPenetration float64 `yaml:"min_penetration"` // Overlap every axis must exceed to collide
	TickRate       int     `yaml:"tick_rate"`
}

// PlayerConfig defines player parameters.
type PlayerConfig struct {
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	JumpVelocity     float64 `yaml:"jump_velocity"`
	MoveVelocity     float64 `yaml:"move_velocity"`
	AttackWindowMs   int     `yaml:"attack_window_ms"`
	DamageCooldownMs int     `yaml:"damage_cooldown_ms"`
	KillReward       int     `yaml:"kill_reward"`        // Pills granted for an enemy kill
	CoyoteFrames     int     `yaml:"coyote_frames"`      // Frames a jump is still allowed after leaving ground
	KeyReleaseFrames int     `yaml:"key_release_frames"` // Terminal hosts: frames without repeat before a key-up
}

// EnemyConfig defines enemy parameters.
type EnemyConfig struct {
	Width               float64 `yaml:"width"`
	Height              float64 `yaml:"height"`
	MoveVelocity        float64 `yaml:"move_velocity"`
	RestoreJumpVelocity float64 `yaml:"restore_jump_velocity"`
	FallThreshold       float64 `yaml:"fall_threshold"` // Falling faster than this makes the enemy hop back
	AnimationMs         int     `yaml:"animation_ms"`
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over a run.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "pills", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Pills/frames at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // Multiplier added to enemy speed at max difficulty
}

// Validate reports every setting that would break the simulation.
func (c GameConfig) Validate() error {
	var errs []error
	if c.Physics.Gravity < 0 {
		errs = append(errs, fmt.Errorf("physics.gravity must not be negative, got %v", c.Physics.Gravity))
	}
	if c.Physics.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("physics.tick_rate must be positive, got %d", c.Physics.TickRate))
	}
	if c.Player.Width <= 0 || c.Player.Height <= 0 {
		errs = append(errs, errors.New("player width and height must be positive"))
	}
	if c.Enemy.Width <= 0 || c.Enemy.Height <= 0 {
		errs = append(errs, errors.New("enemy width and height must be positive"))
	}
	switch c.Difficulty.Progression.Type {
	case "", "pills", "time", "none":
	default:
		errs = append(errs, fmt.Errorf("difficulty.progression.type %q is not one of pills, time, none", c.Difficulty.Progression.Type))
	}
	return errors.Join(errs...)
}

// TilesetConfig describes the sprite sheet as named regions of glyph art.
type TilesetConfig struct {
	Width   float64        `yaml:"width"`
	Height  float64        `yaml:"height"`
	Regions []RegionConfig `yaml:"regions"`
}

// RegionConfig is one named rectangle of the tileset.
type RegionConfig struct {
	Name    string            `yaml:"name"`
	X       float64           `yaml:"x"`
	Y       float64           `yaml:"y"`
	W       float64           `yaml:"w"`
	H       float64           `yaml:"h"`
	Color   string            `yaml:"color"`
	Palette map[string]string `yaml:"palette"` // Glyph -> color overrides
	Art     []string          `yaml:"art"`
}

// SceneConfig is a level layout.
type SceneConfig struct {
	ID            string         `yaml:"id"`
	Title         string         `yaml:"title"`
	World         SizeConfig     `yaml:"world"`
	RequiredPills int            `yaml:"required_pills"`
	Backdrop      BackdropConfig `yaml:"backdrop"`
	Player        PointConfig    `yaml:"player"`
	Door          PointConfig    `yaml:"door"`
	Enemies       []PointConfig  `yaml:"enemies"`
	Walls         []RunConfig    `yaml:"walls"`
	Pills         []RunConfig    `yaml:"pills"`
}

// SizeConfig is a width and height in world units.
type SizeConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PointConfig is a top-left position in world units.
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// RunConfig places Count objects in a horizontal row starting at (X, Y).
// Each object starts where the previous one's sprite ends.
type RunConfig struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Count int     `yaml:"count"`
}

// BackdropConfig is the art stretched over the whole world behind every object.
type BackdropConfig struct {
	Color     string   `yaml:"color"`
	Fill      string   `yaml:"fill"`
	FillColor string   `yaml:"fill_color"`
	Art       []string `yaml:"art"`
}

// Validate checks that the layout can be assembled.
func (s SceneConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(s.ID) == "" {
		errs = append(errs, errors.New("scene id is required"))
	}
	if s.World.Width <= 0 || s.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("scene %q: world size must be positive", s.ID))
	}
	if s.RequiredPills < 0 {
		errs = append(errs, fmt.Errorf("scene %q: required_pills must not be negative", s.ID))
	}
	for i, run := range append(append([]RunConfig{}, s.Walls...), s.Pills...) {
		if run.Count < 0 {
			errs = append(errs, fmt.Errorf("scene %q: run %d has negative count", s.ID, i))
		}
	}
	return errors.Join(errs...)
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. An empty name selects normal.
func ParsePreset(name string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (easy, normal, hard, fixed)", name)
	}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *GameConfig, preset DifficultyPreset) {
	if IsFixedPreset(preset) {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust how forgiving enemy contact is
	switch preset {
	case DifficultyEasy:
		cfg.Player.DamageCooldownMs = 1500
		cfg.Player.AttackWindowMs = 700
	case DifficultyHard:
		cfg.Player.DamageCooldownMs = 700
		cfg.Player.AttackWindowMs = 350
	}
}
