package config

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed defaults/*.yaml defaults/scenes/*.yaml
var defaultFS embed.FS

// DefaultGameConfig returns the built-in tuning used when no YAML can be read.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Physics: PhysicsConfig{
			Gravity:        0.45,
			MinPenetration: 0.01,
			TickRate:       60,
		},
		Player: PlayerConfig{
			Width:            80,
			Height:           106,
			JumpVelocity:     12.5,
			MoveVelocity:     5.33,
			AttackWindowMs:   500,
			DamageCooldownMs: 1000,
			KillReward:       10,
			CoyoteFrames:     1,
			KeyReleaseFrames: 30,
		},
		Enemy: EnemyConfig{
			Width:               82,
			Height:              108,
			MoveVelocity:        1.67,
			RestoreJumpVelocity: 1.2,
			FallThreshold:       0.5,
			AnimationMs:         500,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "pills",
				MaxAt: 30,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 0.8,
			},
		},
	}
}

// GetDefaultYAML returns an embedded default document such as "game.yaml" or
// "scenes/pharmacy.yaml", or nil when there is none.
func GetDefaultYAML(name string) []byte {
	data, err := defaultFS.ReadFile(path.Join("defaults", name))
	if err != nil {
		return nil
	}
	return data
}

// DefaultSceneIDs lists the scenes shipped with the binary.
func DefaultSceneIDs() []string {
	entries, err := fs.ReadDir(defaultFS, "defaults/scenes")
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if name := e.Name(); strings.HasSuffix(name, ".yaml") {
			ids = append(ids, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(ids)
	return ids
}
