package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalDir is the project-relative directory searched for configs.
const LocalDir = "configs"

// LoadGame loads the game tuning.
// Search order: customPath -> ~/.platformer/configs/game.yaml -> ./configs/game.yaml -> embedded default
func LoadGame(customPath string) (GameConfig, error) {
	cfg, err := load("game.yaml", customPath, DefaultGameConfig)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid game config: %w", err)
	}
	return cfg, nil
}

// LoadTileset loads the sprite sheet description.
// Search order: customPath -> ~/.platformer/configs/tileset.yaml -> ./configs/tileset.yaml -> embedded default
func LoadTileset(customPath string) (TilesetConfig, error) {
	return load("tileset.yaml", customPath, func() TilesetConfig { return TilesetConfig{} })
}

// LoadScene loads a scene layout by id.
// Search order: customPath -> ~/.platformer/configs/scenes/<id>.yaml -> ./configs/scenes/<id>.yaml -> embedded default
func LoadScene(id, customPath string) (SceneConfig, error) {
	name := filepath.Join("scenes", id+".yaml")
	cfg, err := load(name, customPath, func() SceneConfig { return SceneConfig{} })
	if err != nil {
		return cfg, err
	}
	if cfg.ID == "" {
		cfg.ID = id
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid scene %s: %w", id, err)
	}
	return cfg, nil
}

// ParseScene decodes a scene layout from YAML.
func ParseScene(data []byte) (SceneConfig, error) {
	var cfg SceneConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse scene: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// load resolves name through the search path. Documents are decoded over the
// fallback value, so a file may set only the keys it changes. A broken user or
// local file is skipped; an explicit path must be readable and valid.
func load[T any](name, customPath string, fallback func() T) (T, error) {
	cfg := fallback()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory, then local configs directory
	for _, p := range []string{userConfigPath(name), filepath.Join(LocalDir, name)} {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		fromFile := fallback()
		if err := yaml.Unmarshal(data, &fromFile); err == nil {
			return fromFile, nil
		}
	}

	// Use embedded default YAML
	data := GetDefaultYAML(filepath.ToSlash(name))
	if data == nil {
		return fallback(), fmt.Errorf("no config found for %s", name)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fallback(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	dir := UserDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "configs", filename)
}

// UserDir returns ~/.platformer, or empty if home is unavailable.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".platformer")
}
