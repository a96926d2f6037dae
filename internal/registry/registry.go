// Package registry provides a global registry of playable scenes.
// Scenes register themselves in init() functions, allowing the CLI and the
// menus to discover them without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-platformer/internal/config"
)

// ErrUnknownScene is returned when a scene id is not registered.
var ErrUnknownScene = errors.New("registry: unknown scene")

// SceneInfo contains metadata about a registered scene.
type SceneInfo struct {
	ID    string
	Title string
}

// Loader reads the layout of a scene. customPath overrides the search path
// when not empty.
type Loader func(customPath string) (config.SceneConfig, error)

var (
	loaders = make(map[string]Loader)
	titles  = make(map[string]string)
	mu      sync.RWMutex
)

// Register adds a scene loader to the registry.
// Typically called from an init() function.
// Panics if a scene with the same ID is already registered.
func Register(id, title string, l Loader) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := loaders[id]; exists {
		panic(fmt.Sprintf("registry: scene %q already registered", id))
	}

	loaders[id] = l
	titles[id] = title
}

// List returns information about all registered scenes, sorted by ID.
func List() []SceneInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]SceneInfo, 0, len(loaders))
	for id := range loaders {
		result = append(result, SceneInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Load reads the layout of a registered scene.
func Load(id, customPath string) (config.SceneConfig, error) {
	mu.RLock()
	l, ok := loaders[id]
	mu.RUnlock()

	if !ok {
		return config.SceneConfig{}, fmt.Errorf("%w %q", ErrUnknownScene, id)
	}
	return l(customPath)
}

// Title returns the display title of a scene, or its id when unknown.
func Title(id string) string {
	mu.RLock()
	defer mu.RUnlock()

	if t, ok := titles[id]; ok && t != "" {
		return t
	}
	return id
}

// Exists checks if a scene with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := loaders[id]
	return ok
}
