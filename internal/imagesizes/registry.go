package imagesizes

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"extmedia/internal/config"

	"gopkg.in/yaml.v3"
)

// BuiltinNames are the sizes whose dimensions come from site options.
var BuiltinNames = []string{"thumbnail", "medium", "medium_large", "large"}

// Size is a registered rendering variant.
type Size struct {
	Width  int  `json:"width" yaml:"width"`
	Height int  `json:"height" yaml:"height"`
	Crop   bool `json:"crop" yaml:"crop"`
}

type file struct {
	Sizes map[string]Size `yaml:"sizes"`
}

// Registry merges the option-backed built-in sizes with sizes registered by extensions.
type Registry struct {
	mu         sync.RWMutex
	builtin    map[string]Size
	additional map[string]Size
}

// New seeds the registry with the built-in options and the large core sizes WordPress
// registers as additional sizes.
func New(options map[string]config.SizeOption) *Registry {
	r := &Registry{
		builtin:    make(map[string]Size, len(BuiltinNames)),
		additional: map[string]Size{},
	}
	for _, name := range BuiltinNames {
		if opt, ok := options[name]; ok {
			r.builtin[name] = Size{Width: opt.Width, Height: opt.Height, Crop: opt.Crop}
		}
	}
	r.Register("1536x1536", Size{Width: 1536, Height: 1536})
	r.Register("2048x2048", Size{Width: 2048, Height: 2048})
	return r
}

// Register adds or replaces an additional size.
func (r *Registry) Register(name string, size Size) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.additional[name] = size
}

// LoadFile registers every size listed under "sizes" in a YAML file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image sizes file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse image sizes file: %w", err)
	}

	for name, size := range f.Sizes {
		if name == "" {
			continue
		}
		r.Register(name, size)
	}
	return nil
}

// All returns every registered size. A built-in name always reports its option values, even if
// an extension registered the same name.
func (r *Registry) All() map[string]Size {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sizes := make(map[string]Size, len(r.builtin)+len(r.additional))
	for name, size := range r.additional {
		sizes[name] = size
	}
	for name, size := range r.builtin {
		sizes[name] = size
	}
	return sizes
}

// Names returns the registered labels, sorted.
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
