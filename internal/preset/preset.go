// Package preset holds the named image presets served by the pipeline.
//
// A preset pairs transform options with optional engine overrides. Presets
// are registered at startup and read without locking afterwards; the
// registry must be fully populated before the first request is served.
package preset

import (
	"errors"
	"fmt"
	"maps"
	"sort"

	"github.com/ironsheep/image-glide/internal/transform"
)

// Defaults applied when a preset leaves the format or quality empty.
const (
	DefaultFormat  = transform.FormatProgressiveJPEG
	DefaultQuality = 75
)

// ErrNotFound is returned by Get for an unregistered preset name.
var ErrNotFound = errors.New("preset not found")

// Preset is a named transform plus engine overrides.
type Preset struct {
	Name string

	// Transform is the registered option map with fm and q defaulted.
	Transform map[string]any

	// EngineOverride is merged over the server configuration when the
	// preset is rendered. Keys here win on collision.
	EngineOverride map[string]any

	// Params is the validated form of Transform.
	Params transform.Params
}

// Registry maps preset names to presets. Lookups are exact.
type Registry struct {
	presets map[string]Preset
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{presets: make(map[string]Preset)}
}

// Register stores a preset under name, replacing any earlier registration.
// Empty or zero fm and q are replaced by DefaultFormat and DefaultQuality.
// Options that fail validation are rejected so misconfiguration surfaces at
// startup.
func (r *Registry) Register(name string, transformOpts, engineOverride map[string]any) error {
	if name == "" {
		return fmt.Errorf("register preset: empty name")
	}

	opts := maps.Clone(transformOpts)
	if opts == nil {
		opts = make(map[string]any)
	}
	if isEmpty(opts["fm"]) {
		opts["fm"] = DefaultFormat
	}
	if isEmpty(opts["q"]) {
		opts["q"] = DefaultQuality
	}

	params, err := transform.Parse(opts)
	if err != nil {
		return fmt.Errorf("register preset %q: %w", name, err)
	}

	override := maps.Clone(engineOverride)
	if override == nil {
		override = make(map[string]any)
	}

	r.presets[name] = Preset{
		Name:           name,
		Transform:      opts,
		EngineOverride: override,
		Params:         params,
	}
	return nil
}

// Exists reports whether a preset is registered under name.
func (r *Registry) Exists(name string) bool {
	_, ok := r.presets[name]
	return ok
}

// Get returns the preset registered under name.
func (r *Registry) Get(name string) (Preset, error) {
	p, ok := r.presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p, nil
}

// Names returns the registered preset names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.presets))
	for n := range r.presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// isEmpty mirrors the loose "falsy" check used for fm and q: missing, nil,
// empty string, zero and false all count as unset.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == "" || t == "0"
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	case bool:
		return !t
	}
	return false
}
