// Package timeline implements tagged-time script playback: a TimelineAsset
// is static data, an ExecutionInstance is a live playback of it.
package timeline

// Asset is static, read-only data: an id, a total duration, and a set of
// named time offsets within it.
type Asset struct {
	ID              string
	TotalDurationMs int64
	Tags            map[string]int64 // tag name -> offset ms

	// InclusiveZero, when true, makes a tag at offset 0 fire on the first
	// tick even though previousElapsed is not strictly less than 0.
	// Default false.
	InclusiveZero bool
}

// Registry is an explicit configuration object built at host init, not a
// package-level mutable global. Hosts build one Registry and pass it to
// every AbilitySet/Ability that needs to activate timelines.
type Registry struct {
	assets map[string]Asset
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{assets: map[string]Asset{}}
}

// Register adds or replaces an asset under its id.
func (r *Registry) Register(asset Asset) {
	r.assets[asset.ID] = asset
}

// Get looks up an asset by id.
func (r *Registry) Get(id string) (Asset, bool) {
	a, ok := r.assets[id]
	return a, ok
}
