// Package actor provides the per-actor handle binding together an
// attribute store, a tag bag, and an ability set, plus a World that owns a
// population of actors and drives their shared tick loop.
//
// Grounded on players/player.go + players/game_state.go: a player/actor
// handle owning its own sub-state, addressed by id, with a separate
// per-game-state record normalized out of the handle itself.
package actor

import (
	"github.com/nicoberrocal/abilityrt/ability"
	"github.com/nicoberrocal/abilityrt/attributes"
	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/runtime"
	"github.com/nicoberrocal/abilityrt/tags"
	"github.com/nicoberrocal/abilityrt/timeline"
)

// Actor is one entity's attribute store, tag bag, and ability set.
type Actor struct {
	ID        string
	Store     *attributes.Store
	Tags      *tags.Bag
	Abilities *ability.AbilitySet
}

// newActor constructs an Actor wired against the shared collaborators a
// World provides.
func newActor(
	id string,
	schema *attributes.Schema,
	collector events.Collector,
	pipeline *events.Pipeline,
	registry *timeline.Registry,
	cfg runtime.Config,
) *Actor {
	log := cfg.Logger()
	store := attributes.NewStore(id, schema, collector, log)
	store.SetEmitOverrides(cfg.EmitChangedEventsPerAttribute)
	bag := tags.NewBag(id, collector, log)
	abilities := ability.NewAbilitySet(id, store.WriteView(), bag, pipeline, registry, collector, cfg)
	return &Actor{ID: id, Store: store, Tags: bag, Abilities: abilities}
}

// Grant grants a newly constructed ability to this actor.
func (a *Actor) Grant(ab *ability.Ability) error {
	return a.Abilities.Grant(ab)
}
