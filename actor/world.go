package actor

import (
	"sort"

	"github.com/nicoberrocal/abilityrt/attributes"
	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/runtime"
	"github.com/nicoberrocal/abilityrt/tags"
	"github.com/nicoberrocal/abilityrt/timeline"
)

// World owns every Actor sharing one tick loop, one timeline registry, and
// one event pipeline. It implements events.GameplayState (LogicTime) and
// actions.TagBagSource (TagBag) so built-in timeline actions and pre/post
// handlers can reach any actor's tag bag without the lower packages
// importing this one.
type World struct {
	schema    *attributes.Schema
	pipeline  *events.Pipeline
	registry  *timeline.Registry
	collector events.Collector
	cfg       runtime.Config
	log       *runtime.Logger

	actors    map[string]*Actor
	logicTime int64
}

// NewWorld constructs an empty World. schema is shared read-only across
// every actor created in it: a catalog built once and referenced by every
// instance.
func NewWorld(schema *attributes.Schema, cfg runtime.Config) *World {
	log := cfg.Logger()
	collector := events.NewFIFOCollector()
	pipeline := events.NewPipeline(log)
	w := &World{
		schema:    schema,
		pipeline:  pipeline,
		registry:  timeline.NewRegistry(),
		collector: collector,
		cfg:       cfg,
		log:       log,
		actors:    map[string]*Actor{},
	}
	return w
}

// Pipeline exposes the shared event pipeline so a host can register its own
// pre handlers or routers.
func (w *World) Pipeline() *events.Pipeline { return w.pipeline }

// Timelines exposes the shared timeline registry so a host can register
// TimelineAssets before granting abilities that reference them.
func (w *World) Timelines() *timeline.Registry { return w.registry }

// Collector exposes the shared event collector for draining.
func (w *World) Collector() events.Collector { return w.collector }

// LogicTime implements events.GameplayState.
func (w *World) LogicTime() int64 { return w.logicTime }

// CreateActor builds and registers a new Actor, wiring its AbilitySet as a
// pipeline receiver.
func (w *World) CreateActor(id string) *Actor {
	a := newActor(id, w.schema, w.collector, w.pipeline, w.registry, w.cfg)
	w.actors[id] = a
	w.pipeline.RegisterReceiver(a.Abilities)
	return a
}

// RemoveActor drops an actor and unregisters it from the pipeline.
func (w *World) RemoveActor(id string) {
	delete(w.actors, id)
	w.pipeline.UnregisterReceiver(id)
}

// Actor looks up a previously created actor by id.
func (w *World) Actor(id string) (*Actor, bool) {
	a, ok := w.actors[id]
	return a, ok
}

// TagBag implements actions.TagBagSource, letting built-in timeline actions
// and component reactors reach any actor's tag bag by id.
func (w *World) TagBag(actorID string) (*tags.Bag, bool) {
	a, ok := w.actors[actorID]
	if !ok {
		return nil, false
	}
	return a.Tags, true
}

// Dispatch runs the pre/post pipeline for one event against the world's
// current logic time. It does not advance the clock; Tick does that.
func (w *World) Dispatch(event events.GameEvent) events.DispatchResult {
	return w.pipeline.Dispatch(event, w)
}

// Tick advances the world's logic clock by dt, then every actor's tag bag,
// abilities, and executions in a stable, sorted-by-id order so a
// deterministic run always visits actors in the same sequence.
func (w *World) Tick(dt int64) error {
	w.logicTime += dt
	for _, id := range w.sortedActorIDs() {
		a := w.actors[id]
		if err := a.Abilities.Tick(dt, w.logicTime); err != nil {
			return err
		}
		a.Abilities.TickExecutions(dt)
	}
	return nil
}

func (w *World) sortedActorIDs() []string {
	ids := make([]string, 0, len(w.actors))
	for id := range w.actors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
