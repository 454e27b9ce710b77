package attributes

import (
	"sort"

	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/runtime"
)

// ReadView is the read-only façade distributed to consumers that must not
// mutate the store.
type ReadView interface {
	Get(key Key) (float64, error)
}

// WriteView is the modifier target — the only sanctioned mutation path.
// Components receive a WriteView through their apply/remove context, never
// a pointer to the Store itself.
type WriteView interface {
	SetBase(key Key, value float64) error
	AddModifier(spec ModifierSpec) (runtime.ID, error)
	RemoveModifier(id runtime.ID) bool
	RemoveModifiersBySource(source string) int
}

// Store holds one actor's attribute values and modifier layers.
type Store struct {
	actorID   string
	schema    *Schema
	base      map[Key]float64
	modifiers map[Key][]Modifier
	current   map[Key]float64

	overrides map[string]bool // EmitChangedEventsPerAttribute override, by string(key)
	sink      events.Collector
	log       *runtime.Logger
}

// NewStore constructs an empty store for one actor against a shared schema.
func NewStore(actorID string, schema *Schema, sink events.Collector, log *runtime.Logger) *Store {
	if log == nil {
		log = runtime.NopLogger()
	}
	return &Store{
		actorID:   actorID,
		schema:    schema,
		base:      map[Key]float64{},
		modifiers: map[Key][]Modifier{},
		current:   map[Key]float64{},
		sink:      sink,
		log:       log,
	}
}

// SetEmitOverrides installs the per-attribute emit-event overrides from
// runtime.Config.EmitChangedEventsPerAttribute.
func (s *Store) SetEmitOverrides(overrides map[string]bool) {
	s.overrides = overrides
}

// ActorID returns the owning actor's id.
func (s *Store) ActorID() string { return s.actorID }

// Get computes an attribute's current value: (base + sum(adds)) *
// product(1 + multiply value), clamped per schema. A multiply modifier's
// Value is a fractional bonus: 0.5 scales by 1.5.
func (s *Store) Get(key Key) (float64, error) {
	if !s.schema.Has(key) {
		return 0, runtime.Wrapf(runtime.ErrUnknownAttribute, "%s", key)
	}
	return s.compute(key), nil
}

func (s *Store) compute(key Key) float64 {
	base := s.base[key]
	var addSum float64
	mulProduct := 1.0
	for _, m := range s.modifiers[key] {
		switch m.Operation {
		case OpAdd:
			addSum += m.Value
		case OpMultiply:
			mulProduct *= 1 + m.Value
		}
	}
	value := (base + addSum) * mulProduct

	d, _ := s.schema.def(key)
	if d.DependsOn != "" {
		depValue, hasDep := s.current[d.DependsOn]
		if !hasDep {
			depValue = s.compute(d.DependsOn)
		}
		value = s.schema.clamp(key, value, depValue, true)
	} else {
		value = s.schema.clamp(key, value, 0, false)
	}
	return value
}

// SetBase sets an attribute's base value, recomputing and emitting a
// change event if the current value moved. Fails with SchemaMissing if no
// schema is registered at all, UnknownAttribute if the key isn't declared.
func (s *Store) SetBase(key Key, value float64) error {
	if s.schema == nil {
		return runtime.Wrapf(runtime.ErrSchemaMissing, "setBase(%s)", key)
	}
	if !s.schema.Has(key) {
		return runtime.Wrapf(runtime.ErrUnknownAttribute, "%s", key)
	}
	s.base[key] = value
	s.recompute(key)
	return nil
}

// AddModifier registers a new layered modifier and recomputes the target
// attribute and any dependents. The clamp re-fires on every write, not
// deferred to read.
func (s *Store) AddModifier(spec ModifierSpec) (runtime.ID, error) {
	if s.schema == nil {
		return runtime.ID{}, runtime.Wrapf(runtime.ErrSchemaMissing, "addModifier(%s)", spec.Attribute)
	}
	if !s.schema.Has(spec.Attribute) {
		return runtime.ID{}, runtime.Wrapf(runtime.ErrUnknownAttribute, "%s", spec.Attribute)
	}
	id := runtime.NewID()
	s.modifiers[spec.Attribute] = append(s.modifiers[spec.Attribute], Modifier{
		ID:        id,
		Attribute: spec.Attribute,
		Source:    spec.Source,
		Operation: spec.Operation,
		Value:     spec.Value,
	})
	s.recompute(spec.Attribute)
	s.log.Debugf("attributes", "actor=%s addModifier id=%s attr=%s source=%s", s.actorID, id, spec.Attribute, spec.Source)
	return id, nil
}

// RemoveModifier removes a single modifier by id. Returns false if it
// wasn't found — removal of a missing modifier is not an error.
func (s *Store) RemoveModifier(id runtime.ID) bool {
	for key, mods := range s.modifiers {
		for i, m := range mods {
			if m.ID == id {
				s.modifiers[key] = append(mods[:i], mods[i+1:]...)
				s.recompute(key)
				return true
			}
		}
	}
	return false
}

// RemoveModifiersBySource removes every modifier whose Source matches,
// typically a revoked ability's id. Returns the count removed.
func (s *Store) RemoveModifiersBySource(source string) int {
	removed := 0
	keys := make([]Key, 0, len(s.modifiers))
	for key := range s.modifiers {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] }) // deterministic iteration
	for _, key := range keys {
		mods := s.modifiers[key]
		out := mods[:0]
		changed := false
		for _, m := range mods {
			if m.Source == source {
				removed++
				changed = true
				continue
			}
			out = append(out, m)
		}
		s.modifiers[key] = out
		if changed {
			s.recompute(key)
		}
	}
	return removed
}

// ModifiersBySource returns a snapshot of modifiers currently attributed
// to source, useful for tests asserting the cleanup-on-revoke property.
func (s *Store) ModifiersBySource(source string) []Modifier {
	var out []Modifier
	keys := make([]Key, 0, len(s.modifiers))
	for key := range s.modifiers {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, key := range keys {
		for _, m := range s.modifiers[key] {
			if m.Source == source {
				out = append(out, m)
			}
		}
	}
	return out
}

// recompute refreshes key's cached current value, emits attribute_changed
// if it moved and the key isn't silent, then cascades to dependents.
func (s *Store) recompute(key Key) {
	old, had := s.current[key]
	next := s.compute(key)
	s.current[key] = next

	if (!had || old != next) && s.sink != nil && s.shouldEmit(key) {
		s.sink.Push(events.NewAttributeChanged(s.actorID, string(key), old, next))
	}

	for _, dep := range s.schema.dependents[key] {
		s.recompute(dep)
	}
}

func (s *Store) shouldEmit(key Key) bool {
	if s.overrides != nil {
		if v, ok := s.overrides[string(key)]; ok {
			return v
		}
	}
	d, _ := s.schema.def(key)
	return !d.Silent
}

// View types implementing the ReadView/WriteView façades.

type readView struct{ s *Store }

func (r readView) Get(key Key) (float64, error) { return r.s.Get(key) }

// ReadView returns a read-only façade onto this store.
func (s *Store) ReadView() ReadView { return readView{s} }

type writeView struct{ s *Store }

func (w writeView) SetBase(key Key, value float64) error                 { return w.s.SetBase(key, value) }
func (w writeView) AddModifier(spec ModifierSpec) (runtime.ID, error)     { return w.s.AddModifier(spec) }
func (w writeView) RemoveModifier(id runtime.ID) bool                    { return w.s.RemoveModifier(id) }
func (w writeView) RemoveModifiersBySource(source string) int            { return w.s.RemoveModifiersBySource(source) }

// WriteView returns the modifier-target façade onto this store.
func (s *Store) WriteView() WriteView { return writeView{s} }
