package ability

import (
	"math/rand/v2"
	"sort"

	"github.com/nicoberrocal/abilityrt/attributes"
	"github.com/nicoberrocal/abilityrt/components"
	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/runtime"
	"github.com/nicoberrocal/abilityrt/tags"
	"github.com/nicoberrocal/abilityrt/timeline"
)

// AbilitySet is the per-actor bag of granted abilities. It
// implements events.PostReceiver so a pipeline can deliver post-phase
// events to it directly via RegisterReceiver.
type AbilitySet struct {
	actorID string

	abilities []*Ability
	tagsBag   *tags.Bag
	attrs     attributes.WriteView
	pipeline  *events.Pipeline
	registry  *timeline.Registry
	collector events.Collector
	cfg       runtime.Config
	rng       *rand.Rand
	log       *runtime.Logger

	lastLogicTime int64
	haveTicked    bool

	onGranted func(*Ability)
	onRevoked func(*Ability, string)
}

// NewAbilitySet constructs the owning container for one actor's abilities.
func NewAbilitySet(
	actorID string,
	attrs attributes.WriteView,
	tagsBag *tags.Bag,
	pipeline *events.Pipeline,
	registry *timeline.Registry,
	collector events.Collector,
	cfg runtime.Config,
) *AbilitySet {
	return &AbilitySet{
		actorID:   actorID,
		tagsBag:   tagsBag,
		attrs:     attrs,
		pipeline:  pipeline,
		registry:  registry,
		collector: collector,
		cfg:       cfg,
		rng:       cfg.NewRand(),
		log:       cfg.Logger(),
	}
}

// ActorID implements events.PostReceiver.
func (s *AbilitySet) ActorID() string { return s.actorID }

// OnGranted installs a callback invoked after an ability is granted.
func (s *AbilitySet) OnGranted(fn func(*Ability)) { s.onGranted = fn }

// OnRevoked installs a callback invoked after an ability is revoked.
func (s *AbilitySet) OnRevoked(fn func(*Ability, string)) { s.onRevoked = fn }

// Grant binds the environment and applies a, pushing an ability_granted
// event to the collector. Granting an id already present in this set
// fails with ErrAlreadyGranted rather than silently duplicating effects.
func (s *AbilitySet) Grant(a *Ability) error {
	if _, ok := s.FindByID(a.ID); ok {
		return runtime.Wrapf(runtime.ErrAlreadyGranted, "actor=%s ability=%s", s.actorID, a.ID)
	}
	a.bind(environment{
		attrs:     s.attrs,
		tagsBag:   s.tagsBag,
		pipeline:  s.pipeline,
		registry:  s.registry,
		collector: s.collector,
		rng:       s.rng,
	}, s.log)
	s.abilities = append(s.abilities, a)
	a.ApplyEffects()
	a.state = Granted
	if s.collector != nil {
		s.collector.Push(events.NewAbilityGranted(s.actorID, a.ID.String(), a.ConfigID))
	}
	if s.onGranted != nil {
		s.onGranted(a)
	}
	return nil
}

// revoke is the shared teardown path: remove effects, drop attribute
// modifiers by source, cancel executions, emit ability_revoked.
func (s *AbilitySet) revoke(a *Ability, reason string) {
	a.Expire(reason)
	s.attrs.RemoveModifiersBySource(a.ID.String())
	if s.collector != nil {
		s.collector.Push(events.NewAbilityRevoked(s.actorID, a.ID.String(), a.ConfigID, reason))
	}
	if s.onRevoked != nil {
		s.onRevoked(a, reason)
	}
}

// Revoke removes one ability by id. Returns false if not found.
func (s *AbilitySet) Revoke(abilityID runtime.ID, reason string) bool {
	for i, a := range s.abilities {
		if a.ID == abilityID {
			s.revoke(a, reason)
			s.abilities = append(s.abilities[:i], s.abilities[i+1:]...)
			return true
		}
	}
	return false
}

// RevokeByConfigID removes every ability with the given config id,
// returning the count removed.
func (s *AbilitySet) RevokeByConfigID(configID, reason string) int {
	kept := s.abilities[:0]
	removed := 0
	for _, a := range s.abilities {
		if a.ConfigID == configID {
			s.revoke(a, reason)
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.abilities = kept
	return removed
}

// RevokeByTag removes every ability whose Tag component carries tag,
// returning the count removed.
func (s *AbilitySet) RevokeByTag(tag, reason string) int {
	kept := s.abilities[:0]
	removed := 0
	for _, a := range s.abilities {
		if abilityOwnsTag(a, tag) {
			s.revoke(a, reason)
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.abilities = kept
	return removed
}

func abilityOwnsTag(a *Ability, tag string) bool {
	tc, ok := GetComponent[*components.Tag](a)
	if !ok {
		return false
	}
	for _, owned := range tc.Tags {
		if owned == tag {
			return true
		}
	}
	return false
}

// FindByID returns the ability with the given id, if granted.
func (s *AbilitySet) FindByID(id runtime.ID) (*Ability, bool) {
	for _, a := range s.abilities {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// FindByConfigID returns every currently granted ability with configID.
func (s *AbilitySet) FindByConfigID(configID string) []*Ability {
	var out []*Ability
	for _, a := range s.abilities {
		if a.ConfigID == configID {
			out = append(out, a)
		}
	}
	return out
}

// HasAbility reports whether any granted ability has the given config id.
func (s *AbilitySet) HasAbility(configID string) bool {
	for _, a := range s.abilities {
		if a.ConfigID == configID {
			return true
		}
	}
	return false
}

// Abilities returns a snapshot of all currently granted abilities.
func (s *AbilitySet) Abilities() []*Ability {
	return append([]*Ability(nil), s.abilities...)
}

// Tick advances tag expiry and every ability by dt, sweeping abilities that
// self-expired this tick. In DeterministicMode, a logicTime that moves
// backward relative to the previous call is rejected.
func (s *AbilitySet) Tick(dt int64, logicTime int64) error {
	if s.cfg.DeterministicMode && s.haveTicked && logicTime < s.lastLogicTime {
		return runtime.Wrapf(runtime.ErrInvalidComponentConfig, "actor=%s logicTime moved backward: %d -> %d", s.actorID, s.lastLogicTime, logicTime)
	}
	s.lastLogicTime = logicTime
	s.haveTicked = true

	s.tagsBag.Tick(logicTime)

	kept := s.abilities[:0]
	for _, a := range s.abilities {
		a.Tick(dt)
		if a.State() == ExpiredState {
			s.attrs.RemoveModifiersBySource(a.ID.String())
			continue
		}
		kept = append(kept, a)
	}
	s.abilities = kept
	return nil
}

// TickExecutions advances every ability's execution instances and returns
// the union (sorted, de-duplicated) of tags fired this call.
func (s *AbilitySet) TickExecutions(dt int64) []string {
	seen := map[string]bool{}
	for _, a := range s.abilities {
		for _, t := range a.TickExecutions(dt) {
			seen[t] = true
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ReceiveEvent implements events.PostReceiver: dispatch to every granted
// ability and union the claimed component-type names.
func (s *AbilitySet) ReceiveEvent(event events.GameEvent, state events.GameplayState) []string {
	seen := map[string]bool{}
	var out []string
	for _, a := range s.abilities {
		for _, t := range a.ReceiveEvent(event, state) {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
