// Package components implements the Ability building blocks: duration
// timer, stat modifier, tag attachment, event reactor, timeline activator,
// pre-event interceptor, and cost/condition gate.
//
// The closed core set below is a handful of concrete structs implementing
// one Component interface; any other type a host implements against the
// same interface slots in just as well — Go interfaces already give both
// monomorphized and dynamic call sites without a separate sum-type
// mechanism.
package components

import (
	"math/rand/v2"

	"github.com/nicoberrocal/abilityrt/attributes"
	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/runtime"
	"github.com/nicoberrocal/abilityrt/tags"
	"github.com/nicoberrocal/abilityrt/timeline"
)

// LifecycleState is a single component's own active/expired flag,
// independent of the owning Ability's pending/granted/expired state.
type LifecycleState int

const (
	Active LifecycleState = iota
	Expired
)

// AbilityInfo identifies the owning ability, handed to every lifecycle
// hook instead of a stored back-reference.
type AbilityInfo struct {
	ID       runtime.ID
	ConfigID string
	Owner    string
	Source   string
}

// Context is passed to OnApply/OnRemove. Expire lets a component
// cooperatively expire its ability without holding a reference to it.
// Activate lets a component start a new timeline execution instance.
type Context struct {
	Ability    AbilityInfo
	Attributes attributes.WriteView
	Tags       *tags.Bag
	Pipeline   *events.Pipeline
	Timelines  *timeline.Registry
	Collector  events.Collector
	Expire     func(reason string)
	Activate   func(cfg timeline.Config) *timeline.Instance
	Log        *runtime.Logger
	// RNG is the seeded random source (runtime.Config.NewRand) handed to
	// ActiveUse conditions and costs. The core never draws from it itself.
	RNG *rand.Rand
}

// EventContext is passed to OnEvent; it's a narrower view than Context:
// it carries no pipeline, timeline registry, or Activate hook (a component
// that starts timelines from events, like ActivateInstance, captures
// Context.Activate at apply), but it does carry the attribute/tag targets
// and the expire hook for reactive expiry.
type EventContext struct {
	Ability    AbilityInfo
	Attributes attributes.WriteView
	Tags       *tags.Bag
	Collector  events.Collector
	Expire     func(reason string)
}

// Component is the shared lifecycle every building block implements.
// Hooks that a concrete type has nothing to do for are no-ops — Base
// supplies those so each concrete component only overrides what it needs.
type Component interface {
	Initialize(ability AbilityInfo)
	OnApply(ctx Context)
	OnTick(dt int64)
	OnEvent(event events.GameEvent, ctx EventContext, state events.GameplayState) bool
	OnRemove(ctx Context)
	State() LifecycleState
}

// Base provides no-op defaults; concrete components embed it.
type Base struct {
	ability AbilityInfo
	state   LifecycleState
}

func (b *Base) Initialize(ability AbilityInfo)   { b.ability = ability }
func (b *Base) OnApply(ctx Context)               {}
func (b *Base) OnTick(dt int64)                   {}
func (b *Base) OnRemove(ctx Context)              {}
func (b *Base) State() LifecycleState             { return b.state }
func (b *Base) setExpired()                       { b.state = Expired }
func (b *Base) OnEvent(event events.GameEvent, ctx EventContext, state events.GameplayState) bool {
	return false
}
