// Package ability implements the Ability and AbilitySet lifecycle: a
// granted capability composed of an immutable set of components, and the
// per-actor container that grants/revokes/ticks them.
package ability

import (
	"math/rand/v2"
	"reflect"

	"github.com/nicoberrocal/abilityrt/attributes"
	"github.com/nicoberrocal/abilityrt/components"
	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/runtime"
	"github.com/nicoberrocal/abilityrt/tags"
	"github.com/nicoberrocal/abilityrt/timeline"
)

// LifecycleState progresses pending -> granted -> expired and never
// backward.
type LifecycleState int

const (
	Pending LifecycleState = iota
	Granted
	ExpiredState
)

// Config is what a host constructs to grant a new ability.
type Config struct {
	ConfigID    string
	Components  []components.Component
	DisplayName string
	// Tags, if set, attaches these as component-owned tags for the
	// ability's own lifetime — equivalent to including a components.Tag in
	// Components, offered as a convenience field.
	Tags []string
}

// environment bundles everything an Ability needs to build lifecycle
// contexts; supplied once by the owning AbilitySet at grant time.
type environment struct {
	attrs     attributes.WriteView
	tagsBag   *tags.Bag
	pipeline  *events.Pipeline
	registry  *timeline.Registry
	collector events.Collector
	rng       *rand.Rand
	log       *runtime.Logger
}

// Ability is a granted capability on an actor: an immutable component set
// after construction, plus the execution instances it has spawned.
type Ability struct {
	ID          runtime.ID
	ConfigID    string
	Owner       string
	Source      string
	DisplayName string

	state        LifecycleState
	expireReason string
	applied      bool

	comps     []components.Component
	instances []*timeline.Instance

	env environment
	log *runtime.Logger
}

// New constructs a pending Ability. Source defaults to owner when empty.
func New(cfg Config, owner, source string) *Ability {
	if source == "" {
		source = owner
	}
	comps := cfg.Components
	if len(cfg.Tags) > 0 {
		comps = append(append([]components.Component(nil), comps...), components.NewTag(cfg.Tags...))
	}
	a := &Ability{
		ID:          runtime.NewID(),
		ConfigID:    cfg.ConfigID,
		Owner:       owner,
		Source:      source,
		DisplayName: cfg.DisplayName,
		comps:       comps,
		state:       Pending,
	}
	info := components.AbilityInfo{ID: a.ID, ConfigID: a.ConfigID, Owner: a.Owner, Source: a.Source}
	for _, c := range a.comps {
		c.Initialize(info)
	}
	return a
}

// State reports the ability's lifecycle stage.
func (a *Ability) State() LifecycleState { return a.state }

// ExpireReason reports the reason recorded on first transition to
// expired; empty if still granted/pending.
func (a *Ability) ExpireReason() string { return a.expireReason }

func (a *Ability) info() components.AbilityInfo {
	return components.AbilityInfo{ID: a.ID, ConfigID: a.ConfigID, Owner: a.Owner, Source: a.Source}
}

func (a *Ability) applyContext() components.Context {
	return components.Context{
		Ability:    a.info(),
		Attributes: a.env.attrs,
		Tags:       a.env.tagsBag,
		Pipeline:   a.env.pipeline,
		Timelines:  a.env.registry,
		Collector:  a.env.collector,
		Expire:     a.Expire,
		Activate:   a.ActivateNewExecutionInstance,
		Log:        a.log,
		RNG:        a.env.rng,
	}
}

func (a *Ability) eventContext() components.EventContext {
	return components.EventContext{
		Ability:    a.info(),
		Attributes: a.env.attrs,
		Tags:       a.env.tagsBag,
		Collector:  a.env.collector,
		Expire:     a.Expire,
	}
}

// bind attaches the environment the ability needs from its AbilitySet;
// called once by AbilitySet.Grant before ApplyEffects.
func (a *Ability) bind(env environment, log *runtime.Logger) {
	a.env = env
	a.log = log
}

// ApplyEffects invokes onApply on every component. Idempotent against
// re-apply: a second call is a no-op after logging a warning.
func (a *Ability) ApplyEffects() {
	if a.applied {
		a.log.Warnf("ability", "ability %s (%s) re-applied; ignoring", a.ID, a.ConfigID)
		return
	}
	a.applied = true
	ctx := a.applyContext()
	for _, c := range a.comps {
		a.safeOnApply(c, ctx)
	}
}

// RemoveEffects invokes onRemove on every component. Safe to call even if
// never applied.
func (a *Ability) RemoveEffects() {
	if !a.applied {
		return
	}
	ctx := a.applyContext()
	for _, c := range a.comps {
		a.safeOnRemove(c, ctx)
	}
	a.applied = false
}

// safeOnApply, safeOnRemove, safeOnTick, and safeOnEvent contain a
// misbehaving component's panic: logged with {componentType, abilityId,
// event.kind?} via a.log.Errorf, then the dispatch loop continues. The
// ability is not forced to expire by a runtime error inside a component
// callback.

func (a *Ability) safeOnApply(c components.Component, ctx components.Context) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Errorf("ability", "component %s panic in OnApply ability=%s: %v", componentTypeName(c), a.ID, r)
		}
	}()
	c.OnApply(ctx)
}

func (a *Ability) safeOnRemove(c components.Component, ctx components.Context) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Errorf("ability", "component %s panic in OnRemove ability=%s: %v", componentTypeName(c), a.ID, r)
		}
	}()
	c.OnRemove(ctx)
}

func (a *Ability) safeOnTick(c components.Component, dt int64) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Errorf("ability", "component %s panic in OnTick ability=%s: %v", componentTypeName(c), a.ID, r)
		}
	}()
	c.OnTick(dt)
}

func (a *Ability) safeOnEvent(c components.Component, event events.GameEvent, ctx components.EventContext, state events.GameplayState) (claimed bool) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Errorf("ability", "component %s panic in OnEvent ability=%s event=%s: %v", componentTypeName(c), a.ID, event.Kind, r)
			claimed = false
		}
	}()
	return c.OnEvent(event, ctx, state)
}

// Expire transitions the ability to ExpiredState. First-call wins: a
// second call returns without effect and the original reason is
// preserved.
func (a *Ability) Expire(reason string) {
	if a.state == ExpiredState {
		return
	}
	a.expireReason = reason
	a.CancelAllExecutions()
	a.RemoveEffects()
	a.state = ExpiredState
}

// Tick passes dt to every component, in construction order.
func (a *Ability) Tick(dt int64) {
	if a.state != Granted {
		return
	}
	for _, c := range a.comps {
		a.safeOnTick(c, dt)
	}
}

// TickExecutions advances every execution instance, pruning those that
// become completed/cancelled, and returns the tags fired this call,
// concatenated across instances with duplicates kept (in activation order
// per instance, then per tag offset order).
func (a *Ability) TickExecutions(dt int64) []string {
	var fired []string
	kept := a.instances[:0]
	for _, inst := range a.instances {
		firedNow, _ := inst.Tick(dt)
		fired = append(fired, firedNow...)
		if inst.State() == timeline.Executing {
			kept = append(kept, inst)
		}
	}
	a.instances = kept
	return fired
}

// ActivateNewExecutionInstance instantiates a new timeline playback,
// parallel-independent of any other instance on this ability.
func (a *Ability) ActivateNewExecutionInstance(cfg timeline.Config) *timeline.Instance {
	cfg.Ability = timeline.AbilityRef{ID: a.ID, ConfigID: a.ConfigID, Owner: a.Owner, Source: a.Source}
	if cfg.Collector == nil {
		cfg.Collector = a.env.collector
	}
	inst := timeline.New(a.env.registry, cfg, a.log)
	a.instances = append(a.instances, inst)
	return inst
}

// CancelAllExecutions cancels every running instance; ability expiry
// cascades here.
func (a *Ability) CancelAllExecutions() {
	for _, inst := range a.instances {
		inst.Cancel()
	}
}

// ReceiveEvent dispatches the post phase to every component, returning the
// reflect-derived type names of those that claimed the event.
func (a *Ability) ReceiveEvent(event events.GameEvent, state events.GameplayState) []string {
	if a.state != Granted {
		return nil
	}
	ctx := a.eventContext()
	var claimed []string
	for _, c := range a.comps {
		if a.safeOnEvent(c, event, ctx, state) {
			claimed = append(claimed, componentTypeName(c))
		}
	}
	return claimed
}

func componentTypeName(c components.Component) string {
	t := reflect.TypeOf(c)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// GetComponent returns the first component of concrete type T, Unity-style.
func GetComponent[T components.Component](a *Ability) (T, bool) {
	var zero T
	for _, c := range a.comps {
		if typed, ok := c.(T); ok {
			return typed, true
		}
	}
	return zero, false
}
