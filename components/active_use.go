package components

import (
	"fmt"
	"math/rand/v2"

	"github.com/nicoberrocal/abilityrt/attributes"
	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/tags"
)

// UseContext is handed to ActiveUse conditions, costs, and OnUse.
type UseContext struct {
	Ability       AbilityInfo
	Attributes    attributes.WriteView
	Tags          *tags.Bag
	Collector     events.Collector
	GameplayState events.GameplayState
	LogicTime     int64
	// RNG is the seeded random source from Context.RNG, captured at apply.
	RNG *rand.Rand
}

// Condition tests whether an actor-initiated use is currently allowed.
type Condition func(ctx UseContext) (ok bool, reason string)

// Cost is one price an ActiveUse pays, in order, when used.
type Cost interface {
	CanPay(ctx UseContext) (ok bool, reason string)
	Pay(ctx UseContext)
}

// CooldownCost gates reuse behind an auto-duration "cooldown:{configId}"
// tag.
type CooldownCost struct {
	DurationMs int64
}

func cooldownTag(configID string) string { return "cooldown:" + configID }

func (c CooldownCost) CanPay(ctx UseContext) (bool, string) {
	if ctx.Tags.HasTag(cooldownTag(ctx.Ability.ConfigID)) {
		return false, "cooldown"
	}
	return true, ""
}

func (c CooldownCost) Pay(ctx UseContext) {
	ctx.Tags.AddAutoDurationTag(cooldownTag(ctx.Ability.ConfigID), c.DurationMs, ctx.LogicTime)
}

// ConsumeTagCost requires and removes N loose stacks of a tag.
type ConsumeTagCost struct {
	Tag    string
	Stacks int
}

func (c ConsumeTagCost) CanPay(ctx UseContext) (bool, string) {
	need := c.Stacks
	if need <= 0 {
		need = 1
	}
	if ctx.Tags.GetTagStacks(c.Tag) < need {
		return false, "missing_tag:" + c.Tag
	}
	return true, ""
}

func (c ConsumeTagCost) Pay(ctx UseContext) {
	ctx.Tags.RemoveLooseTag(c.Tag, c.Stacks)
}

// AddTagCost grants loose stacks of a tag as a side effect of use.
type AddTagCost struct {
	Tag    string
	Stacks int
}

func (AddTagCost) CanPay(ctx UseContext) (bool, string) { return true, "" }
func (c AddTagCost) Pay(ctx UseContext)                 { ctx.Tags.AddLooseTag(c.Tag, c.Stacks) }

// RemoveTagCost removes loose stacks of a tag as a side effect of use.
type RemoveTagCost struct {
	Tag    string
	Stacks int
}

func (RemoveTagCost) CanPay(ctx UseContext) (bool, string) { return true, "" }
func (c RemoveTagCost) Pay(ctx UseContext)                 { ctx.Tags.RemoveLooseTag(c.Tag, c.Stacks) }

// ActiveUse expresses an actor-initiated action: canUse tests conditions and cost availability; use
// pays costs in order and invokes a reaction.
type ActiveUse struct {
	Base
	Conditions []Condition
	Costs      []Cost
	OnUse      func(ctx UseContext)

	tags      *tags.Bag
	attrs     attributes.WriteView
	collector events.Collector
	ability   AbilityInfo
	rng       *rand.Rand
}

// NewActiveUse constructs an actor-initiated action component.
func NewActiveUse(conditions []Condition, costs []Cost, onUse func(ctx UseContext)) *ActiveUse {
	return &ActiveUse{Conditions: conditions, Costs: costs, OnUse: onUse}
}

func (c *ActiveUse) OnApply(ctx Context) {
	c.tags = ctx.Tags
	c.attrs = ctx.Attributes
	c.collector = ctx.Collector
	c.ability = ctx.Ability
	c.rng = ctx.RNG
}

func (c *ActiveUse) useContext(logicTime int64, state events.GameplayState) UseContext {
	return UseContext{
		Ability:       c.ability,
		Attributes:    c.attrs,
		Tags:          c.tags,
		Collector:     c.collector,
		GameplayState: state,
		LogicTime:     logicTime,
		RNG:           c.rng,
	}
}

// CanUse tests every condition then every cost, short-circuiting at the
// first failure and returning its reason.
func (c *ActiveUse) CanUse(logicTime int64, state events.GameplayState) (bool, string) {
	ucx := c.useContext(logicTime, state)
	for _, cond := range c.Conditions {
		if ok, reason := cond(ucx); !ok {
			return false, reason
		}
	}
	for _, cost := range c.Costs {
		if ok, reason := cost.CanPay(ucx); !ok {
			return false, reason
		}
	}
	return true, ""
}

// Use pays every cost in order then invokes OnUse. Fails if CanUse fails.
func (c *ActiveUse) Use(logicTime int64, state events.GameplayState) error {
	ok, reason := c.CanUse(logicTime, state)
	if !ok {
		return fmt.Errorf("cannot use ability %s: %s", c.ability.ConfigID, reason)
	}
	ucx := c.useContext(logicTime, state)
	for _, cost := range c.Costs {
		cost.Pay(ucx)
	}
	if c.OnUse != nil {
		c.OnUse(ucx)
	}
	return nil
}
