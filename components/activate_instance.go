package components

import (
	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/timeline"
)

// TriggerMode selects how a trigger list combines against one incoming
// event.
type TriggerMode int

const (
	TriggerAny TriggerMode = iota
	TriggerAll
)

// Trigger is one condition an ActivateInstance component tests an event
// against.
type Trigger struct {
	EventKind string
	Filter    func(events.GameEvent) bool
}

func (t Trigger) matches(event events.GameEvent) bool {
	if event.Kind != t.EventKind {
		return false
	}
	return t.Filter == nil || t.Filter(event)
}

// ActivateInstance starts a new timeline ExecutionInstance when an
// incoming event satisfies its trigger list.
type ActivateInstance struct {
	Base
	Triggers   []Trigger
	Mode       TriggerMode
	TimelineID string
	TagActions timeline.TagActions

	activate func(cfg timeline.Config) *timeline.Instance
}

// NewActivateInstance constructs a timeline-activator component.
func NewActivateInstance(mode TriggerMode, timelineID string, tagActions timeline.TagActions, triggers ...Trigger) *ActivateInstance {
	return &ActivateInstance{Mode: mode, TimelineID: timelineID, TagActions: tagActions, Triggers: triggers}
}

func (c *ActivateInstance) OnApply(ctx Context) {
	c.activate = ctx.Activate
}

func (c *ActivateInstance) matchesMode(event events.GameEvent) bool {
	if len(c.Triggers) == 0 {
		return false
	}
	switch c.Mode {
	case TriggerAll:
		for _, t := range c.Triggers {
			if !t.matches(event) {
				return false
			}
		}
		return true
	default: // TriggerAny
		for _, t := range c.Triggers {
			if t.matches(event) {
				return true
			}
		}
		return false
	}
}

func (c *ActivateInstance) OnEvent(event events.GameEvent, ctx EventContext, state events.GameplayState) bool {
	if !c.matchesMode(event) {
		return false
	}
	if c.activate == nil {
		return false
	}
	c.activate(timeline.Config{
		TimelineID:    c.TimelineID,
		TagActions:    c.TagActions,
		EventChain:    []events.GameEvent{event},
		GameplayState: state,
		Collector:     ctx.Collector,
		Ability: timeline.AbilityRef{
			ID:       ctx.Ability.ID,
			ConfigID: ctx.Ability.ConfigID,
			Owner:    ctx.Ability.Owner,
			Source:   ctx.Ability.Source,
		},
	})
	return true
}
