package components

import "github.com/nicoberrocal/abilityrt/events"

// Reaction is host-supplied logic invoked when a GameEvent matches a
// GameEvent component's trigger.
type Reaction func(event events.GameEvent, ctx EventContext)

// GameEvent reacts to post-phase events whose kind matches Trigger and
// (if set) pass Filter, invoking Reaction and reporting true so the
// dispatcher can include this component's type in its "claimed" list.
type GameEvent struct {
	Base
	Trigger  string
	Filter   func(events.GameEvent) bool
	Reaction Reaction
}

// NewGameEvent constructs an event-reactor component.
func NewGameEvent(trigger string, filter func(events.GameEvent) bool, reaction Reaction) *GameEvent {
	return &GameEvent{Trigger: trigger, Filter: filter, Reaction: reaction}
}

func (c *GameEvent) OnEvent(event events.GameEvent, ctx EventContext, state events.GameplayState) bool {
	if event.Kind != c.Trigger {
		return false
	}
	if c.Filter != nil && !c.Filter(event) {
		return false
	}
	if c.Reaction != nil {
		c.Reaction(event, ctx)
	}
	return true
}
