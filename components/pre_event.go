package components

import (
	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/runtime"
)

// PreEvent registers a pre-phase handler on apply and unregisters it on
// remove. Ownership is keyed by (eventKind, ability id).
type PreEvent struct {
	Base
	EventKind string
	Filter    func(events.GameEvent) bool
	Handler   events.PreHandlerFunc

	unregister func()
	handlerID  runtime.ID
}

// NewPreEvent constructs a pre-phase interceptor component.
func NewPreEvent(eventKind string, filter func(events.GameEvent) bool, handler events.PreHandlerFunc) *PreEvent {
	return &PreEvent{EventKind: eventKind, Filter: filter, Handler: handler}
}

func (c *PreEvent) OnApply(ctx Context) {
	id, unregister := ctx.Pipeline.RegisterPreHandler(events.PreHandlerSpec{
		EventKind: c.EventKind,
		OwnerID:   ctx.Ability.Owner,
		AbilityID: ctx.Ability.ID,
		ConfigID:  ctx.Ability.ConfigID,
		Filter:    c.Filter,
		Handler:   c.Handler,
	})
	c.handlerID = id
	c.unregister = unregister
}

func (c *PreEvent) OnRemove(ctx Context) {
	if c.unregister != nil {
		c.unregister()
		c.unregister = nil
	}
}
