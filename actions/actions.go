// Package actions provides the small built-in timeline Action set:
// ApplyTag, RemoveTag, HasTag+branch, and emit-event. Hosts are free to
// implement timeline.Action themselves for anything else.
package actions

import (
	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/tags"
	"github.com/nicoberrocal/abilityrt/timeline"
)

// TagBagSource is the capability a GameplayState may optionally implement
// so these built-ins can reach an actor's tag bag. Kept separate from
// events.GameplayState itself so that interface stays minimal.
type TagBagSource interface {
	TagBag(actorID string) (*tags.Bag, bool)
}

func targetsOf(ctx timeline.ExecutionContext) []string {
	if len(ctx.Targets) > 0 {
		return ctx.Targets
	}
	if ctx.Ability.Owner != "" {
		return []string{ctx.Ability.Owner}
	}
	return nil
}

func bagFor(ctx timeline.ExecutionContext, actorID string) (*tags.Bag, bool) {
	src, ok := ctx.GameplayState.(TagBagSource)
	if !ok {
		return nil, false
	}
	return src.TagBag(actorID)
}

// ApplyTag adds stacks of a loose tag to every resolved target.
type ApplyTag struct {
	Tag    string
	Stacks int
}

func (ApplyTag) Type() string { return "ApplyTag" }

func (a ApplyTag) Execute(ctx timeline.ExecutionContext) error {
	for _, target := range targetsOf(ctx) {
		if bag, ok := bagFor(ctx, target); ok {
			bag.AddLooseTag(a.Tag, a.Stacks)
		}
	}
	return nil
}

// RemoveTag removes stacks of a loose tag from every resolved target.
type RemoveTag struct {
	Tag    string
	Stacks int
}

func (RemoveTag) Type() string { return "RemoveTag" }

func (a RemoveTag) Execute(ctx timeline.ExecutionContext) error {
	for _, target := range targetsOf(ctx) {
		if bag, ok := bagFor(ctx, target); ok {
			bag.RemoveLooseTag(a.Tag, a.Stacks)
		}
	}
	return nil
}

// HasTag evaluates a tag's presence per target and branches. Each target
// is evaluated independently: only its own matching branch executes,
// scoped to that one target.
type HasTag struct {
	Tag  string
	Then []timeline.Action
	Else []timeline.Action
}

func (HasTag) Type() string { return "HasTag" }

func (h HasTag) Execute(ctx timeline.ExecutionContext) error {
	for _, target := range targetsOf(ctx) {
		bag, ok := bagFor(ctx, target)
		has := ok && bag.HasTag(h.Tag)
		branch := h.Else
		if has {
			branch = h.Then
		}
		subCtx := ctx
		subCtx.Targets = []string{target}
		for _, action := range branch {
			if err := action.Execute(subCtx); err != nil {
				return err
			}
		}
	}
	return nil
}

// EmitEvent pushes a GameEvent built from the execution context into the
// host's collector.
type EmitEvent struct {
	Kind    string
	Payload func(ctx timeline.ExecutionContext) map[string]any
}

func (EmitEvent) Type() string { return "EmitEvent" }

func (e EmitEvent) Execute(ctx timeline.ExecutionContext) error {
	payload := map[string]any{}
	if e.Payload != nil {
		payload = e.Payload(ctx)
	}
	ctx.Collector.Push(events.GameEvent{Kind: e.Kind, Payload: payload})
	return nil
}
