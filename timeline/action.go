package timeline

import (
	"sort"
	"strings"

	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/runtime"
)

// AbilityRef identifies the ability that owns an execution instance.
type AbilityRef struct {
	ID       runtime.ID
	ConfigID string
	Owner    string
	Source   string
}

// ExecutionRef identifies the running instance and current step.
type ExecutionRef struct {
	TimelineID string
	CurrentTag string
}

// ExecutionContext is handed to every action invocation.
type ExecutionContext struct {
	EventChain    []events.GameEvent
	GameplayState events.GameplayState
	Collector     events.Collector
	Ability       AbilityRef
	Execution     ExecutionRef
	Targets       []string
}

// Action is the polymorphic unit a timeline tag triggers. The core ships
// a small built-in set (see package actions); hosts may supply their own types
// implementing this interface.
type Action interface {
	Type() string
	Execute(ctx ExecutionContext) error
}

// TagActions maps a tag pattern ("exact" or "prefix_*") to the actions
// that run when a matching tag fires.
type TagActions map[string][]Action

// resolve returns the actions that should run for a fired tag, applying
// exact-over-wildcard precedence: "prefix*" matches iff tag starts with
// "prefix_" (the pattern string already includes the trailing underscore
// before the star, e.g. "hit_*").
func (ta TagActions) resolve(tag string) []Action {
	if exact, ok := ta[tag]; ok {
		return exact
	}
	var patterns []string
	for pattern := range ta {
		if matchesWildcard(pattern, tag) {
			patterns = append(patterns, pattern)
		}
	}
	if len(patterns) == 0 {
		return nil
	}
	sort.Strings(patterns)
	var out []Action
	for _, p := range patterns {
		out = append(out, ta[p]...)
	}
	return out
}

func matchesWildcard(pattern, tag string) bool {
	if !strings.HasSuffix(pattern, "*") {
		return false
	}
	prefix := pattern[:len(pattern)-1]
	return strings.HasPrefix(tag, prefix) && len(tag) > len(prefix)
}
