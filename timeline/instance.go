package timeline

import (
	"sort"

	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/runtime"
)

// State is an ExecutionInstance's lifecycle stage.
type State int

const (
	Executing State = iota
	Completed
	Cancelled
)

// tagOffset pairs a tag name with its static offset, sorted ascending so
// firing order is deterministic and non-decreasing.
type tagOffset struct {
	tag    string
	offset int64
}

// Instance is a live playback of an Asset. Two instances of the same
// timeline progress independently; nothing here is shared between
// instances except the read-only Asset and TagActions.
type Instance struct {
	ID         runtime.ID
	Asset      Asset
	TagActions TagActions

	eventChain    []events.GameEvent
	gameplayState events.GameplayState
	collector     events.Collector
	ability       AbilityRef

	ordered []tagOffset
	elapsed int64
	fired   map[string]bool
	state   State
	missing bool

	log *runtime.Logger
}

// Config bundles what the Ability needs to supply when activating a new
// instance.
type Config struct {
	TimelineID    string
	TagActions    TagActions
	EventChain    []events.GameEvent
	GameplayState events.GameplayState
	Collector     events.Collector
	Ability       AbilityRef
}

// New creates an ExecutionInstance by looking up TimelineID in registry.
// If the asset is missing, the instance is created Executing but the very
// next Tick call marks it Completed with no firings — this is a host
// misconfiguration, not a fatal error.
func New(registry *Registry, cfg Config, log *runtime.Logger) *Instance {
	if log == nil {
		log = runtime.NopLogger()
	}
	asset, ok := registry.Get(cfg.TimelineID)
	inst := &Instance{
		ID:            runtime.NewID(),
		Asset:         asset,
		TagActions:    cfg.TagActions,
		eventChain:    cfg.EventChain,
		gameplayState: cfg.GameplayState,
		collector:     cfg.Collector,
		ability:       cfg.Ability,
		fired:         map[string]bool{},
		state:         Executing,
		log:           log,
	}
	if !ok {
		inst.missing = true
		log.Warnf("timeline", "timeline asset %q missing from registry; instance %s will complete with no firings", cfg.TimelineID, inst.ID)
		return inst
	}
	inst.ordered = make([]tagOffset, 0, len(asset.Tags))
	for tag, offset := range asset.Tags {
		inst.ordered = append(inst.ordered, tagOffset{tag: tag, offset: offset})
	}
	sort.Slice(inst.ordered, func(i, j int) bool {
		if inst.ordered[i].offset != inst.ordered[j].offset {
			return inst.ordered[i].offset < inst.ordered[j].offset
		}
		return inst.ordered[i].tag < inst.ordered[j].tag
	})
	return inst
}

// State reports the instance's current lifecycle stage.
func (inst *Instance) State() State { return inst.state }

// Elapsed reports total elapsed time.
func (inst *Instance) Elapsed() int64 { return inst.elapsed }

// Cancel flips the instance to Cancelled; subsequent ticks are no-ops and
// already-fired actions are not reverted.
func (inst *Instance) Cancel() {
	if inst.state == Executing {
		inst.state = Cancelled
	}
}

// Tick advances the instance by dt ms, firing any tags whose offset falls
// in (previousElapsed, newElapsed], executing each fired tag's resolved
// actions in ascending offset order. Returns the tags that newly fired
// this call and the first action error encountered, if any; later actions
// still run even after an earlier one errors. A missing asset completes
// immediately with no firings. Ticking a non-Executing instance is a
// no-op.
func (inst *Instance) Tick(dt int64) ([]string, error) {
	if inst.state != Executing {
		return nil, nil
	}
	if inst.missing {
		inst.state = Completed
		return nil, nil
	}

	prevElapsed := inst.elapsed
	inst.elapsed += dt

	var fired []string
	var firstErr error
	for _, to := range inst.ordered {
		if inst.fired[to.tag] {
			continue
		}
		fires := prevElapsed < to.offset && to.offset <= inst.elapsed
		if to.offset == 0 && inst.Asset.InclusiveZero && prevElapsed == 0 {
			fires = true
		}
		if !fires {
			continue
		}
		inst.fired[to.tag] = true
		fired = append(fired, to.tag)

		execCtx := ExecutionContext{
			EventChain:    inst.eventChain,
			GameplayState: inst.gameplayState,
			Collector:     inst.collector,
			Ability:       inst.ability,
			Execution:     ExecutionRef{TimelineID: inst.Asset.ID, CurrentTag: to.tag},
		}
		for _, action := range inst.TagActions.resolve(to.tag) {
			if err := action.Execute(execCtx); err != nil {
				inst.log.Errorf("timeline", "action %s for tag %q on instance %s failed: %v", action.Type(), to.tag, inst.ID, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}

	if inst.elapsed >= inst.Asset.TotalDurationMs {
		inst.state = Completed
	}
	return fired, firstErr
}