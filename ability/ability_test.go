package ability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicoberrocal/abilityrt/attributes"
	"github.com/nicoberrocal/abilityrt/components"
	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/runtime"
	"github.com/nicoberrocal/abilityrt/tags"
	"github.com/nicoberrocal/abilityrt/timeline"
)

func testSchema() *attributes.Schema {
	return attributes.NewSchema(map[attributes.Key]attributes.Def{
		"atk": {},
	})
}

func newTestSet(t *testing.T) (*AbilitySet, *attributes.Store, *tags.Bag, events.Collector) {
	t.Helper()
	store := attributes.NewStore("actor-1", testSchema(), nil, nil)
	bag := tags.NewBag("actor-1", nil, nil)
	collector := events.NewFIFOCollector()
	pipeline := events.NewPipeline(nil)
	registry := timeline.NewRegistry()
	cfg := runtime.DefaultConfig()
	set := NewAbilitySet("actor-1", store.WriteView(), bag, pipeline, registry, collector, cfg)
	return set, store, bag, collector
}

func TestGrantAppliesEffectsAndEmitsEvent(t *testing.T) {
	set, store, _, collector := newTestSet(t)
	require.NoError(t, store.SetBase("atk", 10))

	a := New(Config{
		ConfigID:   "buff",
		Components: []components.Component{components.NewStatModifier("atk", attributes.OpAdd, 5)},
	}, "actor-1", "")

	require.NoError(t, set.Grant(a))
	assert.Equal(t, Granted, a.State())

	v, err := store.Get("atk")
	require.NoError(t, err)
	assert.Equal(t, 15.0, v)

	flushed := collector.Flush()
	require.Len(t, flushed, 1)
	assert.Equal(t, events.KindAbilityGranted, flushed[0].Kind)
}

func TestDoubleGrantRejected(t *testing.T) {
	set, _, _, _ := newTestSet(t)
	a := New(Config{ConfigID: "buff"}, "actor-1", "")
	require.NoError(t, set.Grant(a))

	err := set.Grant(a)
	assert.ErrorIs(t, err, runtime.ErrAlreadyGranted)
}

func TestRevokeRemovesModifiersAndEmitsEvent(t *testing.T) {
	set, store, _, collector := newTestSet(t)
	require.NoError(t, store.SetBase("atk", 10))

	a := New(Config{
		ConfigID:   "buff",
		Components: []components.Component{components.NewStatModifier("atk", attributes.OpAdd, 5)},
	}, "actor-1", "")
	require.NoError(t, set.Grant(a))
	collector.Flush()

	assert.True(t, set.Revoke(a.ID, "dispelled"))
	assert.Equal(t, ExpiredState, a.State())

	v, err := store.Get("atk")
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	flushed := collector.Flush()
	require.Len(t, flushed, 1)
	assert.Equal(t, events.KindAbilityRevoked, flushed[0].Kind)
}

func TestRevokeByTag(t *testing.T) {
	set, _, _, _ := newTestSet(t)
	a := New(Config{ConfigID: "stealth-field", Tags: []string{"stealth"}}, "actor-1", "")
	require.NoError(t, set.Grant(a))

	removed := set.RevokeByTag("stealth", "countered")
	assert.Equal(t, 1, removed)
	assert.False(t, set.HasAbility("stealth-field"))
}

func TestAbilitySetTickRejectsBackwardLogicTime(t *testing.T) {
	set, _, _, _ := newTestSet(t)
	require.NoError(t, set.Tick(100, 100))

	err := set.Tick(50, 50)
	assert.ErrorIs(t, err, runtime.ErrInvalidComponentConfig)
}

func TestAbilityExpiresViaTimeDuration(t *testing.T) {
	set, _, _, _ := newTestSet(t)
	a := New(Config{
		ConfigID:   "shield",
		Components: []components.Component{components.NewTimeDuration(1000)},
	}, "actor-1", "")
	require.NoError(t, set.Grant(a))

	require.NoError(t, set.Tick(1000, 1000))
	assert.False(t, set.HasAbility("shield"), "ability self-expired and was swept from the set")
}

func TestActiveUseReceivesDeterministicRNG(t *testing.T) {
	set, _, _, _ := newTestSet(t)
	var seenRNG bool
	use := components.NewActiveUse(nil, nil, func(ctx components.UseContext) {
		seenRNG = ctx.RNG != nil
	})
	a := New(Config{ConfigID: "gamble", Components: []components.Component{use}}, "actor-1", "")
	require.NoError(t, set.Grant(a))

	require.NoError(t, use.Use(0, nil))
	assert.True(t, seenRNG, "RNG is threaded from the ability set's config seed")
}

func TestParallelExecutionInstancesProgressIndependently(t *testing.T) {
	registry := timeline.NewRegistry()
	registry.Register(timeline.Asset{
		ID:              "slash",
		TotalDurationMs: 1000,
		Tags:            map[string]int64{"cast": 200, "hit": 600},
	})
	store := attributes.NewStore("actor-1", testSchema(), nil, nil)
	bag := tags.NewBag("actor-1", nil, nil)
	collector := events.NewFIFOCollector()
	pipeline := events.NewPipeline(nil)
	set := NewAbilitySet("actor-1", store.WriteView(), bag, pipeline, registry, collector, runtime.DefaultConfig())

	a := New(Config{ConfigID: "slash-ability"}, "actor-1", "")
	require.NoError(t, set.Grant(a))

	var hitCount int
	makeTagActions := func() timeline.TagActions {
		return timeline.TagActions{
			"hit": {recordingAction{fn: func() { hitCount++ }}},
		}
	}

	instA := a.ActivateNewExecutionInstance(timeline.Config{TimelineID: "slash", TagActions: makeTagActions(), GameplayState: fakeGameplayState{}, Collector: collector})

	fired := a.TickExecutions(100) // t=100 overall
	assert.Empty(t, fired)

	instB := a.ActivateNewExecutionInstance(timeline.Config{TimelineID: "slash", TagActions: makeTagActions(), GameplayState: fakeGameplayState{}, Collector: collector})

	fired = a.TickExecutions(100) // t=200 overall: A crosses cast(200), B at 100
	assert.Equal(t, []string{"cast"}, fired, "only A has fired cast; B is still at elapsed=100")

	fired = a.TickExecutions(300) // t=500: A at 500 (mid-air, pre-hit); B at 400, crosses cast(200)
	assert.ElementsMatch(t, []string{"cast"}, fired, "B fires cast; A fires nothing new between 200 and 500")

	fired = a.TickExecutions(300) // t=800: A elapsed=800 crosses hit(600); B elapsed=700 also crosses hit(600)
	assert.ElementsMatch(t, []string{"hit", "hit"}, fired, "both instances cross hit independently")
	assert.Equal(t, 2, hitCount, "hit action ran once per instance, not shared state")

	assert.Equal(t, timeline.Executing, instA.State())
	assert.Equal(t, timeline.Executing, instB.State())

	instA.Cancel()
	fired = a.TickExecutions(300)
	assert.Empty(t, fired, "cancelled instance A produces no further firings; B has no tags left and completes at total duration")
	assert.Equal(t, timeline.Cancelled, instA.State())
}

type fakeGameplayState struct{}

func (fakeGameplayState) LogicTime() int64 { return 0 }

type recordingAction struct {
	fn func()
}

func (recordingAction) Type() string { return "recording" }
func (a recordingAction) Execute(ctx timeline.ExecutionContext) error {
	a.fn()
	return nil
}

// panickyComponent panics from whichever hook panicOn names, to exercise
// the ability dispatcher's containment of a misbehaving component.
type panickyComponent struct {
	components.Base
	panicOn string
}

func (c *panickyComponent) OnApply(ctx components.Context) {
	if c.panicOn == "apply" {
		panic("boom apply")
	}
}

func (c *panickyComponent) OnTick(dt int64) {
	if c.panicOn == "tick" {
		panic("boom tick")
	}
}

func (c *panickyComponent) OnRemove(ctx components.Context) {
	if c.panicOn == "remove" {
		panic("boom remove")
	}
}

func (c *panickyComponent) OnEvent(event events.GameEvent, ctx components.EventContext, state events.GameplayState) bool {
	if c.panicOn == "event" {
		panic("boom event")
	}
	return false
}

func TestComponentPanicInOnTickIsContained(t *testing.T) {
	set, _, _, _ := newTestSet(t)
	a := New(Config{
		ConfigID: "flaky",
		Components: []components.Component{
			&panickyComponent{panicOn: "tick"},
			components.NewGameEvent("never", nil, func(events.GameEvent, components.EventContext) {}),
		},
	}, "actor-1", "")
	require.NoError(t, set.Grant(a))

	require.NotPanics(t, func() {
		a.Tick(100)
	})
	assert.Equal(t, Granted, a.State(), "a panicking component does not force the ability to expire")
}

func TestComponentPanicInOnEventIsContained(t *testing.T) {
	set, _, _, _ := newTestSet(t)
	var reacted bool
	a := New(Config{
		ConfigID: "flaky",
		Components: []components.Component{
			&panickyComponent{panicOn: "event"},
			components.NewGameEvent("damage", nil, func(events.GameEvent, components.EventContext) { reacted = true }),
		},
	}, "actor-1", "")
	require.NoError(t, set.Grant(a))

	var claimed []string
	require.NotPanics(t, func() {
		claimed = a.ReceiveEvent(events.GameEvent{Kind: "damage"}, nil)
	})
	assert.True(t, reacted, "components after the panicking one still run")
	assert.Contains(t, claimed, "GameEvent")
	assert.Equal(t, Granted, a.State())
}

func TestComponentPanicInOnApplyAndOnRemoveIsContained(t *testing.T) {
	set, _, _, _ := newTestSet(t)
	a := New(Config{
		ConfigID:   "flaky",
		Components: []components.Component{&panickyComponent{panicOn: "apply"}},
	}, "actor-1", "")

	require.NotPanics(t, func() {
		require.NoError(t, set.Grant(a))
	})
	assert.Equal(t, Granted, a.State())

	b := New(Config{
		ConfigID:   "flaky-remove",
		Components: []components.Component{&panickyComponent{panicOn: "remove"}},
	}, "actor-1", "")
	require.NoError(t, set.Grant(b))

	require.NotPanics(t, func() {
		assert.True(t, set.Revoke(b.ID, "dispelled"))
	})
	assert.Equal(t, ExpiredState, b.State())
}

func TestIdempotentReApplyIsNoOp(t *testing.T) {
	set, store, _, _ := newTestSet(t)
	require.NoError(t, store.SetBase("atk", 10))

	a := New(Config{
		ConfigID:   "buff",
		Components: []components.Component{components.NewStatModifier("atk", attributes.OpAdd, 5)},
	}, "actor-1", "")
	require.NoError(t, set.Grant(a))

	v, err := store.Get("atk")
	require.NoError(t, err)
	assert.Equal(t, 15.0, v)

	a.ApplyEffects() // second call: no-op except a logged warning

	v, err = store.Get("atk")
	require.NoError(t, err)
	assert.Equal(t, 15.0, v, "re-applying without an intervening remove does not double the modifier")
	assert.Len(t, store.ModifiersBySource(a.ID.String()), 1, "no duplicate modifier was registered")
}

func TestExpireReasonPersistsFirstCallWins(t *testing.T) {
	a := New(Config{ConfigID: "shield"}, "actor-1", "")
	a.bind(environment{log: runtime.NopLogger()}, runtime.NopLogger())

	a.Expire("time_duration")
	assert.Equal(t, "time_duration", a.ExpireReason())

	a.Expire("dispelled")
	assert.Equal(t, "time_duration", a.ExpireReason(), "first expire reason wins over a later call")
	assert.Equal(t, ExpiredState, a.State())
}

func TestGetComponentGeneric(t *testing.T) {
	a := New(Config{
		ConfigID:   "buff",
		Components: []components.Component{components.NewStatModifier("atk", attributes.OpAdd, 5)},
	}, "actor-1", "")

	mod, ok := GetComponent[*components.StatModifier](a)
	require.True(t, ok)
	assert.Equal(t, attributes.Key("atk"), mod.Attribute)

	_, ok = GetComponent[*components.Tag](a)
	assert.False(t, ok)
}
