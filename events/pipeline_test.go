package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeState struct{ logicTime int64 }

func (f fakeState) LogicTime() int64 { return f.logicTime }

type recordingReceiver struct {
	id       string
	received []GameEvent
}

func (r *recordingReceiver) ActorID() string { return r.id }
func (r *recordingReceiver) ReceiveEvent(event GameEvent, state GameplayState) []string {
	r.received = append(r.received, event)
	return []string{"recordingReceiver"}
}

func TestPipelinePassThrough(t *testing.T) {
	p := NewPipeline(nil)
	recv := &recordingReceiver{id: "actor-1"}
	p.RegisterReceiver(recv)

	result := p.Dispatch(GameEvent{Kind: "damage", Payload: map[string]any{"amount": 10.0}}, fakeState{})
	assert.False(t, result.Cancelled)
	require.Len(t, recv.received, 1)
	assert.Equal(t, []string{"recordingReceiver"}, result.ReactedByTypes)
}

func TestPipelineModifyAppliesInRegistrationOrder(t *testing.T) {
	p := NewPipeline(nil)
	p.RegisterPreHandler(PreHandlerSpec{
		EventKind: "damage",
		Handler: func(view *MutableView) Intent {
			return Modify(Patch{Field: "amount", Operation: PatchAdd, Value: 5})
		},
	})
	p.RegisterPreHandler(PreHandlerSpec{
		EventKind: "damage",
		Handler: func(view *MutableView) Intent {
			return Modify(Patch{Field: "amount", Operation: PatchMultiply, Value: 2})
		},
	})
	recv := &recordingReceiver{id: "actor-1"}
	p.RegisterReceiver(recv)

	result := p.Dispatch(GameEvent{Kind: "damage", Payload: map[string]any{"amount": 10.0}}, fakeState{})
	amount, _ := result.FinalEvent.Float("amount")
	assert.Equal(t, 30.0, amount, "(10+5)*2, handlers applied in registration order")
}

func TestPipelineCancelShortCircuits(t *testing.T) {
	p := NewPipeline(nil)
	secondCalled := false
	p.RegisterPreHandler(PreHandlerSpec{
		EventKind: "damage",
		Handler: func(view *MutableView) Intent {
			return Cancel("immune")
		},
	})
	p.RegisterPreHandler(PreHandlerSpec{
		EventKind: "damage",
		Handler: func(view *MutableView) Intent {
			secondCalled = true
			return Pass()
		},
	})
	recv := &recordingReceiver{id: "actor-1"}
	p.RegisterReceiver(recv)

	result := p.Dispatch(GameEvent{Kind: "damage"}, fakeState{})
	assert.True(t, result.Cancelled)
	assert.Equal(t, "immune", result.CancelReason)
	assert.False(t, secondCalled, "cancel short-circuits remaining pre handlers")
	assert.Empty(t, recv.received, "post phase is skipped on cancel")
}

func TestPipelineHandlerPanicIsContained(t *testing.T) {
	p := NewPipeline(nil)
	p.RegisterPreHandler(PreHandlerSpec{
		EventKind: "damage",
		Handler: func(view *MutableView) Intent {
			panic("boom")
		},
	})
	recv := &recordingReceiver{id: "actor-1"}
	p.RegisterReceiver(recv)

	result := p.Dispatch(GameEvent{Kind: "damage"}, fakeState{})
	assert.False(t, result.Cancelled, "a panicking handler is treated as pass, not cancel")
	assert.Len(t, recv.received, 1)
}

func TestUnregisterReceiver(t *testing.T) {
	p := NewPipeline(nil)
	recv := &recordingReceiver{id: "actor-1"}
	p.RegisterReceiver(recv)
	p.UnregisterReceiver("actor-1")

	p.Dispatch(GameEvent{Kind: "damage"}, fakeState{})
	assert.Empty(t, recv.received)
}

func TestRegisterPreHandlerUnregisterFunc(t *testing.T) {
	p := NewPipeline(nil)
	called := false
	_, unregister := p.RegisterPreHandler(PreHandlerSpec{
		EventKind: "damage",
		Handler: func(view *MutableView) Intent {
			called = true
			return Pass()
		},
	})
	unregister()

	p.Dispatch(GameEvent{Kind: "damage"}, fakeState{})
	assert.False(t, called, "unregistered handler is never invoked again")
}
