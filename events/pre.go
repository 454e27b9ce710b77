package events

import "github.com/nicoberrocal/abilityrt/runtime"

// PatchOp is the operation a pre-phase modify patch applies to a field.
type PatchOp int

const (
	PatchSet PatchOp = iota
	PatchAdd
	PatchMultiply
)

// Patch describes one field mutation a pre handler wants applied to the
// mutable event view.
type Patch struct {
	Field     string
	Operation PatchOp
	Value     float64
}

// IntentKind discriminates the three pre-handler outcomes.
type IntentKind int

const (
	IntentPass IntentKind = iota
	IntentCancel
	IntentModify
)

// Intent is the return value of a pre handler: pass, cancel(reason), or
// modify(patches).
type Intent struct {
	Kind    IntentKind
	Reason  string
	Patches []Patch
}

// Pass lets the event continue unchanged.
func Pass() Intent { return Intent{Kind: IntentPass} }

// Cancel stops the pipeline; the event is dropped and post phase is
// skipped.
func Cancel(reason string) Intent { return Intent{Kind: IntentCancel, Reason: reason} }

// Modify applies patches and continues the pipeline with the new values.
func Modify(patches ...Patch) Intent { return Intent{Kind: IntentModify, Patches: patches} }

// MutableView is the event as seen by pre handlers: patches already
// applied by earlier handlers in the same phase are visible to later ones.
type MutableView struct {
	event GameEvent
}

// Event returns the current (possibly already patched) event.
func (v *MutableView) Event() GameEvent {
	return v.event
}

func (v *MutableView) apply(patches []Patch) {
	for _, p := range patches {
		switch p.Operation {
		case PatchSet:
			v.event = v.event.With(p.Field, p.Value)
		case PatchAdd:
			cur, _ := v.event.Float(p.Field)
			v.event = v.event.With(p.Field, cur+p.Value)
		case PatchMultiply:
			cur, _ := v.event.Float(p.Field)
			v.event = v.event.With(p.Field, cur*p.Value)
		}
	}
}

// PreHandlerFunc is the handler signature: it observes the mutable view
// and returns an Intent.
type PreHandlerFunc func(view *MutableView) Intent

// PreHandlerSpec is what a component passes to RegisterPreHandler.
type PreHandlerSpec struct {
	EventKind string
	OwnerID   string
	AbilityID runtime.ID
	ConfigID  string
	Filter    func(GameEvent) bool
	Handler   PreHandlerFunc
}

// preHandler is the registered form, carrying the id needed for
// unregistration/tracing.
type preHandler struct {
	id   runtime.ID
	spec PreHandlerSpec
}
