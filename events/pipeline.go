package events

import (
	"github.com/nicoberrocal/abilityrt/runtime"
)

// Pipeline is the two-phase dispatcher. It is not thread-safe by design:
// ticks run single-threaded and synchronous, so there is no lock to pay
// for.
type Pipeline struct {
	preHandlers map[string][]preHandler // eventKind -> registration order
	receivers   []PostReceiver
	router      Router
	log         *runtime.Logger
}

// NewPipeline constructs an empty pipeline.
func NewPipeline(log *runtime.Logger) *Pipeline {
	if log == nil {
		log = runtime.NopLogger()
	}
	return &Pipeline{preHandlers: make(map[string][]preHandler), log: log}
}

// SetRouter installs an optional routing-key filter for the post phase.
func (p *Pipeline) SetRouter(r Router) {
	p.router = r
}

// RegisterReceiver adds a post-phase delivery target (normally a per-actor
// AbilitySet). Order of registration is the order post handlers see a
// surviving event within one dispatch.
func (p *Pipeline) RegisterReceiver(r PostReceiver) {
	p.receivers = append(p.receivers, r)
}

// UnregisterReceiver removes a previously registered receiver, e.g. when
// an actor leaves the battle.
func (p *Pipeline) UnregisterReceiver(actorID string) {
	out := p.receivers[:0]
	for _, r := range p.receivers {
		if r.ActorID() != actorID {
			out = append(out, r)
		}
	}
	p.receivers = out
}

// RegisterPreHandler registers a pre-phase interceptor and returns an
// unregister function. The PreEventComponent calls this from onApply and
// the returned func from onRemove.
func (p *Pipeline) RegisterPreHandler(spec PreHandlerSpec) (runtime.ID, func()) {
	id := runtime.NewID()
	entry := preHandler{id: id, spec: spec}
	p.preHandlers[spec.EventKind] = append(p.preHandlers[spec.EventKind], entry)
	unregister := func() {
		p.unregisterPreHandler(spec.EventKind, id)
	}
	return id, unregister
}

func (p *Pipeline) unregisterPreHandler(kind string, id runtime.ID) {
	handlers := p.preHandlers[kind]
	out := handlers[:0]
	for _, h := range handlers {
		if h.id != id {
			out = append(out, h)
		}
	}
	p.preHandlers[kind] = out
}

// DispatchResult reports what happened to one event after a full pipeline
// pass, useful for tests asserting the cancellation property.
type DispatchResult struct {
	Cancelled      bool
	CancelReason   string
	FinalEvent     GameEvent
	ReactedByTypes []string // union across receivers of component types that claimed the event
}

// Dispatch runs pre phase then, if not cancelled, post phase, against the
// handler/receiver registrations frozen at call time — handlers or
// receivers registered mid-dispatch never see this event.
func (p *Pipeline) Dispatch(event GameEvent, state GameplayState) DispatchResult {
	view := &MutableView{event: event}
	handlers := append([]preHandler(nil), p.preHandlers[event.Kind]...)

	for _, h := range handlers {
		if h.spec.Filter != nil && !h.spec.Filter(view.event) {
			continue
		}
		intent := p.invokePre(h, view)
		switch intent.Kind {
		case IntentCancel:
			p.log.Infof("pipeline", "event %s cancelled by ability=%s reason=%s", event.Kind, h.spec.AbilityID, intent.Reason)
			return DispatchResult{Cancelled: true, CancelReason: intent.Reason, FinalEvent: view.event}
		case IntentModify:
			view.apply(intent.Patches)
		}
	}

	result := DispatchResult{FinalEvent: view.event}
	receivers := p.receivers
	if p.router != nil {
		receivers = p.router.Route(view.event, receivers)
	}
	seen := map[string]bool{}
	for _, r := range receivers {
		for _, t := range r.ReceiveEvent(view.event, state) {
			if !seen[t] {
				seen[t] = true
				result.ReactedByTypes = append(result.ReactedByTypes, t)
			}
		}
	}
	return result
}

// invokePre calls a handler, containing any panic: the error is logged,
// the handler is treated as pass, and the pipeline continues.
func (p *Pipeline) invokePre(h preHandler, view *MutableView) (intent Intent) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("pipeline", "pre handler panic eventKind=%s ability=%s: %v", h.spec.EventKind, h.spec.AbilityID, r)
			intent = Pass()
		}
	}()
	return h.spec.Handler(view)
}
