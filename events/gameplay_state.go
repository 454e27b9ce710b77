package events

// GameplayState is the opaque collaborator interface a host implements.
// The core only ever queries it; it never mutates it directly.
type GameplayState interface {
	// LogicTime returns the host's current logic-time clock, ms.
	LogicTime() int64
}

// PostReceiver is implemented by a per-actor AbilitySet (or any routing
// target) so the pipeline's post phase can deliver surviving events
// without this package importing the ability package back.
type PostReceiver interface {
	ActorID() string
	ReceiveEvent(event GameEvent, state GameplayState) []string
}

// Router optionally narrows post-phase delivery to a routing-key-filtered
// subset of receivers. When a Pipeline has no Router, every registered
// receiver gets every surviving event.
type Router interface {
	Route(event GameEvent, receivers []PostReceiver) []PostReceiver
}
