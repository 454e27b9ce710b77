package runtime

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ID is a process-unique identifier minted for abilities, modifiers,
// pre-handler registrations, and execution instances. It wraps a
// bson.ObjectID so ids stay compact, sortable by creation time, and
// collision-free without a central counter.
type ID struct {
	oid bson.ObjectID
}

// NewID mints a fresh id. Safe to call from any component lifecycle hook;
// the runtime never spawns goroutines, so no locking is needed.
func NewID() ID {
	return ID{oid: bson.NewObjectID()}
}

// ZeroID is the unset value, distinguishable via IsZero.
var ZeroID = ID{}

// IsZero reports whether this is the unset id.
func (id ID) IsZero() bool {
	return id.oid.IsZero()
}

// String renders the id as a hex string. Hosts treat ids as opaque tokens.
func (id ID) String() string {
	return id.oid.Hex()
}

// ParseID parses a previously rendered id back into an ID.
func ParseID(hex string) (ID, error) {
	oid, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return ID{}, err
	}
	return ID{oid: oid}, nil
}

// MarshalText implements encoding.TextMarshaler so IDs serialize as plain
// hex strings in JSON payloads the host may log or snapshot.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
