package attributes

import "github.com/nicoberrocal/abilityrt/runtime"

// Operation is how a modifier combines with an attribute's base value:
// a closed {add, multiply} pair.
type Operation int

const (
	OpAdd Operation = iota
	OpMultiply
)

// ModifierSpec is what a caller passes to Store.AddModifier. Grounded on
// ships.ModifierLayer's {Source, Mods} shape (modifier_stack.go), narrowed
// to one attribute/operation/value.
type ModifierSpec struct {
	Attribute Key
	Source    string // usually an ability id
	Operation Operation
	Value     float64
}

// Modifier is the stored, identified form of a ModifierSpec.
type Modifier struct {
	ID        runtime.ID
	Attribute Key
	Source    string
	Operation Operation
	Value     float64
}
