package components

import (
	"github.com/nicoberrocal/abilityrt/attributes"
	"github.com/nicoberrocal/abilityrt/runtime"
)

// StatModifier registers an attribute modifier on apply, source-tagged
// with the owning ability id, and unregisters it on remove. Grounded on ships.ModifierBuilder's
// register-on-apply/clear-on-remove idiom (modifier_builder.go).
type StatModifier struct {
	Base
	Attribute attributes.Key
	Operation attributes.Operation
	Value     float64

	modifierID runtime.ID
}

// NewStatModifier constructs a stat modifier component.
func NewStatModifier(attribute attributes.Key, op attributes.Operation, value float64) *StatModifier {
	return &StatModifier{Attribute: attribute, Operation: op, Value: value}
}

func (c *StatModifier) OnApply(ctx Context) {
	id, err := ctx.Attributes.AddModifier(attributes.ModifierSpec{
		Attribute: c.Attribute,
		Source:    ctx.Ability.ID.String(),
		Operation: c.Operation,
		Value:     c.Value,
	})
	if err != nil {
		ctx.Log.Errorf("components", "StatModifier apply failed ability=%s attr=%s: %v", ctx.Ability.ID, c.Attribute, err)
		return
	}
	c.modifierID = id
}

func (c *StatModifier) OnRemove(ctx Context) {
	// Removes only this component's own modifier, by id. AbilitySet also
	// removes every modifier sourced from the ability id when it revokes or
	// sweeps the ability; removing an id that is already gone is a no-op.
	if c.modifierID.IsZero() {
		return
	}
	ctx.Attributes.RemoveModifier(c.modifierID)
}
