package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nicoberrocal/abilityrt/events"
)

func TestLooseTagStacking(t *testing.T) {
	b := NewBag("actor-1", nil, nil)
	b.AddLooseTag("burning", 2)
	assert.Equal(t, 2, b.GetTagStacks("burning"))
	assert.True(t, b.HasTag("burning"))

	b.AddLooseTag("burning", 1)
	assert.Equal(t, 3, b.GetTagStacks("burning"))

	assert.True(t, b.RemoveLooseTag("burning", 2))
	assert.Equal(t, 1, b.GetTagStacks("burning"))

	assert.False(t, b.RemoveLooseTag("frozen", 1), "removing an absent tag is not an error")
}

func TestAutoDurationTagExpiry(t *testing.T) {
	b := NewBag("actor-1", nil, nil)
	b.AddAutoDurationTag("stunned", 1000, 0)
	assert.True(t, b.HasTag("stunned"))

	b.Tick(500)
	assert.True(t, b.HasTag("stunned"), "not yet expired")

	b.Tick(1000)
	assert.False(t, b.HasTag("stunned"), "expired once logicTime reaches expiry")
}

func TestComponentOwnedTagsAttachDetach(t *testing.T) {
	b := NewBag("actor-1", nil, nil)
	b.AttachComponentTags("ability-1", []string{"flying", "stealth"})
	assert.True(t, b.HasTag("flying"))
	assert.True(t, b.HasTag("stealth"))

	b.DetachComponentTags("ability-1")
	assert.False(t, b.HasTag("flying"))
	assert.False(t, b.HasTag("stealth"))
}

func TestTagStacksUnionAcrossClasses(t *testing.T) {
	b := NewBag("actor-1", nil, nil)
	b.AddLooseTag("marked", 1)
	b.AddAutoDurationTag("marked", 1000, 0)
	b.AttachComponentTags("ability-1", []string{"marked"})

	assert.Equal(t, 3, b.GetTagStacks("marked"))
}

func TestEmitChangedOnlyOnActualChange(t *testing.T) {
	collector := events.NewFIFOCollector()
	b := NewBag("actor-1", collector, nil)

	b.AddLooseTag("burning", 1)
	assert.Len(t, collector.Flush(), 1)

	assert.False(t, b.RemoveLooseTag("ice", 1))
	assert.Empty(t, collector.Flush(), "no-op removal emits nothing")
}
