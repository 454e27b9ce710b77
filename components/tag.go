package components

// Tag attaches a fixed list of tags to the owner's tag bag under the
// component-owned class on apply, and detaches them on remove.
type Tag struct {
	Base
	Tags []string
}

// NewTag constructs a tag-attachment component.
func NewTag(tagList ...string) *Tag {
	return &Tag{Tags: tagList}
}

func (c *Tag) OnApply(ctx Context) {
	ctx.Tags.AttachComponentTags(ctx.Ability.ID.String(), c.Tags)
}

func (c *Tag) OnRemove(ctx Context) {
	ctx.Tags.DetachComponentTags(ctx.Ability.ID.String())
}
