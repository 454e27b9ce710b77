package components

// TimeDuration counts down and expires its ability when elapsed reaches
// duration.
type TimeDuration struct {
	Base
	DurationMs int64

	elapsed int64
	expire  func(reason string)
}

// NewTimeDuration constructs a duration timer component.
func NewTimeDuration(durationMs int64) *TimeDuration {
	return &TimeDuration{DurationMs: durationMs}
}

func (c *TimeDuration) OnApply(ctx Context) {
	c.expire = ctx.Expire
}

func (c *TimeDuration) OnTick(dt int64) {
	if c.State() == Expired {
		return
	}
	c.elapsed += dt
	if c.elapsed >= c.DurationMs {
		c.setExpired()
		if c.expire != nil {
			c.expire("time_duration")
		}
	}
}

// Remaining reports ms left before expiry, for host UI/debugging.
func (c *TimeDuration) Remaining() int64 {
	left := c.DurationMs - c.elapsed
	if left < 0 {
		return 0
	}
	return left
}
