// Package tags implements the per-actor tagged state bag: a keyed
// multiset of string tokens with three lifetime classes.
package tags

import (
	"sort"

	"github.com/nicoberrocal/abilityrt/events"
	"github.com/nicoberrocal/abilityrt/runtime"
)

// autoEntry is one auto-duration stack, grounded on maps.PlayerAction's
// {Finised time.Time} scheduled-expiry shape (maps/queue.go), adapted to
// an integer logic-time clock instead of wall-clock time.
type autoEntry struct {
	tag       string
	expiresAt int64
}

// Bag is one actor's tag state: three separately stored containers,
// accessed by union on read.
type Bag struct {
	actorID string

	loose          map[string]int
	autoDuration   []autoEntry
	componentOwned map[string][]string // abilityId -> tags granted by it

	sink events.Collector
	log  *runtime.Logger
}

// NewBag constructs an empty tag bag for one actor.
func NewBag(actorID string, sink events.Collector, log *runtime.Logger) *Bag {
	if log == nil {
		log = runtime.NopLogger()
	}
	return &Bag{
		actorID:        actorID,
		loose:          map[string]int{},
		componentOwned: map[string][]string{},
		sink:           sink,
		log:            log,
	}
}

// HasTag reports whether tag has at least one stack from any source.
func (b *Bag) HasTag(tag string) bool {
	return b.GetTagStacks(tag) > 0
}

// GetTagStacks sums stacks for tag across loose, auto-duration, and
// component-owned sources.
func (b *Bag) GetTagStacks(tag string) int {
	total := b.loose[tag]
	for _, e := range b.autoDuration {
		if e.tag == tag {
			total++
		}
	}
	for _, owned := range b.componentOwned {
		for _, t := range owned {
			if t == tag {
				total++
			}
		}
	}
	return total
}

// AddLooseTag adds stacks (default 1) to the loose container.
func (b *Bag) AddLooseTag(tag string, stacks int) {
	if stacks <= 0 {
		stacks = 1
	}
	before := b.GetTagStacks(tag)
	b.loose[tag] += stacks
	b.emitChanged(tag, before)
}

// RemoveLooseTag removes stacks (0 meaning remove-all) from the loose
// container only — it never touches auto-duration or component-owned
// entries. Returns whether anything was removed; removing a missing tag
// is not an error.
func (b *Bag) RemoveLooseTag(tag string, stacks int) bool {
	current, ok := b.loose[tag]
	if !ok || current <= 0 {
		return false
	}
	before := b.GetTagStacks(tag)
	if stacks <= 0 || stacks >= current {
		delete(b.loose, tag)
	} else {
		b.loose[tag] = current - stacks
	}
	b.emitChanged(tag, before)
	return true
}

// AddAutoDurationTag appends one auto-duration entry expiring durationMs
// after logicTime. Each call appends exactly one stack/entry.
func (b *Bag) AddAutoDurationTag(tag string, durationMs int64, logicTime int64) {
	before := b.GetTagStacks(tag)
	b.autoDuration = append(b.autoDuration, autoEntry{tag: tag, expiresAt: logicTime + durationMs})
	b.emitChanged(tag, before)
}

// Tick sweeps auto-duration entries whose expiry has been reached by
// logicTime, removing exactly one entry per expired stack. Driven by the
// host-supplied logic clock, never wall time.
func (b *Bag) Tick(logicTime int64) {
	if len(b.autoDuration) == 0 {
		return
	}
	expiredCounts := map[string]int{}
	kept := b.autoDuration[:0]
	for _, e := range b.autoDuration {
		if e.expiresAt <= logicTime {
			expiredCounts[e.tag]++
			continue
		}
		kept = append(kept, e)
	}
	b.autoDuration = kept
	if len(expiredCounts) == 0 {
		return
	}
	tagNames := make([]string, 0, len(expiredCounts))
	for t := range expiredCounts {
		tagNames = append(tagNames, t)
	}
	sort.Strings(tagNames)
	for _, tag := range tagNames {
		before := b.GetTagStacks(tag) + expiredCounts[tag]
		b.log.Debugf("tags", "actor=%s tag=%s expired stacks=%d", b.actorID, tag, expiredCounts[tag])
		b.emitChanged(tag, before)
	}
}

// AttachComponentTags is the internal API a TagComponent calls on apply:
// it attaches tags to the component-owned class keyed by the owning
// ability id.
func (b *Bag) AttachComponentTags(abilityID string, tagList []string) {
	for _, tag := range tagList {
		before := b.GetTagStacks(tag)
		b.componentOwned[abilityID] = append(b.componentOwned[abilityID], tag)
		b.emitChanged(tag, before)
	}
}

// DetachComponentTags is the internal API a TagComponent calls on remove:
// it detaches every tag it attached for abilityID, regardless of loose or
// auto-duration state for the same tag name.
func (b *Bag) DetachComponentTags(abilityID string) {
	owned, ok := b.componentOwned[abilityID]
	if !ok {
		return
	}
	delete(b.componentOwned, abilityID)
	seen := map[string]bool{}
	for _, tag := range owned {
		if seen[tag] {
			continue
		}
		seen[tag] = true
	}
	tagNames := make([]string, 0, len(seen))
	for t := range seen {
		tagNames = append(tagNames, t)
	}
	sort.Strings(tagNames)
	for _, tag := range tagNames {
		count := 0
		for _, t := range owned {
			if t == tag {
				count++
			}
		}
		before := b.GetTagStacks(tag) + count
		b.emitChanged(tag, before)
	}
}

func (b *Bag) emitChanged(tag string, before int) {
	after := b.GetTagStacks(tag)
	if before == after {
		return
	}
	if b.sink != nil {
		b.sink.Push(events.NewTagChanged(b.actorID, tag, before, after))
	}
}
