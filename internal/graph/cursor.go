package graph

import (
	"time"

	"feedgraph/internal/core"
)

// DayCursor walks calendar days backward from a starting instant down to a
// floor, one day per step. The floor is the target entity's creation day, the
// guaranteed lower bound past which no relevant edges can exist, so the walk
// terminates without any edge counting.
type DayCursor struct {
	next  core.Day
	floor core.Day
}

func NewDayCursor(since, floor time.Time) *DayCursor {
	return &DayCursor{
		next:  core.DayOf(since),
		floor: core.DayOf(floor),
	}
}

// Next yields the current day and steps backward. ok is false once the floor
// has been passed.
func (c *DayCursor) Next() (core.Day, bool) {
	if c.next < c.floor {
		return 0, false
	}
	day := c.next
	c.next = c.next.Prev()
	return day, true
}
