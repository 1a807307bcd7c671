package domain

import (
	"time"

	"github.com/deemkeen/don/util"
)

func activityTime(a Activity) time.Time {
	return a.Time
}

// NewestFirst orders activities for display. The input is returned unchanged
// when it is already in order.
func NewestFirst(activities []Activity) []Activity {
	return util.SortBy(activities, activityTime, func(a, b time.Time) int {
		return b.Compare(a)
	})
}
