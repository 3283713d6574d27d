package memory

import (
	"sort"

	audit "surety/pkg/platform/audit"
)

func sortByTime(events []audit.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}
