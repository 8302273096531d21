package emptycache

import (
	"github.com/bbanting/canvasgradecheck/internal/contracts"
)

// Store persists the ids of courses that had no roster members on the last run
type Store = contracts.EmptyCourseStore

// Filter removes known-empty ids from all, preserving order
func Filter(all, empty []int) []int {
	skip := make(map[int]struct{}, len(empty))
	for _, id := range empty {
		skip[id] = struct{}{}
	}

	kept := make([]int, 0, len(all))
	for _, id := range all {
		if _, ok := skip[id]; ok {
			continue
		}
		kept = append(kept, id)
	}
	return kept
}
