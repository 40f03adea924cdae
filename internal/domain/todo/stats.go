package todo

import "fmt"

// Stats holds the derived counts over an item set. It is always recomputed
// from the full list, never patched incrementally, so Total stays equal to
// Completed plus Pending.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// ComputeStats derives the counts from the given items.
func ComputeStats(items []Item) Stats {
	stats := Stats{Total: len(items)}
	for _, item := range items {
		if item.Completed {
			stats.Completed++
		} else {
			stats.Pending++
		}
	}
	return stats
}

// Summary renders the counts as a fixed-width text block for terminal output.
func (s Stats) Summary() string {
	return fmt.Sprintf("total      %d\ncompleted  %d\npending    %d\n", s.Total, s.Completed, s.Pending)
}
