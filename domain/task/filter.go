package task

import "strings"

// FilterAll disables a filter dimension.
const FilterAll = "all"

// Status filter values.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// Filter narrows a task list. All dimensions combine with logical AND.
type Filter struct {
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Category string `json:"category"`
	Search   string `json:"search"`
}

// Normalize fills empty dimensions with "all". An unknown status is treated
// as "all". The search term is matched as given, spaces included.
func (f Filter) Normalize() Filter {
	if f.Status != StatusCompleted && f.Status != StatusPending {
		f.Status = FilterAll
	}
	if f.Priority == "" {
		f.Priority = FilterAll
	}
	if f.Category == "" {
		f.Category = FilterAll
	}
	return f
}

// Matches applies the filter to a single task in memory.
func (f Filter) Matches(t *Task) bool {
	f = f.Normalize()
	switch f.Status {
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	case StatusPending:
		if t.Completed {
			return false
		}
	}
	if f.Priority != FilterAll && string(t.Priority) != f.Priority {
		return false
	}
	if f.Category != FilterAll && t.Category != f.Category {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
		return false
	}
	return true
}
