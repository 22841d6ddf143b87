package task

import "testing"

func TestFilter_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Filter
		want Filter
	}{
		{
			name: "zero value",
			in:   Filter{},
			want: Filter{Status: FilterAll, Priority: FilterAll, Category: FilterAll},
		},
		{
			name: "unknown status",
			in:   Filter{Status: "archived"},
			want: Filter{Status: FilterAll, Priority: FilterAll, Category: FilterAll},
		},
		{
			name: "explicit values kept",
			in:   Filter{Status: StatusPending, Priority: "high", Category: "work", Search: "  report "},
			want: Filter{Status: StatusPending, Priority: "high", Category: "work", Search: "  report "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFilter_Matches(t *testing.T) {
	task := &Task{Title: "Write Quarterly Report", Priority: PriorityHigh, Category: "work"}
	done := &Task{Title: "Buy milk", Priority: PriorityLow, Category: "home", Completed: true}

	tests := []struct {
		name   string
		filter Filter
		task   *Task
		want   bool
	}{
		{name: "empty filter", filter: Filter{}, task: task, want: true},
		{name: "pending matches open task", filter: Filter{Status: StatusPending}, task: task, want: true},
		{name: "pending skips completed", filter: Filter{Status: StatusPending}, task: done, want: false},
		{name: "completed matches", filter: Filter{Status: StatusCompleted}, task: done, want: true},
		{name: "priority mismatch", filter: Filter{Priority: "low"}, task: task, want: false},
		{name: "category match", filter: Filter{Category: "work"}, task: task, want: true},
		{name: "search case-insensitive", filter: Filter{Search: "quarterly"}, task: task, want: true},
		{name: "search miss", filter: Filter{Search: "invoice"}, task: task, want: false},
		{name: "all dimensions", filter: Filter{Status: StatusPending, Priority: "high", Category: "work", Search: "REPORT"}, task: task, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.task); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
