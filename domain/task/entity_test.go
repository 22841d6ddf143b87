package task

import (
	"errors"
	"testing"
	"time"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr error
	}{
		{in: "", want: PriorityMedium},
		{in: "low", want: PriorityLow},
		{in: "medium", want: PriorityMedium},
		{in: "high", want: PriorityHigh},
		{in: " HIGH ", want: PriorityHigh},
		{in: "urgent", wantErr: ErrInvalidPriority},
		{in: "all", wantErr: ErrInvalidPriority},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParsePriority(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *time.Time
	}{
		{name: "empty", in: ""},
		{name: "blank", in: "   "},
		{name: "garbage", in: "tomorrow"},
		{name: "wrong layout", in: "15/03/2024"},
		{name: "impossible date", in: "2024-02-30"},
		{name: "valid", in: "2024-03-15", want: ptr(time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local))},
		{name: "valid with spaces", in: " 2024-12-01 ", want: ptr(time.Date(2024, 12, 1, 0, 0, 0, 0, time.Local))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDueDate(tt.in)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("ParseDueDate(%q) = %v, want nil", tt.in, *got)
			case tt.want != nil && got == nil:
				t.Errorf("ParseDueDate(%q) = nil, want %v", tt.in, *tt.want)
			case tt.want != nil && !got.Equal(*tt.want):
				t.Errorf("ParseDueDate(%q) = %v, want %v", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{name: "no due date", task: Task{}, want: false},
		{name: "past due", task: Task{DueDate: &past}, want: true},
		{name: "future due", task: Task{DueDate: &future}, want: false},
		{name: "past due but completed", task: Task{DueDate: &past, Completed: true}, want: false},
		{name: "due now", task: Task{DueDate: &now}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
