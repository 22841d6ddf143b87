package stats

import "math"

// Heuristics derives the display-only dashboard scores. Implementations may
// be swapped without touching Compute callers.
type Heuristics interface {
	// ProductivityScore returns a score in [0, 100].
	ProductivityScore(completionRate float64, total, overdue int) int
	// StreakDays returns the streak shown on the dashboard.
	StreakDays(completed int) int
}

const (
	// RateMultiplier scales the completion rate into the base score.
	RateMultiplier = 1.2
	// OverduePenalty is subtracted from the score per overdue task.
	OverduePenalty = 5
	// TasksPerStreakDay is the number of completed tasks counted as one streak day.
	TasksPerStreakDay = 3
)

// DefaultHeuristics are the placeholder formulas the dashboard has always shown.
// StreakDays does not track consecutive days.
type DefaultHeuristics struct{}

var _ Heuristics = DefaultHeuristics{}

// ProductivityScore is min(100, floor(rate*1.2)) minus 5 per overdue task, floored at 0.
func (DefaultHeuristics) ProductivityScore(completionRate float64, total, overdue int) int {
	if total <= 0 {
		return 0
	}
	score := int(math.Floor(completionRate * RateMultiplier))
	if score > 100 {
		score = 100
	}
	score -= overdue * OverduePenalty
	if score < 0 {
		score = 0
	}
	return score
}

// StreakDays is completed / 3 using integer division.
func (DefaultHeuristics) StreakDays(completed int) int {
	if completed <= 0 {
		return 0
	}
	return completed / TasksPerStreakDay
}
