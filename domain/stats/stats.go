// Package stats computes the dashboard report for one owner's tasks.
//
// Compute is a pure function of the task snapshot and the current time. It
// never touches storage, so callers load the owner's full task list first.
package stats

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/example/task-tracker/domain/task"
)

const (
	// DueSoonWindow bounds the "due soon" count: due strictly after now and
	// strictly before now+DueSoonWindow.
	DueSoonWindow = 3 * 24 * time.Hour
	// RecentLimit is the number of most recently created tasks in a report.
	RecentLimit = 5
)

// CategoryCount is the per-category breakdown entry.
type CategoryCount struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Report is the aggregate dashboard metrics for one owner.
type Report struct {
	Total             int                      `json:"total"`
	Completed         int                      `json:"completed"`
	Pending           int                      `json:"pending"`
	CompletionRate    float64                  `json:"completion_rate"`
	HighPriority      int                      `json:"high_priority"`
	MediumPriority    int                      `json:"medium_priority"`
	LowPriority       int                      `json:"low_priority"`
	Categories        map[string]CategoryCount `json:"categories"`
	Overdue           int                      `json:"overdue"`
	DueSoon           int                      `json:"due_soon"`
	RecentTasks       []*task.Task             `json:"recent_tasks"`
	ProductivityScore int                      `json:"productivity_score"`
	StreakDays        int                      `json:"streak_days"`
}

// Compute derives the report from tasks as of now. A nil Heuristics uses
// DefaultHeuristics. The input slice is not modified.
func Compute(tasks []*task.Task, now time.Time, h Heuristics) Report {
	if h == nil {
		h = DefaultHeuristics{}
	}

	r := Report{
		Total:       len(tasks),
		Categories:  make(map[string]CategoryCount),
		RecentTasks: []*task.Task{},
	}
	soon := now.Add(DueSoonWindow)

	for _, t := range tasks {
		cc := r.Categories[t.Category]
		cc.Total++

		if t.Completed {
			r.Completed++
			cc.Completed++
			r.Categories[t.Category] = cc
			continue
		}
		r.Categories[t.Category] = cc

		switch t.Priority {
		case task.PriorityHigh:
			r.HighPriority++
		case task.PriorityMedium:
			r.MediumPriority++
		case task.PriorityLow:
			r.LowPriority++
		}

		if t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(now) {
			r.Overdue++
		} else if t.DueDate.After(now) && t.DueDate.Before(soon) {
			r.DueSoon++
		}
	}

	r.Pending = r.Total - r.Completed
	if r.Total > 0 {
		r.CompletionRate = roundOneDecimal(float64(r.Completed) / float64(r.Total) * 100)
	}

	r.RecentTasks = recent(tasks, RecentLimit)
	r.ProductivityScore = clamp(h.ProductivityScore(r.CompletionRate, r.Total, r.Overdue), 0, 100)
	r.StreakDays = h.StreakDays(r.Completed)

	return r
}

// recent returns up to n tasks ordered by creation time, newest first.
// Ties keep their input order.
func recent(tasks []*task.Task, n int) []*task.Task {
	sorted := make([]*task.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// roundOneDecimal rounds on the exact binary value of v, half to even, so
// 6.25 -> 6.2 and 0.15 -> 0.1 (0.15 is stored slightly below the midpoint).
func roundOneDecimal(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return math.Round(v*10) / 10
	}
	return r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Engine binds a clock and heuristics to Compute.
type Engine struct {
	now        func() time.Time
	heuristics Heuristics
}

// NewEngine creates an Engine. Nil arguments fall back to time.Now and
// DefaultHeuristics.
func NewEngine(now func() time.Time, h Heuristics) *Engine {
	if now == nil {
		now = time.Now
	}
	if h == nil {
		h = DefaultHeuristics{}
	}
	return &Engine{now: now, heuristics: h}
}

// Compute builds the report for tasks at the engine's current time.
func (e *Engine) Compute(tasks []*task.Task) Report {
	return Compute(tasks, e.now(), e.heuristics)
}
