package manna

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// ReadingPlan is a multi-day scripture reading schedule.
type ReadingPlan struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Description  string    `json:"description,omitempty" yaml:"description"`
	DurationDays int       `json:"duration_days" yaml:"duration_days"`
	Active       bool      `json:"is_active" yaml:"active"`
	Days         []PlanDay `json:"days" yaml:"days"`
}

// PlanDay is one day's reading.
type PlanDay struct {
	Day      int      `json:"day_number" yaml:"day"`
	Title    string   `json:"title,omitempty" yaml:"title"`
	Passages []string `json:"passages" yaml:"passages"`
}

// Validate checks that days are numbered 1..DurationDays.
func (p ReadingPlan) Validate() error {
	if p.ID == "" || p.Name == "" {
		return fmt.Errorf("%w: plan id and name are required", ErrValidation)
	}
	if p.DurationDays <= 0 {
		return fmt.Errorf("%w: plan %s: duration must be positive", ErrValidation, p.ID)
	}
	seen := make(map[int]bool, len(p.Days))
	for _, d := range p.Days {
		if d.Day < 1 || d.Day > p.DurationDays {
			return fmt.Errorf("%w: plan %s: day %d out of range", ErrValidation, p.ID, d.Day)
		}
		if seen[d.Day] {
			return fmt.Errorf("%w: plan %s: day %d listed twice", ErrValidation, p.ID, d.Day)
		}
		seen[d.Day] = true
	}
	return nil
}

// PlanProgress is a member's position in a reading plan.
type PlanProgress struct {
	UserID        string    `json:"user_id"`
	PlanID        string    `json:"plan_id"`
	CurrentDay    int       `json:"current_day"`
	CompletedDays []int     `json:"completed_days"`
	Completed     bool      `json:"is_completed"`
	StartedAt     time.Time `json:"started_at"`
	LastReadAt    time.Time `json:"last_read_at,omitzero"`
}

// NewPlanProgress starts plan at day one.
func NewPlanProgress(userID, planID string, now time.Time) PlanProgress {
	return PlanProgress{UserID: userID, PlanID: planID, CurrentDay: 1, StartedAt: now}
}

// CompleteDay marks day done. Completing a day twice is a no-op apart from
// LastReadAt. CurrentDay moves to the first incomplete day.
func (p *PlanProgress) CompleteDay(day, duration int, now time.Time) error {
	if day < 1 || day > duration {
		return fmt.Errorf("%w: day %d outside 1..%d", ErrValidation, day, duration)
	}
	if i, found := slices.BinarySearch(p.CompletedDays, day); !found {
		p.CompletedDays = slices.Insert(p.CompletedDays, i, day)
	}
	p.LastReadAt = now
	p.CurrentDay = duration
	for d := 1; d <= duration; d++ {
		if _, found := slices.BinarySearch(p.CompletedDays, d); !found {
			p.CurrentDay = d
			break
		}
	}
	p.Completed = len(p.CompletedDays) == duration
	return nil
}

// ProgressStore persists reading progress per member and plan.
type ProgressStore interface {
	Progress(ctx context.Context, userID, planID string) (PlanProgress, error)
	SaveProgress(ctx context.Context, p PlanProgress) error
}
