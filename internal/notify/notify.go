// Package notify carries "this user's progress changed" events to
// collaborators that cache or display derived views. Delivery is best
// effort: a failed notification never undoes a committed mutation.
package notify

import (
	"context"
	"errors"
	"time"
)

// Reason names the mutation that produced an event.
type Reason string

const (
	ReasonAttempt      Reason = "attempt"
	ReasonCourseSelect Reason = "course_select"
)

// Event identifies the user and lesson whose views are stale.
type Event struct {
	UserID    string    `json:"user_id"`
	LessonID  int64     `json:"lesson_id,omitempty"`
	CourseID  int64     `json:"course_id,omitempty"`
	Reason    Reason    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier receives events after a successful commit.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, ev Event) error

func (f Func) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
