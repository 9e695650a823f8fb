// Package notify publishes task lifecycle events to interested parties.
// Events go to a per-user channel and, for staff dashboards, a broadcast
// channel. Publishing is best-effort: a failed publish is logged and never
// fails the operation that produced the event.
package notify

import (
	"context"
	"time"
)

// Event types published by the lifecycle engine and the scheduler.
const (
	EventTaskCreated   = "task.created"
	EventTaskAssigned  = "task.assigned"
	EventTaskPicked    = "task.picked"
	EventTaskCompleted = "task.completed"
	EventRewardPaid    = "reward.paid"
)

type Event struct {
	Type   string    `json:"type"`
	TaskID uint      `json:"task_id,omitempty"`
	UserID uint      `json:"user_id,omitempty"`
	Title  string    `json:"title,omitempty"`
	At     time.Time `json:"at"`
}

type Notifier interface {
	// NotifyUser delivers the event to one user's channel.
	NotifyUser(ctx context.Context, userID uint, ev Event)
	// Broadcast delivers the event to the privileged-roles channel.
	Broadcast(ctx context.Context, ev Event)
	Close() error
}

// Nop discards all events. Used when no Redis is configured.
type Nop struct{}

func (Nop) NotifyUser(ctx context.Context, userID uint, ev Event) {}
func (Nop) Broadcast(ctx context.Context, ev Event)               {}
func (Nop) Close() error                                          { return nil }
