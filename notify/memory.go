package notify

import (
	"context"
	"sync"
)

// Recorder keeps delivered events in memory. Test double.
type Recorder struct {
	mu         sync.Mutex
	users      map[uint][]Event
	broadcasts []Event
}

func NewRecorder() *Recorder {
	return &Recorder{users: make(map[uint][]Event)}
}

func (r *Recorder) NotifyUser(ctx context.Context, userID uint, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID] = append(r.users[userID], ev)
}

func (r *Recorder) Broadcast(ctx context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts = append(r.broadcasts, ev)
}

func (r *Recorder) Close() error { return nil }

// UserEvents returns a copy of the events delivered to userID.
func (r *Recorder) UserEvents(userID uint) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.users[userID]))
	copy(out, r.users[userID])
	return out
}

// Broadcasts returns a copy of the broadcast events.
func (r *Recorder) Broadcasts() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.broadcasts))
	copy(out, r.broadcasts)
	return out
}
