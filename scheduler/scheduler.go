// Package scheduler owns the three timer-driven maintenance jobs: daily and
// weekly regeneration of completed recurring tasks, and the end-of-day
// force-close of open attendance sessions. The jobs are explicit long-lived
// goroutines started once and stopped on shutdown, not ambient timers.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/repository"
)

type Scheduler struct {
	store repository.Store
	stop  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

func New(store repository.Store) *Scheduler {
	return &Scheduler{store: store, stop: make(chan struct{})}
}

// Start launches the three job loops. Call Stop to terminate them.
func (s *Scheduler) Start() {
	s.wg.Add(3)
	go s.loop("daily-regeneration", nextMidnight, func(ctx context.Context) {
		n, err := s.RegenerateDaily(ctx)
		if err != nil {
			log.Printf("[CRON] daily regeneration: %v", err)
			return
		}
		log.Printf("[CRON] created %d daily task(s)", n)
	})
	go s.loop("weekly-regeneration", nextMondayMidnight, func(ctx context.Context) {
		n, err := s.RegenerateWeekly(ctx)
		if err != nil {
			log.Printf("[CRON] weekly regeneration: %v", err)
			return
		}
		log.Printf("[CRON] created %d weekly task(s)", n)
	})
	go s.loop("attendance-close", nextEndOfDay, func(ctx context.Context) {
		n, err := s.CloseOpenAttendance(ctx)
		if err != nil {
			log.Printf("[CRON] attendance cleanup: %v", err)
			return
		}
		log.Printf("[CRON] force-closed %d attendance session(s)", n)
	})
	log.Println("[CRON] scheduler started")
}

// Stop terminates the job loops and waits for them to exit. Safe to call
// more than once.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *Scheduler) loop(name string, next func(time.Time) time.Time, job func(context.Context)) {
	defer s.wg.Done()
	for {
		timer := time.NewTimer(time.Until(next(time.Now())))
		select {
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
			job(context.Background())
		}
	}
}

// RegenerateDaily re-creates every completed daily task as a fresh pending
// instance due today.
func (s *Scheduler) RegenerateDaily(ctx context.Context) (int, error) {
	return s.regenerate(ctx, models.TaskTypeDaily, today(time.Now()))
}

// RegenerateWeekly re-creates every completed weekly task as a fresh pending
// instance due at the end of the week (today + 6 days).
func (s *Scheduler) RegenerateWeekly(ctx context.Context) (int, error) {
	return s.regenerate(ctx, models.TaskTypeWeekly, today(time.Now()).AddDate(0, 0, 6))
}

// regenerate copies completed tasks of taskType into new pending rows with
// the given due date. Originals are left untouched as the historical record.
// Rows that shared a group id come out sharing a new one: the first
// regenerated row of each original group becomes the new canonical row.
//
// Each row regenerates in its own transaction (the insert and its group
// pointer commit together) and a failure only skips that row — one bad
// historical row must not block the rest of the batch. A mid-batch failure
// can therefore leave a group partially regenerated; that is accepted and
// logged.
func (s *Scheduler) regenerate(ctx context.Context, taskType string, due time.Time) (int, error) {
	tasks, err := s.store.Tasks().CompletedByType(ctx, taskType)
	if err != nil {
		return 0, err
	}

	newGroups := make(map[uint]uint) // old group id -> new group id
	created := 0
	for i := range tasks {
		orig := tasks[i]

		var cloneID uint
		err := s.store.InTx(ctx, func(tx repository.Store) error {
			d := due
			clone := models.Task{
				Title:        orig.Title,
				Description:  orig.Description,
				Type:         orig.Type,
				Status:       models.TaskStatusPending,
				AssignedTo:   orig.AssignedTo,
				CreatedBy:    orig.CreatedBy,
				DueDate:      &d,
				RewardAmount: orig.RewardAmount,
			}
			if err := tx.Tasks().Create(ctx, &clone); err != nil {
				return err
			}
			cloneID = clone.ID
			if orig.GroupID != nil {
				gid, ok := newGroups[*orig.GroupID]
				if !ok {
					gid = clone.ID
				}
				if err := tx.Tasks().Update(ctx, clone.ID, map[string]interface{}{"group_id": gid}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Printf("[CRON] regenerate %s task %d: %v", taskType, orig.ID, err)
			continue
		}
		if orig.GroupID != nil {
			if _, ok := newGroups[*orig.GroupID]; !ok {
				newGroups[*orig.GroupID] = cloneID
			}
		}
		created++
	}
	return created, nil
}

// CloseOpenAttendance stamps 23:59:59 on every attendance session still open
// today.
func (s *Scheduler) CloseOpenAttendance(ctx context.Context) (int64, error) {
	date := time.Now().Format("2006-01-02")
	return s.store.Attendance().CloseOpen(ctx, date, "23:59:59")
}

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func nextMidnight(now time.Time) time.Time {
	return today(now).AddDate(0, 0, 1)
}

func nextMondayMidnight(now time.Time) time.Time {
	next := nextMidnight(now)
	for next.Weekday() != time.Monday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func nextEndOfDay(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
