// Package memstore is an in-memory implementation of the repository
// interfaces. It backs the service and scheduler tests so they run without a
// MySQL instance; transactions serialize on one mutex and roll back by
// restoring a snapshot.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/repository"
)

type data struct {
	nextTaskID   uint
	nextRewardID uint
	nextUserID   uint
	nextAttID    uint
	tasks        map[uint]models.Task
	rewards      map[uint]models.RewardEntry
	users        map[uint]models.User
	attendance   map[uint]models.AttendanceLog
}

func newData() *data {
	return &data{
		tasks:      make(map[uint]models.Task),
		rewards:    make(map[uint]models.RewardEntry),
		users:      make(map[uint]models.User),
		attendance: make(map[uint]models.AttendanceLog),
	}
}

func (d *data) clone() *data {
	c := newData()
	c.nextTaskID = d.nextTaskID
	c.nextRewardID = d.nextRewardID
	c.nextUserID = d.nextUserID
	c.nextAttID = d.nextAttID
	for k, v := range d.tasks {
		c.tasks[k] = v
	}
	for k, v := range d.rewards {
		c.rewards[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.attendance {
		c.attendance[k] = v
	}
	return c
}

// runner executes a function against the store data, with or without taking
// the store lock depending on whether it runs inside InTx.
type runner interface {
	run(fn func(d *data) error) error
}

type Store struct {
	mu sync.Mutex
	d  *data
}

func New() *Store {
	return &Store{d: newData()}
}

func (s *Store) run(fn func(d *data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.d)
}

func (s *Store) Tasks() repository.TaskRepository           { return taskRepo{s} }
func (s *Store) Rewards() repository.RewardRepository       { return rewardRepo{s} }
func (s *Store) Users() repository.UserRepository           { return userRepo{s} }
func (s *Store) Attendance() repository.AttendanceRepository { return attendanceRepo{s} }

func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.d.clone()
	if err := fn(&txStore{d: s.d}); err != nil {
		s.d = snap
		return err
	}
	return nil
}

// SeedUser inserts a user and returns it with its assigned id.
func (s *Store) SeedUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.nextUserID++
	u.ID = s.d.nextUserID
	s.d.users[u.ID] = u
	return u
}

// txStore exposes the same data without re-locking; the InTx caller already
// holds the store mutex.
type txStore struct {
	d *data
}

func (t *txStore) run(fn func(d *data) error) error { return fn(t.d) }

func (t *txStore) Tasks() repository.TaskRepository           { return taskRepo{t} }
func (t *txStore) Rewards() repository.RewardRepository       { return rewardRepo{t} }
func (t *txStore) Users() repository.UserRepository           { return userRepo{t} }
func (t *txStore) Attendance() repository.AttendanceRepository { return attendanceRepo{t} }

// Nested InTx joins the enclosing transaction.
func (t *txStore) InTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(t)
}

// --- tasks ---

type taskRepo struct {
	r runner
}

func (tr taskRepo) Create(ctx context.Context, t *models.Task) error {
	return tr.r.run(func(d *data) error {
		d.nextTaskID++
		t.ID = d.nextTaskID
		now := time.Now()
		t.CreatedAt = now
		t.UpdatedAt = now
		if t.Status == "" {
			t.Status = models.TaskStatusPending
		}
		d.tasks[t.ID] = *t
		return nil
	})
}

func (tr taskRepo) FindByID(ctx context.Context, id uint) (*models.Task, error) {
	var out *models.Task
	err := tr.r.run(func(d *data) error {
		t, ok := d.tasks[id]
		if !ok || t.IsDeleted {
			return repository.ErrNotFound
		}
		cp := t
		out = &cp
		return nil
	})
	return out, err
}

func (tr taskRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.Task, error) {
	// The InTx mutex already serializes writers.
	return tr.FindByID(ctx, id)
}

func (tr taskRepo) GroupMembers(ctx context.Context, groupID uint) ([]models.Task, error) {
	var out []models.Task
	err := tr.r.run(func(d *data) error {
		for _, t := range d.tasks {
			if !t.IsDeleted && t.GroupID != nil && *t.GroupID == groupID {
				out = append(out, t)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (tr taskRepo) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return tr.r.run(func(d *data) error {
		t, ok := d.tasks[id]
		if !ok || t.IsDeleted {
			return repository.ErrNotFound
		}
		applyTaskFields(&t, fields)
		t.UpdatedAt = time.Now()
		d.tasks[id] = t
		return nil
	})
}

func (tr taskRepo) SoftDelete(ctx context.Context, id uint) error {
	return tr.r.run(func(d *data) error {
		t, ok := d.tasks[id]
		if !ok {
			return nil
		}
		t.IsDeleted = true
		d.tasks[id] = t
		return nil
	})
}

func (tr taskRepo) DeactivateGroup(ctx context.Context, groupID uint) error {
	return tr.r.run(func(d *data) error {
		for id, t := range d.tasks {
			if !t.IsDeleted && t.GroupID != nil && *t.GroupID == groupID {
				t.Status = models.TaskStatusDeactivated
				d.tasks[id] = t
			}
		}
		return nil
	})
}

func (tr taskRepo) SoftDeleteGroup(ctx context.Context, groupID uint) error {
	return tr.r.run(func(d *data) error {
		for id, t := range d.tasks {
			if !t.IsDeleted && t.GroupID != nil && *t.GroupID == groupID {
				t.IsDeleted = true
				d.tasks[id] = t
			}
		}
		return nil
	})
}

func (tr taskRepo) CompletedByType(ctx context.Context, taskType string) ([]models.Task, error) {
	var out []models.Task
	err := tr.r.run(func(d *data) error {
		for _, t := range d.tasks {
			if !t.IsDeleted && t.Type == taskType && t.Status == models.TaskStatusCompleted {
				out = append(out, t)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (tr taskRepo) List(ctx context.Context, f repository.TaskFilter) ([]models.Task, int64, error) {
	var out []models.Task
	err := tr.r.run(func(d *data) error {
		for _, t := range d.tasks {
			if t.IsDeleted {
				continue
			}
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			if f.Type != "" && t.Type != f.Type {
				continue
			}
			if f.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *f.AssignedTo) {
				continue
			}
			if f.CreatedBy != nil && t.CreatedBy != *f.CreatedBy {
				continue
			}
			if f.Search != "" && !strings.Contains(t.Title, f.Search) && !strings.Contains(t.Description, f.Search) {
				continue
			}
			out = append(out, t)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, int64(len(out)), err
}

func (tr taskRepo) Unassigned(ctx context.Context, page, limit int) ([]models.Task, error) {
	var out []models.Task
	err := tr.r.run(func(d *data) error {
		for _, t := range d.tasks {
			if !t.IsDeleted && t.AssignedTo == nil && t.Status == models.TaskStatusPending {
				out = append(out, t)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func applyTaskFields(t *models.Task, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "title":
			t.Title = v.(string)
		case "description":
			t.Description = v.(string)
		case "type":
			t.Type = v.(string)
		case "status":
			t.Status = v.(string)
		case "assigned_to":
			switch id := v.(type) {
			case uint:
				t.AssignedTo = &id
			case *uint:
				t.AssignedTo = id
			case nil:
				t.AssignedTo = nil
			}
		case "group_id":
			switch id := v.(type) {
			case uint:
				t.GroupID = &id
			case *uint:
				t.GroupID = id
			case nil:
				t.GroupID = nil
			}
		case "due_date":
			switch dt := v.(type) {
			case time.Time:
				t.DueDate = &dt
			case *time.Time:
				t.DueDate = dt
			case nil:
				t.DueDate = nil
			}
		case "reward_amount":
			switch a := v.(type) {
			case float64:
				t.RewardAmount = &a
			case *float64:
				t.RewardAmount = a
			case nil:
				t.RewardAmount = nil
			}
		case "completed_at":
			switch dt := v.(type) {
			case time.Time:
				t.CompletedAt = &dt
			case *time.Time:
				t.CompletedAt = dt
			case nil:
				t.CompletedAt = nil
			}
		}
	}
}

// --- rewards ---

type rewardRepo struct {
	r runner
}

func (rr rewardRepo) Upsert(ctx context.Context, userID, taskID uint, amount float64) error {
	return rr.r.run(func(d *data) error {
		for id, e := range d.rewards {
			if e.UserID == userID && e.TaskID == taskID {
				e.RewardAmount = amount
				d.rewards[id] = e
				return nil
			}
		}
		d.nextRewardID++
		d.rewards[d.nextRewardID] = models.RewardEntry{
			ID:           d.nextRewardID,
			UserID:       userID,
			TaskID:       taskID,
			RewardAmount: amount,
			Status:       models.RewardStatusPending,
			CreatedAt:    time.Now(),
		}
		return nil
	})
}

func (rr rewardRepo) FindByID(ctx context.Context, id uint) (*models.RewardEntry, error) {
	var out *models.RewardEntry
	err := rr.r.run(func(d *data) error {
		e, ok := d.rewards[id]
		if !ok {
			return repository.ErrNotFound
		}
		cp := e
		out = &cp
		return nil
	})
	return out, err
}

func (rr rewardRepo) MarkPaid(ctx context.Context, id, paidBy uint, at time.Time) (bool, error) {
	var paid bool
	err := rr.r.run(func(d *data) error {
		e, ok := d.rewards[id]
		if !ok || e.Status != models.RewardStatusPending {
			return nil
		}
		e.Status = models.RewardStatusPaid
		e.PaidBy = &paidBy
		e.PaidAt = &at
		d.rewards[id] = e
		paid = true
		return nil
	})
	return paid, err
}

func (rr rewardRepo) List(ctx context.Context, f repository.RewardFilter) ([]models.RewardEntry, int64, error) {
	var out []models.RewardEntry
	err := rr.r.run(func(d *data) error {
		for _, e := range d.rewards {
			if f.UserID != nil && e.UserID != *f.UserID {
				continue
			}
			if f.Status != "" && e.Status != f.Status {
				continue
			}
			out = append(out, e)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, int64(len(out)), err
}

func (rr rewardRepo) UserSummary(ctx context.Context, userID uint) (models.RewardSummary, error) {
	var s models.RewardSummary
	err := rr.r.run(func(d *data) error {
		for _, e := range d.rewards {
			if e.UserID != userID {
				continue
			}
			s.TotalEarned += e.RewardAmount
			if e.Status == models.RewardStatusPaid {
				s.Paid += e.RewardAmount
				s.PaidCount++
			} else {
				s.Pending += e.RewardAmount
				s.PendingCount++
			}
		}
		return nil
	})
	return s, err
}

// --- users ---

type userRepo struct {
	r runner
}

func (ur userRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var out *models.User
	err := ur.r.run(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		cp := u
		out = &cp
		return nil
	})
	return out, err
}

func (ur userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var out *models.User
	err := ur.r.run(func(d *data) error {
		for _, u := range d.users {
			if u.Email == email {
				cp := u
				out = &cp
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (ur userRepo) InOrg(ctx context.Context, id uint, orgType string) (bool, error) {
	var in bool
	err := ur.r.run(func(d *data) error {
		u, ok := d.users[id]
		in = ok && u.IsActive && u.OrgType == orgType
		return nil
	})
	return in, err
}

// --- attendance ---

type attendanceRepo struct {
	r runner
}

func (ar attendanceRepo) ClockIn(ctx context.Context, userID uint, date, loginTime string) (bool, error) {
	var created bool
	err := ar.r.run(func(d *data) error {
		for _, a := range d.attendance {
			if a.UserID == userID && a.Date == date {
				return nil
			}
		}
		d.nextAttID++
		d.attendance[d.nextAttID] = models.AttendanceLog{
			ID:        d.nextAttID,
			UserID:    userID,
			Date:      date,
			LoginTime: loginTime,
		}
		created = true
		return nil
	})
	return created, err
}

func (ar attendanceRepo) ClockOut(ctx context.Context, userID uint, date, logoutTime string) (bool, error) {
	var closed bool
	err := ar.r.run(func(d *data) error {
		for id, a := range d.attendance {
			if a.UserID == userID && a.Date == date && a.LogoutTime == nil {
				lt := logoutTime
				a.LogoutTime = &lt
				d.attendance[id] = a
				closed = true
				return nil
			}
		}
		return nil
	})
	return closed, err
}

func (ar attendanceRepo) CloseOpen(ctx context.Context, date, logoutTime string) (int64, error) {
	var n int64
	err := ar.r.run(func(d *data) error {
		for id, a := range d.attendance {
			if a.Date == date && a.LogoutTime == nil {
				lt := logoutTime
				a.LogoutTime = &lt
				d.attendance[id] = a
				n++
			}
		}
		return nil
	})
	return n, err
}
