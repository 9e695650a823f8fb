package services

import (
	"context"
	"errors"
	"time"

	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/notify"
	"github.com/sunilgupta-arch/taskflow/repository"
)

// TaskService is the task lifecycle engine. It owns every legal state
// transition of a task, the fan-out/fan-in of multi-assignee groups, and the
// transactional reward posting on completion.
type TaskService struct {
	store    repository.Store
	notifier notify.Notifier
}

func NewTaskService(store repository.Store, notifier notify.Notifier) *TaskService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &TaskService{store: store, notifier: notifier}
}

// CreateInput carries the fields of a new task. AssignedTo may name zero,
// one or many users; more than one fans out to one row per assignee linked
// by a shared group id.
type CreateInput struct {
	Title        string
	Description  string
	Type         string
	AssignedTo   []uint
	DueDate      *time.Time
	RewardAmount *float64
}

func validTaskType(t string) bool {
	return t == models.TaskTypeDaily || t == models.TaskTypeWeekly || t == models.TaskTypeAdhoc
}

// Create creates a task on behalf of creator. Only the client organization
// commissions work. Returns the canonical row of the created group.
func (s *TaskService) Create(ctx context.Context, in CreateInput, creator models.Principal) (*models.Task, error) {
	if creator.OrgType != models.OrgCFC {
		return nil, forbidden("only CFC organization can create tasks")
	}
	if in.Title == "" {
		return nil, invalid("title is required")
	}
	if in.Type == "" {
		in.Type = models.TaskTypeAdhoc
	}
	if !validTaskType(in.Type) {
		return nil, invalid("invalid task type %q", in.Type)
	}
	if in.RewardAmount != nil && *in.RewardAmount < 0 {
		return nil, invalid("reward amount cannot be negative")
	}

	base := models.Task{
		Title:        in.Title,
		Description:  in.Description,
		Type:         in.Type,
		Status:       models.TaskStatusPending,
		CreatedBy:    creator.ID,
		DueDate:      in.DueDate,
		RewardAmount: in.RewardAmount,
	}

	var canonical *models.Task
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if len(in.AssignedTo) > 1 {
			// Fan out: one row per assignee, the first row's id becomes the
			// shared group id and the first row points at itself.
			first := base
			assignee := in.AssignedTo[0]
			first.AssignedTo = &assignee
			if err := tx.Tasks().Create(ctx, &first); err != nil {
				return err
			}
			groupID := first.ID
			if err := tx.Tasks().Update(ctx, first.ID, map[string]interface{}{"group_id": groupID}); err != nil {
				return err
			}
			first.GroupID = &groupID
			for _, id := range in.AssignedTo[1:] {
				sibling := base
				a := id
				sibling.AssignedTo = &a
				sibling.GroupID = &groupID
				if err := tx.Tasks().Create(ctx, &sibling); err != nil {
					return err
				}
			}
			canonical = &first
			return nil
		}

		solo := base
		if len(in.AssignedTo) == 1 {
			a := in.AssignedTo[0]
			solo.AssignedTo = &a
		}
		if err := tx.Tasks().Create(ctx, &solo); err != nil {
			return err
		}
		canonical = &solo
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := notify.Event{Type: notify.EventTaskCreated, TaskID: canonical.ID, Title: canonical.Title, At: time.Now()}
	s.notifier.Broadcast(ctx, ev)
	for _, id := range in.AssignedTo {
		s.notifier.NotifyUser(ctx, id, notify.Event{
			Type: notify.EventTaskAssigned, TaskID: canonical.ID, UserID: id,
			Title: canonical.Title, At: time.Now(),
		})
	}
	return canonical, nil
}

// Assign sets the task's assignee and moves it to in_progress. Only the four
// admin/manager roles may assign; OUR-side assigners may only reassign to
// members of their own organization. Does not cascade to group siblings.
func (s *TaskService) Assign(ctx context.Context, taskID, assigneeID uint, assignerRole string) (*models.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !models.IsAssignerRole(assignerRole) {
		return nil, forbidden("not authorized to assign tasks")
	}

	if assignerRole == models.RoleOURAdmin || assignerRole == models.RoleOURManager {
		ok, err := s.store.Users().InOrg(ctx, assigneeID, models.OrgOUR)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, invalid("can only reassign to OUR team members")
		}
	}

	err = s.store.Tasks().Update(ctx, taskID, map[string]interface{}{
		"assigned_to": assigneeID,
		"status":      models.TaskStatusInProgress,
	})
	if err != nil {
		return nil, err
	}
	task.AssignedTo = &assigneeID
	task.Status = models.TaskStatusInProgress

	s.notifier.NotifyUser(ctx, assigneeID, notify.Event{
		Type: notify.EventTaskAssigned, TaskID: taskID, UserID: assigneeID,
		Title: task.Title, At: time.Now(),
	})
	return task, nil
}

// Pick is a self-service claim by an execution-org user on an unassigned
// pending task.
func (s *TaskService) Pick(ctx context.Context, taskID uint, actor models.Principal) (*models.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.AssignedTo != nil {
		return nil, invalid("task is already assigned")
	}
	if task.Status != models.TaskStatusPending {
		return nil, invalid("task is not available for picking")
	}
	if actor.OrgType != models.OrgOUR {
		return nil, invalid("only OUR team can pick tasks")
	}

	err = s.store.Tasks().Update(ctx, taskID, map[string]interface{}{
		"assigned_to": actor.ID,
		"status":      models.TaskStatusInProgress,
	})
	if err != nil {
		return nil, err
	}
	task.AssignedTo = &actor.ID
	task.Status = models.TaskStatusInProgress

	s.notifier.Broadcast(ctx, notify.Event{
		Type: notify.EventTaskPicked, TaskID: taskID, UserID: actor.ID,
		Title: task.Title, At: time.Now(),
	})
	return task, nil
}

// Complete marks the task completed and posts the reward, atomically. The
// task row is locked for the duration so concurrent completion attempts
// serialize: the first wins, the rest see a conflict. The ledger upsert is
// keyed on (user, task), so a retried insert can never double-pay.
func (s *TaskService) Complete(ctx context.Context, taskID, userID uint) (*models.Task, error) {
	var out *models.Task
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		task, err := tx.Tasks().FindByIDForUpdate(ctx, taskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("task not found")
			}
			return err
		}
		if task.AssignedTo == nil || *task.AssignedTo != userID {
			return forbidden("you can only complete tasks assigned to you")
		}
		if task.Status == models.TaskStatusCompleted {
			return conflict("task already completed")
		}

		now := time.Now()
		err = tx.Tasks().Update(ctx, taskID, map[string]interface{}{
			"status":       models.TaskStatusCompleted,
			"completed_at": now,
		})
		if err != nil {
			return err
		}

		if task.HasReward() {
			if err := tx.Rewards().Upsert(ctx, userID, taskID, *task.RewardAmount); err != nil {
				return err
			}
		}

		task.Status = models.TaskStatusCompleted
		task.CompletedAt = &now
		out = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := notify.Event{Type: notify.EventTaskCompleted, TaskID: taskID, UserID: userID, Title: out.Title, At: time.Now()}
	s.notifier.NotifyUser(ctx, userID, ev)
	s.notifier.Broadcast(ctx, ev)
	return out, nil
}

// UpdateGroupAssignees reshapes the task's group to exactly the requested
// assignee list: members whose assignee dropped out are soft-deleted, new
// assignees get rows cloned from a template member. A solo task gaining
// siblings is promoted to a group first (its own id becomes the group id).
// The whole diff runs in one transaction so concurrent edits to the same
// group serialize instead of interleaving.
func (s *TaskService) UpdateGroupAssignees(ctx context.Context, taskID uint, assignees []uint) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		task, err := tx.Tasks().FindByIDForUpdate(ctx, taskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("task not found")
			}
			return err
		}

		groupID := task.EffectiveGroupID()

		var members []models.Task
		if task.GroupID != nil {
			members, err = tx.Tasks().GroupMembers(ctx, groupID)
			if err != nil {
				return err
			}
		} else {
			members = []models.Task{*task}
		}

		requested := make(map[uint]bool, len(assignees))
		for _, id := range assignees {
			requested[id] = true
		}
		current := make(map[uint]bool, len(members))
		for _, m := range members {
			if m.AssignedTo != nil {
				current[*m.AssignedTo] = true
			}
		}

		// Promote a solo task before adding siblings so every clone's
		// group id resolves.
		needsClones := false
		for _, id := range assignees {
			if !current[id] {
				needsClones = true
				break
			}
		}
		if task.GroupID == nil && (len(assignees) > 1 || needsClones) {
			if err := tx.Tasks().Update(ctx, task.ID, map[string]interface{}{"group_id": task.ID}); err != nil {
				return err
			}
		}

		// Fan in: drop members whose assignee is no longer requested.
		for _, m := range members {
			if m.AssignedTo == nil || !requested[*m.AssignedTo] {
				if err := tx.Tasks().SoftDelete(ctx, m.ID); err != nil {
					return err
				}
			}
		}

		// Fan out: clone a template member for each new assignee.
		template := members[0]
		for _, id := range assignees {
			if current[id] {
				continue
			}
			a := id
			gid := groupID
			clone := models.Task{
				Title:        template.Title,
				Description:  template.Description,
				Type:         template.Type,
				Status:       models.TaskStatusPending,
				AssignedTo:   &a,
				CreatedBy:    template.CreatedBy,
				GroupID:      &gid,
				DueDate:      template.DueDate,
				RewardAmount: template.RewardAmount,
			}
			if err := tx.Tasks().Create(ctx, &clone); err != nil {
				return err
			}
		}
		return nil
	})
}

// Deactivate sets the task, and every live member of its group, to
// deactivated.
func (s *TaskService) Deactivate(ctx context.Context, taskID uint) error {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.GroupID != nil {
		return s.store.Tasks().DeactivateGroup(ctx, *task.GroupID)
	}
	return s.store.Tasks().Update(ctx, taskID, map[string]interface{}{"status": models.TaskStatusDeactivated})
}

// Delete soft-deletes the task (and its whole group). Deletion requires a
// prior Deactivate, so active work cannot be destroyed by accident.
func (s *TaskService) Delete(ctx context.Context, taskID uint) error {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Status != models.TaskStatusDeactivated {
		return invalid("task must be deactivated before deletion")
	}
	if task.GroupID != nil {
		return s.store.Tasks().SoftDeleteGroup(ctx, *task.GroupID)
	}
	return s.store.Tasks().SoftDelete(ctx, taskID)
}

// Get returns a single live task.
func (s *TaskService) Get(ctx context.Context, taskID uint) (*models.Task, error) {
	return s.getTask(ctx, taskID)
}

// List returns tasks matching the filter plus the unfiltered total.
func (s *TaskService) List(ctx context.Context, f repository.TaskFilter) ([]models.Task, int64, error) {
	return s.store.Tasks().List(ctx, f)
}

// Unassigned returns pending tasks nobody has claimed yet.
func (s *TaskService) Unassigned(ctx context.Context, page, limit int) ([]models.Task, error) {
	return s.store.Tasks().Unassigned(ctx, page, limit)
}

func (s *TaskService) getTask(ctx context.Context, taskID uint) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("task not found")
		}
		return nil, err
	}
	return task, nil
}
