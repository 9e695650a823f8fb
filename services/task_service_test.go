package services

import (
	"context"
	"testing"
	"time"

	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/notify"
	"github.com/sunilgupta-arch/taskflow/repository"
	"github.com/sunilgupta-arch/taskflow/repository/memstore"
)

func newTaskFixture() (*TaskService, *memstore.Store, *notify.Recorder) {
	store := memstore.New()
	rec := notify.NewRecorder()
	return NewTaskService(store, rec), store, rec
}

func cfcAdmin() models.Principal {
	return models.Principal{ID: 1, Name: "Admin", Role: models.RoleCFCAdmin, OrgType: models.OrgCFC}
}

func ourUser(id uint) models.Principal {
	return models.Principal{ID: id, Name: "Worker", Role: models.RoleOURUser, OrgType: models.OrgOUR}
}

func amount(v float64) *float64 { return &v }

func TestCreateFanOutSharesGroupID(t *testing.T) {
	svc, store, _ := newTaskFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateInput{
		Title:      "weekly report",
		Type:       models.TaskTypeAdhoc,
		AssignedTo: []uint{5, 6, 7},
	}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.GroupID == nil || *task.GroupID != task.ID {
		t.Fatalf("canonical row must point at itself, got group %v id %d", task.GroupID, task.ID)
	}

	members, err := store.Tasks().GroupMembers(ctx, task.ID)
	if err != nil {
		t.Fatalf("GroupMembers: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("expected 3 group members, got %d", len(members))
	}
	seen := map[uint]bool{}
	for _, m := range members {
		if m.GroupID == nil || *m.GroupID != task.ID {
			t.Errorf("member %d has group %v, want %d", m.ID, m.GroupID, task.ID)
		}
		if m.Status != models.TaskStatusPending {
			t.Errorf("member %d status %q, want pending", m.ID, m.Status)
		}
		if m.AssignedTo == nil {
			t.Fatalf("member %d has no assignee", m.ID)
		}
		seen[*m.AssignedTo] = true
	}
	for _, id := range []uint{5, 6, 7} {
		if !seen[id] {
			t.Errorf("no member assigned to user %d", id)
		}
	}
}

func TestCreateSingleAssigneeHasNoGroup(t *testing.T) {
	svc, _, _ := newTaskFixture()

	task, err := svc.Create(context.Background(), CreateInput{
		Title:      "solo task",
		AssignedTo: []uint{5},
	}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.GroupID != nil {
		t.Fatalf("solo task must not carry a group id, got %d", *task.GroupID)
	}
	if task.Type != models.TaskTypeAdhoc {
		t.Fatalf("empty type must default to adhoc, got %q", task.Type)
	}
}

func TestCreateRejectsNonClientOrg(t *testing.T) {
	svc, _, _ := newTaskFixture()

	_, err := svc.Create(context.Background(), CreateInput{Title: "x"}, ourUser(9))
	if KindOf(err) != KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateRejectsNegativeReward(t *testing.T) {
	svc, _, _ := newTaskFixture()

	_, err := svc.Create(context.Background(), CreateInput{Title: "x", RewardAmount: amount(-1)}, cfcAdmin())
	if KindOf(err) != KindInvalid {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestCompletePostsRewardOnce(t *testing.T) {
	svc, store, rec := newTaskFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateInput{
		Title:        "paid task",
		AssignedTo:   []uint{5},
		RewardAmount: amount(100),
	}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done, err := svc.Complete(ctx, task.ID, 5)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != models.TaskStatusCompleted || done.CompletedAt == nil {
		t.Fatalf("task not marked completed: %+v", done)
	}

	entries, _, err := store.Rewards().List(ctx, repository.RewardFilter{})
	if err != nil {
		t.Fatalf("List rewards: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	e := entries[0]
	if e.UserID != 5 || e.TaskID != task.ID || e.RewardAmount != 100 || e.Status != models.RewardStatusPending {
		t.Fatalf("unexpected ledger entry: %+v", e)
	}

	if got := rec.UserEvents(5); len(got) == 0 {
		t.Fatal("assignee received no completion notification")
	}
}

func TestCompleteWithoutRewardPostsNothing(t *testing.T) {
	svc, store, _ := newTaskFixture()
	ctx := context.Background()

	for _, amt := range []*float64{nil, amount(0)} {
		task, err := svc.Create(ctx, CreateInput{Title: "free task", AssignedTo: []uint{5}, RewardAmount: amt}, cfcAdmin())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := svc.Complete(ctx, task.ID, 5); err != nil {
			t.Fatalf("Complete: %v", err)
		}
	}

	entries, _, err := store.Rewards().List(ctx, repository.RewardFilter{})
	if err != nil {
		t.Fatalf("List rewards: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("zero or absent reward must not create ledger entries, got %d", len(entries))
	}
}

func TestCompleteTwiceConflictsWithoutDoublePay(t *testing.T) {
	svc, store, _ := newTaskFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateInput{Title: "once", AssignedTo: []uint{5}, RewardAmount: amount(50)}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Complete(ctx, task.ID, 5); err != nil {
		t.Fatalf("first Complete: %v", err)
	}

	_, err = svc.Complete(ctx, task.ID, 5)
	if KindOf(err) != KindConflict {
		t.Fatalf("second Complete should conflict, got %v", err)
	}

	entries, _, _ := store.Rewards().List(ctx, repository.RewardFilter{})
	if len(entries) != 1 {
		t.Fatalf("conflicting completion must not add entries, got %d", len(entries))
	}
}

func TestCompleteByWrongUserForbidden(t *testing.T) {
	svc, _, _ := newTaskFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateInput{Title: "mine", AssignedTo: []uint{5}}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = svc.Complete(ctx, task.ID, 6)
	if KindOf(err) != KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCompleteGroupMembersIndependently(t *testing.T) {
	svc, store, _ := newTaskFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateInput{
		Title:        "pair work",
		AssignedTo:   []uint{5, 6},
		RewardAmount: amount(30),
	}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	members, _ := store.Tasks().GroupMembers(ctx, task.ID)
	for _, m := range members {
		if _, err := svc.Complete(ctx, m.ID, *m.AssignedTo); err != nil {
			t.Fatalf("Complete member %d: %v", m.ID, err)
		}
	}

	entries, _, _ := store.Rewards().List(ctx, repository.RewardFilter{})
	if len(entries) != 2 {
		t.Fatalf("each member earns separately, want 2 entries, got %d", len(entries))
	}
}

func TestEachAssigneeEarnsFullReward(t *testing.T) {
	svc, store, _ := newTaskFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateInput{
		Title:        "shared job",
		AssignedTo:   []uint{5, 6, 7},
		RewardAmount: amount(100),
	}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	members, _ := store.Tasks().GroupMembers(ctx, task.ID)
	for _, m := range members {
		if _, err := svc.Complete(ctx, m.ID, *m.AssignedTo); err != nil {
			t.Fatalf("Complete member %d: %v", m.ID, err)
		}
	}

	for _, id := range []uint{5, 6, 7} {
		sum, err := store.Rewards().UserSummary(ctx, id)
		if err != nil {
			t.Fatalf("UserSummary: %v", err)
		}
		if sum.TotalEarned != 100 || sum.Pending != 100 {
			t.Fatalf("user %d summary %+v, want full 100 pending", id, sum)
		}
	}
}

func TestAssignRequiresManagerRole(t *testing.T) {
	svc, _, _ := newTaskFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateInput{Title: "x"}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = svc.Assign(ctx, task.ID, 5, models.RoleOURUser)
	if KindOf(err) != KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAssignByOURManagerStaysInOrg(t *testing.T) {
	svc, store, _ := newTaskFixture()
	ctx := context.Background()

	worker := store.SeedUser(models.User{Name: "W", Email: "w@x.test", Role: models.RoleOURUser, OrgType: models.OrgOUR, IsActive: true})
	outsider := store.SeedUser(models.User{Name: "C", Email: "c@x.test", Role: models.RoleCFCManager, OrgType: models.OrgCFC, IsActive: true})

	task, err := svc.Create(ctx, CreateInput{Title: "x"}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Assign(ctx, task.ID, outsider.ID, models.RoleOURManager)
	if KindOf(err) != KindInvalid {
		t.Fatalf("cross-org reassignment should be invalid, got %v", err)
	}

	got, err := svc.Assign(ctx, task.ID, worker.ID, models.RoleOURManager)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if got.AssignedTo == nil || *got.AssignedTo != worker.ID || got.Status != models.TaskStatusInProgress {
		t.Fatalf("assignment not applied: %+v", got)
	}
}

func TestPickRules(t *testing.T) {
	svc, _, _ := newTaskFixture()
	ctx := context.Background()

	open, err := svc.Create(ctx, CreateInput{Title: "open"}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Pick(ctx, open.ID, cfcAdmin()); KindOf(err) != KindInvalid {
		t.Fatalf("client-org pick should be invalid, got %v", err)
	}

	got, err := svc.Pick(ctx, open.ID, ourUser(9))
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if got.AssignedTo == nil || *got.AssignedTo != 9 || got.Status != models.TaskStatusInProgress {
		t.Fatalf("pick not applied: %+v", got)
	}

	if _, err := svc.Pick(ctx, open.ID, ourUser(10)); KindOf(err) != KindInvalid {
		t.Fatalf("picking an assigned task should be invalid, got %v", err)
	}
}

func TestUpdateGroupAssigneesDiff(t *testing.T) {
	svc, store, _ := newTaskFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateInput{Title: "team work", AssignedTo: []uint{5, 6}}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Drop 5, keep 6, add 7.
	if err := svc.UpdateGroupAssignees(ctx, task.ID, []uint{6, 7}); err != nil {
		t.Fatalf("UpdateGroupAssignees: %v", err)
	}

	members, err := store.Tasks().GroupMembers(ctx, task.ID)
	if err != nil {
		t.Fatalf("GroupMembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 live members, got %d", len(members))
	}
	seen := map[uint]bool{}
	for _, m := range members {
		seen[*m.AssignedTo] = true
	}
	if !seen[6] || !seen[7] || seen[5] {
		t.Fatalf("unexpected membership: %v", seen)
	}
}

func TestUpdateGroupAssigneesPromotesSolo(t *testing.T) {
	svc, store, _ := newTaskFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateInput{Title: "solo", AssignedTo: []uint{5}}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.GroupID != nil {
		t.Fatalf("precondition: solo task must have no group")
	}

	if err := svc.UpdateGroupAssignees(ctx, task.ID, []uint{5, 6}); err != nil {
		t.Fatalf("UpdateGroupAssignees: %v", err)
	}

	members, err := store.Tasks().GroupMembers(ctx, task.ID)
	if err != nil {
		t.Fatalf("GroupMembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members after promotion, got %d", len(members))
	}
	for _, m := range members {
		if *m.GroupID != task.ID {
			t.Errorf("member %d group %d, want %d", m.ID, *m.GroupID, task.ID)
		}
	}
}

func TestDeactivateAndDeleteCascade(t *testing.T) {
	svc, store, _ := newTaskFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateInput{Title: "group", AssignedTo: []uint{5, 6}}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, task.ID); KindOf(err) != KindInvalid {
		t.Fatalf("delete before deactivation should be invalid, got %v", err)
	}

	if err := svc.Deactivate(ctx, task.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	members, _ := store.Tasks().GroupMembers(ctx, task.ID)
	for _, m := range members {
		if m.Status != models.TaskStatusDeactivated {
			t.Errorf("member %d status %q, want deactivated", m.ID, m.Status)
		}
	}

	if err := svc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	members, _ = store.Tasks().GroupMembers(ctx, task.ID)
	if len(members) != 0 {
		t.Fatalf("delete must cascade to the whole group, %d members remain", len(members))
	}
	if _, err := svc.Get(ctx, task.ID); KindOf(err) != KindNotFound {
		t.Fatalf("deleted task should be not found, got %v", err)
	}
}

func TestUnassignedListing(t *testing.T) {
	svc, _, _ := newTaskFixture()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Title: "open one"}, cfcAdmin()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Title: "taken", AssignedTo: []uint{5}}, cfcAdmin()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	open, err := svc.Unassigned(ctx, 1, 10)
	if err != nil {
		t.Fatalf("Unassigned: %v", err)
	}
	if len(open) != 1 || open[0].Title != "open one" {
		t.Fatalf("unexpected unassigned set: %+v", open)
	}
}

func TestListFilters(t *testing.T) {
	svc, _, _ := newTaskFixture()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Title: "daily chore", Type: models.TaskTypeDaily, AssignedTo: []uint{5}}, cfcAdmin()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Title: "one-off", AssignedTo: []uint{6}}, cfcAdmin()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	assignee := uint(5)
	got, total, err := svc.List(ctx, repository.TaskFilter{AssignedTo: &assignee})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].Title != "daily chore" {
		t.Fatalf("filter by assignee failed: total=%d got=%+v", total, got)
	}

	got, _, err = svc.List(ctx, repository.TaskFilter{Type: models.TaskTypeDaily})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("filter by type failed: %+v", got)
	}
}

func TestCompleteRollsBackOnMissingTask(t *testing.T) {
	svc, _, _ := newTaskFixture()

	_, err := svc.Complete(context.Background(), 404, 5)
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateNotifiesAssignees(t *testing.T) {
	svc, _, rec := newTaskFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateInput{Title: "ping", AssignedTo: []uint{5, 6}, DueDate: ptime(time.Now())}, cfcAdmin())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got := rec.Broadcasts(); len(got) != 1 || got[0].Type != notify.EventTaskCreated {
		t.Fatalf("expected one created broadcast, got %+v", got)
	}
	for _, id := range []uint{5, 6} {
		evs := rec.UserEvents(id)
		if len(evs) != 1 || evs[0].Type != notify.EventTaskAssigned || evs[0].TaskID != task.ID {
			t.Fatalf("user %d events: %+v", id, evs)
		}
	}
}

func ptime(t time.Time) *time.Time { return &t }
