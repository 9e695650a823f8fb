package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/repository/memstore"
	"github.com/sunilgupta-arch/taskflow/services"
	"github.com/sunilgupta-arch/taskflow/utils"
)

// testRouter mounts the task routes behind a stub auth middleware that
// injects the given principal directly.
func testRouter(store *memstore.Store, principal models.Principal) http.Handler {
	svc := services.NewTaskService(store, nil)
	c := NewTaskController(svc)

	r := mux.NewRouter()
	r.HandleFunc("/api/tasks", c.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks/{id:[0-9]+}", c.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/{id:[0-9]+}/pick", c.Pick).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks/{id:[0-9]+}/complete", c.Complete).Methods(http.MethodPost)

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := context.WithValue(req.Context(), utils.PrincipalKey, principal)
		r.ServeHTTP(w, req.WithContext(ctx))
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp utils.APIResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return rr, resp
}

func TestCreateTaskEndpoint(t *testing.T) {
	store := memstore.New()
	admin := models.Principal{ID: 1, Name: "Admin", Role: models.RoleCFCAdmin, OrgType: models.OrgCFC}
	h := testRouter(store, admin)

	rr, resp := doJSON(t, h, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":       "quarterly audit",
		"type":        "adhoc",
		"assigned_to": []uint{5, 6},
		"due_date":    "2026-09-15",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rr.Code, rr.Body.String())
	}
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
}

func TestCreateTaskEndpointRejectsMissingTitle(t *testing.T) {
	store := memstore.New()
	admin := models.Principal{ID: 1, Role: models.RoleCFCAdmin, OrgType: models.OrgCFC}
	h := testRouter(store, admin)

	rr, resp := doJSON(t, h, http.MethodPost, "/api/tasks", map[string]interface{}{"type": "adhoc"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, body %s", rr.Code, rr.Body.String())
	}
	if resp.Success {
		t.Fatalf("expected failure, got %+v", resp)
	}
}

func TestCreateTaskEndpointForbiddenForExecutor(t *testing.T) {
	store := memstore.New()
	worker := models.Principal{ID: 9, Role: models.RoleOURUser, OrgType: models.OrgOUR}
	h := testRouter(store, worker)

	rr, _ := doJSON(t, h, http.MethodPost, "/api/tasks", map[string]interface{}{"title": "x"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestPickAndCompleteEndpoints(t *testing.T) {
	store := memstore.New()
	admin := models.Principal{ID: 1, Role: models.RoleCFCAdmin, OrgType: models.OrgCFC}
	worker := models.Principal{ID: 9, Role: models.RoleOURUser, OrgType: models.OrgOUR}

	svc := services.NewTaskService(store, nil)
	task, err := svc.Create(context.Background(), services.CreateInput{Title: "open"}, admin)
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}

	h := testRouter(store, worker)
	rr, _ := doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/tasks/%d/pick", task.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("pick status %d, body %s", rr.Code, rr.Body.String())
	}

	rr, _ = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("complete status %d, body %s", rr.Code, rr.Body.String())
	}

	// Completing again conflicts.
	rr, _ = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("repeat complete status %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestGetTaskEndpointNotFound(t *testing.T) {
	store := memstore.New()
	admin := models.Principal{ID: 1, Role: models.RoleCFCAdmin, OrgType: models.OrgCFC}
	h := testRouter(store, admin)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/404", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d, body %s", rr.Code, rr.Body.String())
	}
}
