package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/utils"
)

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	var got models.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = utils.GetPrincipal(r)
		w.WriteHeader(http.StatusOK)
	})
	h := AuthMiddleware(next)

	// No token.
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", rr.Code)
	}

	// Garbage token.
	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d", rr.Code)
	}

	// Valid token.
	token, err := utils.GenerateJWT(&models.User{
		ID: 7, Name: "Worker", Role: models.RoleOURUser, OrgType: models.OrgOUR,
	})
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("valid token: status %d, body %s", rr.Code, rr.Body.String())
	}
	if got.ID != 7 || got.Role != models.RoleOURUser || got.OrgType != models.OrgOUR {
		t.Fatalf("principal not attached: %+v", got)
	}
}

func TestRequirePermission(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := AuthMiddleware(RequirePermission("task:create")(next))

	issue := func(t *testing.T, role, org string) string {
		t.Helper()
		token, err := utils.GenerateJWT(&models.User{ID: 1, Name: "U", Role: role, OrgType: org})
		if err != nil {
			t.Fatalf("GenerateJWT: %v", err)
		}
		return token
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, models.RoleCFCAdmin, models.OrgCFC))
	guarded.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin should pass: status %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, models.RoleOURUser, models.OrgOUR))
	guarded.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("worker should be denied: status %d", rr.Code)
	}
}

func TestRequirePermissionAnyOf(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// OUR managers hold task:reassign but not task:assign.
	h := RequirePermission("task:assign", "task:reassign")(next)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/tasks/1/assign", nil)
	ctx := context.WithValue(req.Context(), utils.PrincipalKey, models.Principal{ID: 2, Role: models.RoleOURManager, OrgType: models.OrgOUR})
	req = req.WithContext(ctx)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("any-of permission should pass: status %d", rr.Code)
	}
}
