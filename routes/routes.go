package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/sunilgupta-arch/taskflow/controllers"
	"github.com/sunilgupta-arch/taskflow/middleware"
)

// Controllers bundles the handler sets the router wires up.
type Controllers struct {
	Auth       *controllers.AuthController
	Tasks      *controllers.TaskController
	Rewards    *controllers.RewardController
	Attendance *controllers.AttendanceController
	Cron       *controllers.CronController
}

func InitRouter(c Controllers) http.Handler {
	r := mux.NewRouter()

	// Health check endpoint for container health checks
	r.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "taskflow-api",
		})
	})).Methods(http.MethodGet)

	// Public
	r.HandleFunc("/api/auth/login", c.Auth.Login).Methods(http.MethodPost)

	// Cron triggers are guarded by X-CRON-KEY, not by a session
	r.HandleFunc("/api/cron/daily-tasks", c.Cron.DailyTasks).Methods(http.MethodPost)
	r.HandleFunc("/api/cron/weekly-tasks", c.Cron.WeeklyTasks).Methods(http.MethodPost)
	r.HandleFunc("/api/cron/attendance-close", c.Cron.AttendanceClose).Methods(http.MethodPost)

	// Authenticated API
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware)

	perm := func(h http.HandlerFunc, perms ...string) http.Handler {
		return middleware.RequirePermission(perms...)(h)
	}

	// Tasks
	api.Handle("/tasks", perm(c.Tasks.Create, "task:create")).Methods(http.MethodPost)
	api.HandleFunc("/tasks", c.Tasks.List).Methods(http.MethodGet)
	api.HandleFunc("/tasks/unassigned", c.Tasks.Unassigned).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id:[0-9]+}", c.Tasks.Get).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}/assign", perm(c.Tasks.Assign, "task:assign", "task:reassign")).Methods(http.MethodPut)
	api.Handle("/tasks/{id:[0-9]+}/pick", perm(c.Tasks.Pick, "task:pick")).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/complete", perm(c.Tasks.Complete, "task:complete")).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/assignees", perm(c.Tasks.UpdateAssignees, "task:update")).Methods(http.MethodPut)
	api.Handle("/tasks/{id:[0-9]+}/deactivate", perm(c.Tasks.Deactivate, "task:deactivate")).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}", perm(c.Tasks.Delete, "task:delete")).Methods(http.MethodDelete)
	api.Handle("/tasks/{id:[0-9]+}/attachments", perm(c.Tasks.UploadAttachments, "task:upload_attachment", "task:update")).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id:[0-9]+}/attachments", c.Tasks.ListAttachments).Methods(http.MethodGet)

	// Rewards
	api.HandleFunc("/rewards", c.Rewards.List).Methods(http.MethodGet)
	api.HandleFunc("/rewards/summary", c.Rewards.Summary).Methods(http.MethodGet)
	api.Handle("/rewards/{id:[0-9]+}/paid", perm(c.Rewards.MarkPaid, "reward:mark_paid")).Methods(http.MethodPost)

	// Attendance
	api.Handle("/attendance/clock-in", perm(c.Attendance.ClockIn, "attendance:clock")).Methods(http.MethodPost)
	api.Handle("/attendance/clock-out", perm(c.Attendance.ClockOut, "attendance:clock")).Methods(http.MethodPost)

	// Dashboard
	api.HandleFunc("/dashboard", controllers.GetDashboardStats).Methods(http.MethodGet)

	// CORS - origins from CORS_ALLOWED_ORIGINS (comma-separated)
	origins := []string{"http://localhost:3000", "http://localhost:8080"}
	if env := os.Getenv("CORS_ALLOWED_ORIGINS"); env != "" {
		origins = origins[:0]
		for _, p := range strings.Split(env, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID", "X-CRON-KEY"}),
		handlers.AllowCredentials(),
	)

	return cors(r)
}
