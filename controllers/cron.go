package controllers

import (
	"net/http"
	"os"

	"github.com/sunilgupta-arch/taskflow/scheduler"
	"github.com/sunilgupta-arch/taskflow/utils"
)

// CronController exposes manual triggers for the scheduler's jobs, guarded
// by a shared key. Useful for operations and for external cron services.
type CronController struct {
	sched *scheduler.Scheduler
}

func NewCronController(sched *scheduler.Scheduler) *CronController {
	return &CronController{sched: sched}
}

func cronAuthorized(r *http.Request) bool {
	key := r.Header.Get("X-CRON-KEY")
	return key != "" && key == os.Getenv("CRON_KEY")
}

// POST /api/cron/daily-tasks
func (c *CronController) DailyTasks(w http.ResponseWriter, r *http.Request) {
	if !cronAuthorized(r) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	n, err := c.sched.RegenerateDaily(r.Context())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Regeneration failed"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Cron executed", Data: map[string]interface{}{"created": n}})
}

// POST /api/cron/weekly-tasks
func (c *CronController) WeeklyTasks(w http.ResponseWriter, r *http.Request) {
	if !cronAuthorized(r) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	n, err := c.sched.RegenerateWeekly(r.Context())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Regeneration failed"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Cron executed", Data: map[string]interface{}{"created": n}})
}

// POST /api/cron/attendance-close
func (c *CronController) AttendanceClose(w http.ResponseWriter, r *http.Request) {
	if !cronAuthorized(r) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	n, err := c.sched.CloseOpenAttendance(r.Context())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Attendance cleanup failed"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Cron executed", Data: map[string]interface{}{"closed": n}})
}
