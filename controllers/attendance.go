package controllers

import (
	"net/http"
	"time"

	"github.com/sunilgupta-arch/taskflow/repository"
	"github.com/sunilgupta-arch/taskflow/utils"
)

type AttendanceController struct {
	store repository.Store
}

func NewAttendanceController(store repository.Store) *AttendanceController {
	return &AttendanceController{store: store}
}

// POST /api/attendance/clock-in
func (c *AttendanceController) ClockIn(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipal(r)
	now := time.Now()
	created, err := c.store.Attendance().ClockIn(r.Context(), principal.ID, now.Format("2006-01-02"), now.Format("15:04:05"))
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	if !created {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Already clocked in today"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Clocked in"})
}

// POST /api/attendance/clock-out
func (c *AttendanceController) ClockOut(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipal(r)
	now := time.Now()
	closed, err := c.store.Attendance().ClockOut(r.Context(), principal.ID, now.Format("2006-01-02"), now.Format("15:04:05"))
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	if !closed {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "No open session today"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Clocked out"})
}
