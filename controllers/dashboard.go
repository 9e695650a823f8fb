package controllers

import (
	"net/http"

	"github.com/sunilgupta-arch/taskflow/database"
	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/utils"
)

type TaskStats struct {
	Total          int64 `json:"total"`
	Pending        int64 `json:"pending"`
	InProgress     int64 `json:"in_progress"`
	Completed      int64 `json:"completed"`
	CompletedToday int64 `json:"completed_today"`
}

type RewardStats struct {
	TotalAmount   float64 `json:"total_amount"`
	PendingAmount float64 `json:"pending_amount"`
	PaidAmount    float64 `json:"paid_amount"`
}

type DashboardStats struct {
	Tasks   TaskStats   `json:"tasks"`
	Rewards RewardStats `json:"rewards"`
}

// GET /api/dashboard
// Admins and managers see global counters; OUR users see their own slice.
func GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipal(r)
	db := database.DB

	taskScope := db.Model(&models.Task{}).Where("is_deleted = 0")
	rewardScope := db.Model(&models.RewardEntry{})
	if principal.Role == models.RoleOURUser {
		taskScope = taskScope.Where("assigned_to = ?", principal.ID)
		rewardScope = rewardScope.Where("user_id = ?", principal.ID)
	}

	var stats DashboardStats
	err := taskScope.
		Select(`COUNT(*) as total,
			SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END) as pending,
			SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END) as in_progress,
			SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END) as completed,
			SUM(CASE WHEN status = 'completed' AND DATE(completed_at) = CURDATE() THEN 1 ELSE 0 END) as completed_today`).
		Scan(&stats.Tasks).Error
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	err = rewardScope.
		Select(`COALESCE(SUM(reward_amount), 0) as total_amount,
			COALESCE(SUM(CASE WHEN status = 'pending' THEN reward_amount END), 0) as pending_amount,
			COALESCE(SUM(CASE WHEN status = 'paid' THEN reward_amount END), 0) as paid_amount`).
		Scan(&stats.Rewards).Error
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: stats})
}
