package controllers

import (
	"net/http"

	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/repository"
	"github.com/sunilgupta-arch/taskflow/services"
	"github.com/sunilgupta-arch/taskflow/utils"
)

type RewardController struct {
	svc *services.RewardService
}

func NewRewardController(svc *services.RewardService) *RewardController {
	return &RewardController{svc: svc}
}

// GET /api/rewards
func (c *RewardController) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipal(r)

	f := repository.RewardFilter{
		Status: r.URL.Query().Get("status"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}
	// Only admins see the whole ledger.
	if principal.Role != models.RoleCFCAdmin && principal.Role != models.RoleOURAdmin {
		f.UserID = &principal.ID
	} else if uid := queryInt(r, "user_id", 0); uid > 0 {
		u := uint(uid)
		f.UserID = &u
	}

	entries, total, err := c.svc.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{
		"rewards":    entries,
		"pagination": utils.GetPaginationMeta(total, f.Page, f.Limit),
	}})
}

// GET /api/rewards/summary
func (c *RewardController) Summary(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipal(r)
	summary, err := c.svc.UserSummary(r.Context(), principal.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: summary})
}

// POST /api/rewards/{id}/paid
func (c *RewardController) MarkPaid(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipal(r)
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid reward id"})
		return
	}
	if err := c.svc.MarkPaid(r.Context(), id, principal.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Reward marked as paid"})
}
