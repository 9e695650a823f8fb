package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sunilgupta-arch/taskflow/database"
	"github.com/sunilgupta-arch/taskflow/middleware"
	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/repository"
	"github.com/sunilgupta-arch/taskflow/services"
	"github.com/sunilgupta-arch/taskflow/utils"
)

type TaskController struct {
	svc *services.TaskService
}

func NewTaskController(svc *services.TaskService) *TaskController {
	return &TaskController{svc: svc}
}

type createTaskRequest struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description"`
	Type         string   `json:"type" validate:"oneof=daily|weekly|adhoc"`
	AssignedTo   []uint   `json:"assigned_to"`
	DueDate      string   `json:"due_date"`
	RewardAmount *float64 `json:"reward_amount"`
}

// POST /api/tasks
func (c *TaskController) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipal(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req createTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		d, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "due_date must be YYYY-MM-DD"})
			return
		}
		dueDate = &d
	}
	if req.RewardAmount != nil {
		rounded := utils.RoundFloat(*req.RewardAmount, 2)
		req.RewardAmount = &rounded
	}

	task, err := c.svc.Create(r.Context(), services.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		AssignedTo:   req.AssignedTo,
		DueDate:      dueDate,
		RewardAmount: req.RewardAmount,
	}, principal)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created successfully", Data: task})
}

// GET /api/tasks
func (c *TaskController) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipal(r)

	f := repository.TaskFilter{
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
		Search: r.URL.Query().Get("search"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}
	// Regular OUR users only see their own assignments.
	if principal.Role == models.RoleOURUser {
		f.AssignedTo = &principal.ID
	}

	tasks, total, err := c.svc.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{
		"tasks":      tasks,
		"pagination": utils.GetPaginationMeta(total, f.Page, f.Limit),
	}})
}

// GET /api/tasks/unassigned
func (c *TaskController) Unassigned(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.svc.Unassigned(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", 20))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: tasks})
}

// GET /api/tasks/{id}
func (c *TaskController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	task, err := c.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: task})
}

type assignRequest struct {
	AssignedTo uint `json:"assigned_to"`
}

// PUT /api/tasks/{id}/assign
func (c *TaskController) Assign(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipal(r)
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	var req assignRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.AssignedTo == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "assigned_to is required"})
		return
	}
	task, err := c.svc.Assign(r.Context(), id, req.AssignedTo, principal.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task assigned", Data: task})
}

// POST /api/tasks/{id}/pick
func (c *TaskController) Pick(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipal(r)
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	task, err := c.svc.Pick(r.Context(), id, principal)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task picked", Data: task})
}

// POST /api/tasks/{id}/complete
func (c *TaskController) Complete(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipal(r)
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	task, err := c.svc.Complete(r.Context(), id, principal.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task completed", Data: task})
}

type groupAssigneesRequest struct {
	Assignees []uint `json:"assignees"`
}

// PUT /api/tasks/{id}/assignees
func (c *TaskController) UpdateAssignees(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	var req groupAssigneesRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if err := c.svc.UpdateGroupAssignees(r.Context(), id, req.Assignees); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task assignees updated"})
}

// POST /api/tasks/{id}/deactivate
func (c *TaskController) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	if err := c.svc.Deactivate(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task deactivated"})
}

// DELETE /api/tasks/{id}
func (c *TaskController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	if err := c.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task deleted"})
}

// POST /api/tasks/{id}/attachments
// Multipart upload; files go to S3-compatible storage, metadata rows to the
// database.
func (c *TaskController) UploadAttachments(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipal(r)
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	if _, err := c.svc.Get(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid multipart body"})
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "No files uploaded"})
		return
	}

	db := database.DB
	var saved []models.TaskAttachment
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Cannot read uploaded file"})
			return
		}
		objectName := fmt.Sprintf("tasks/%d/%d%s", id, time.Now().UnixNano(), filepath.Ext(fh.Filename))
		err = utils.UploadToS3(objectName, f, fh.Size)
		f.Close()
		if err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Upload failed"})
			return
		}

		att := models.TaskAttachment{
			TaskID:       id,
			FilePath:     objectName,
			OriginalName: fh.Filename,
			FileSize:     fh.Size,
			UploadedBy:   principal.ID,
		}
		if err := db.Create(&att).Error; err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
			return
		}
		saved = append(saved, att)
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Attachments uploaded", Data: saved})
}

// GET /api/tasks/{id}/attachments
func (c *TaskController) ListAttachments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	var atts []models.TaskAttachment
	if err := database.DB.Where("task_id = ?", id).Order("id ASC").Find(&atts).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: atts})
}
