package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tawargy/project-manager/internal/middleware"
	"github.com/tawargy/project-manager/internal/model"
	"github.com/tawargy/project-manager/internal/policy"
	"github.com/tawargy/project-manager/internal/service"
)

type TaskHandler struct {
	taskService  *service.TaskService
	auditService *service.AuditService
}

func NewTaskHandler(taskService *service.TaskService, auditService *service.AuditService) *TaskHandler {
	return &TaskHandler{taskService: taskService, auditService: auditService}
}

// OptionalID distinguishes an absent id field from an explicit null.
// Absent leaves the relation untouched, null disconnects it, a value
// connects it.
type OptionalID struct {
	Present bool
	Value   *uint
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Present = true
	if string(b) == "null" {
		return nil
	}
	var v uint
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	if !policy.Allows(middleware.GetCurrentUserRole(c), policy.EntityTask, policy.ActionCreate) {
		Denied(c)
		return
	}

	var req struct {
		Title        string `json:"title" binding:"required,min=3"`
		Description  string `json:"description"`
		Priority     string `json:"priority" binding:"required"`
		Status       string `json:"status" binding:"required"`
		AssignedToID *uint  `json:"assignedToId"`
		ProjectID    uint   `json:"projectId" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Create(service.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       req.Status,
		AssignedToID: req.AssignedToID,
		ProjectID:    req.ProjectID,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	h.audit(c, "create", task.ID, model.JSONMap{"title": task.Title, "projectId": task.ProjectID})
	c.JSON(http.StatusCreated, gin.H{
		"task":    task,
		"message": "Task created successfully",
	})
}

// GET /tasks?projectId=...
func (h *TaskHandler) List(c *gin.Context) {
	projectID := c.Query("projectId")
	if projectID == "" {
		Message(c, http.StatusBadRequest, "Project ID is required")
		return
	}

	tasks, err := h.taskService.ListByProject(parseID(projectID))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GET /tasks/:id
func (h *TaskHandler) GetDetail(c *gin.Context) {
	task, err := h.taskService.GetByID(parseID(c.Param("id")))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id := parseID(c.Param("id"))

	task, err := h.taskService.GetByID(id)
	if err != nil {
		HandleError(c, err)
		return
	}

	// The assignee may update their own task; the permission is not
	// narrowed to the status field.
	if !policy.CanUpdateTask(middleware.GetCurrentUserRole(c), middleware.GetCurrentUserID(c), task) {
		Denied(c)
		return
	}

	var req struct {
		Title        *string    `json:"title" binding:"omitempty,min=3"`
		Description  *string    `json:"description"`
		Priority     *string    `json:"priority" binding:"omitempty,oneof=Low Medium High"`
		Status       *string    `json:"status" binding:"omitempty,oneof=Todo 'In Progress' Review Done"`
		AssignedToID OptionalID `json:"assignedToId"`
	}
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.taskService.Update(c.Request.Context(), id, service.TaskPatch{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       req.Status,
		SetAssignee:  req.AssignedToID.Present,
		AssignedToID: req.AssignedToID.Value,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	h.audit(c, "update", id, nil)
	c.JSON(http.StatusOK, gin.H{
		"task":    updated,
		"message": "Task updated successfully",
	})
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if !policy.Allows(middleware.GetCurrentUserRole(c), policy.EntityTask, policy.ActionDelete) {
		Denied(c)
		return
	}

	id := parseID(c.Param("id"))
	if err := h.taskService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	h.audit(c, "delete", id, nil)
	Message(c, http.StatusOK, "Task deleted successfully")
}

func (h *TaskHandler) audit(c *gin.Context, action string, resourceID uint, detail model.JSONMap) {
	h.auditService.Record(&model.OperationLog{
		UserID:       middleware.GetCurrentUserID(c),
		Action:       action,
		ResourceType: "task",
		ResourceID:   resourceID,
		Detail:       detail,
		IP:           c.ClientIP(),
	})
}
