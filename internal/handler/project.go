package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tawargy/project-manager/internal/middleware"
	"github.com/tawargy/project-manager/internal/model"
	"github.com/tawargy/project-manager/internal/policy"
	"github.com/tawargy/project-manager/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	auditService   *service.AuditService
}

func NewProjectHandler(projectService *service.ProjectService, auditService *service.AuditService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, auditService: auditService}
}

// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	if !policy.Allows(middleware.GetCurrentUserRole(c), policy.EntityProject, policy.ActionCreate) {
		Denied(c)
		return
	}

	var req struct {
		Name      string   `json:"name" binding:"required,min=3"`
		Status    string   `json:"status" binding:"required"`
		StartDate string   `json:"startDate" binding:"required"`
		EndDate   string   `json:"endDate" binding:"required"`
		Progress  *int     `json:"progress" binding:"required,min=0,max=100"`
		Budget    *float64 `json:"budget" binding:"required,min=0"`
		MemberIDs []uint   `json:"memberIds"`
	}
	if !bindJSON(c, &req) {
		return
	}

	// Dates are only checked for parseability; start after end is accepted
	// the same way the original API accepted it.
	startDate, ok := parseDate(req.StartDate)
	if !ok {
		ValidationFailed(c, []ValidationIssue{{Field: "startDate", Message: "Invalid start date"}})
		return
	}
	endDate, ok := parseDate(req.EndDate)
	if !ok {
		ValidationFailed(c, []ValidationIssue{{Field: "endDate", Message: "Invalid end date"}})
		return
	}

	project, err := h.projectService.Create(service.CreateProjectInput{
		Name:      req.Name,
		Status:    req.Status,
		StartDate: startDate,
		EndDate:   endDate,
		Progress:  *req.Progress,
		Budget:    *req.Budget,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	h.audit(c, "create", project.ID, model.JSONMap{"name": project.Name})
	c.JSON(http.StatusCreated, gin.H{
		"project": project,
		"message": "Project created successfully",
	})
}

// GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List()
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GET /projects/:id
func (h *ProjectHandler) GetDetail(c *gin.Context) {
	project, err := h.projectService.GetByID(parseID(c.Param("id")))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	if !policy.Allows(middleware.GetCurrentUserRole(c), policy.EntityProject, policy.ActionUpdate) {
		Message(c, http.StatusForbidden, "Only Admins and Project Managers can update projects")
		return
	}

	id := parseID(c.Param("id"))

	var req struct {
		Name      *string  `json:"name" binding:"omitempty,min=3"`
		Status    *string  `json:"status"`
		StartDate *string  `json:"startDate"`
		EndDate   *string  `json:"endDate"`
		Progress  *int     `json:"progress" binding:"omitempty,min=0,max=100"`
		Budget    *float64 `json:"budget" binding:"omitempty,min=0"`
		MemberIDs []uint   `json:"memberIds"`
	}
	if !bindJSON(c, &req) {
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.StartDate != nil {
		t, ok := parseDate(*req.StartDate)
		if !ok {
			ValidationFailed(c, []ValidationIssue{{Field: "startDate", Message: "Invalid start date"}})
			return
		}
		updates["start_date"] = t
	}
	if req.EndDate != nil {
		t, ok := parseDate(*req.EndDate)
		if !ok {
			ValidationFailed(c, []ValidationIssue{{Field: "endDate", Message: "Invalid end date"}})
			return
		}
		updates["end_date"] = t
	}
	if req.Progress != nil {
		updates["progress"] = *req.Progress
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}

	project, err := h.projectService.Update(id, updates, req.MemberIDs)
	if err != nil {
		HandleError(c, err)
		return
	}

	h.audit(c, "update", id, nil)
	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"message": "Project updated successfully",
	})
}

// DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if !policy.Allows(middleware.GetCurrentUserRole(c), policy.EntityProject, policy.ActionDelete) {
		Denied(c)
		return
	}

	id := parseID(c.Param("id"))
	if err := h.projectService.Delete(id); err != nil {
		HandleError(c, err)
		return
	}

	h.audit(c, "delete", id, nil)
	Message(c, http.StatusOK, "Project deleted successfully")
}

func (h *ProjectHandler) audit(c *gin.Context, action string, resourceID uint, detail model.JSONMap) {
	h.auditService.Record(&model.OperationLog{
		UserID:       middleware.GetCurrentUserID(c),
		Action:       action,
		ResourceType: "project",
		ResourceID:   resourceID,
		Detail:       detail,
		IP:           c.ClientIP(),
	})
}
