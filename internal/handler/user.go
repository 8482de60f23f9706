package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tawargy/project-manager/internal/middleware"
	"github.com/tawargy/project-manager/internal/model"
	"github.com/tawargy/project-manager/internal/policy"
	"github.com/tawargy/project-manager/internal/service"
)

type UserHandler struct {
	userService  *service.UserService
	auditService *service.AuditService
}

func NewUserHandler(userService *service.UserService, auditService *service.AuditService) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// POST /user (public)
func (h *UserHandler) Signup(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=10"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "user created successfully",
	})
}

// GET /user
func (h *UserHandler) List(c *gin.Context) {
	if !policy.Allows(middleware.GetCurrentUserRole(c), policy.EntityUser, policy.ActionRead) {
		Denied(c)
		return
	}

	users, err := h.userService.List()
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GET /user/me
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": user.Brief()})
}

// PATCH /user/:id
func (h *UserHandler) UpdateRole(c *gin.Context) {
	if !policy.Allows(middleware.GetCurrentUserRole(c), policy.EntityUser, policy.ActionUpdate) {
		Denied(c)
		return
	}

	id := parseID(c.Param("id"))
	var req struct {
		Role string `json:"role" binding:"required,oneof=Admin ProjectManager Developer"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateRole(id, req.Role)
	if err != nil {
		HandleError(c, err)
		return
	}

	h.audit(c, "update_role", id, model.JSONMap{"role": req.Role})
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DELETE /user/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if !policy.Allows(middleware.GetCurrentUserRole(c), policy.EntityUser, policy.ActionDelete) {
		Denied(c)
		return
	}

	id := parseID(c.Param("id"))
	if err := h.userService.Delete(id); err != nil {
		HandleError(c, err)
		return
	}

	h.audit(c, "delete", id, nil)
	Message(c, http.StatusOK, "User deleted successfully")
}

// GET /admin/operation-logs
func (h *UserHandler) ListOperationLogs(c *gin.Context) {
	if !policy.Allows(middleware.GetCurrentUserRole(c), policy.EntityUser, policy.ActionRead) {
		Denied(c)
		return
	}

	page, pageSize := parsePage(c)

	var userID *uint
	if s := c.Query("user_id"); s != "" {
		v := parseID(s)
		userID = &v
	}
	action := c.Query("action")
	resourceType := c.Query("resource_type")

	var startTime, endTime *time.Time
	if s := c.Query("start_time"); s != "" {
		if t, ok := parseDate(s); ok {
			startTime = &t
		}
	}
	if s := c.Query("end_time"); s != "" {
		if t, ok := parseDate(s); ok {
			endTime = &t
		}
	}

	logs, total, err := h.auditService.List(userID, action, resourceType, startTime, endTime, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":      logs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *UserHandler) audit(c *gin.Context, action string, resourceID uint, detail model.JSONMap) {
	h.auditService.Record(&model.OperationLog{
		UserID:       middleware.GetCurrentUserID(c),
		Action:       action,
		ResourceType: "user",
		ResourceID:   resourceID,
		Detail:       detail,
		IP:           c.ClientIP(),
	})
}
