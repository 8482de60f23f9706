package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tawargy/project-manager/internal/middleware"
	"github.com/tawargy/project-manager/internal/model"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// GET /dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	projectsByStatus := make(map[string]int64)
	for _, st := range []string{model.ProjectNotStarted, model.ProjectInProgress, model.ProjectCompleted, model.ProjectCancelled} {
		var count int64
		h.db.Model(&model.Project{}).Where("status = ?", st).Count(&count)
		projectsByStatus[st] = count
	}

	tasksByStatus := make(map[string]int64)
	for _, st := range []string{model.TaskTodo, model.TaskInProgress, model.TaskReview, model.TaskDone} {
		var count int64
		h.db.Model(&model.Task{}).Where("status = ?", st).Count(&count)
		tasksByStatus[st] = count
	}

	var myOpenTasks int64
	h.db.Model(&model.Task{}).
		Where("assigned_to_id = ? AND status != ?", userID, model.TaskDone).
		Count(&myOpenTasks)

	var totalProjects int64
	h.db.Model(&model.Project{}).Count(&totalProjects)

	c.JSON(http.StatusOK, gin.H{
		"total_projects":     totalProjects,
		"projects_by_status": projectsByStatus,
		"tasks_by_status":    tasksByStatus,
		"my_open_tasks":      myOpenTasks,
	})
}
