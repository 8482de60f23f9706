package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	TaskTodo       = "Todo"
	TaskInProgress = "In Progress"
	TaskReview     = "Review"
	TaskDone       = "Done"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// A task belongs to exactly one project; ProjectID is set at creation and
// never reassigned afterwards.
type Task struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"type:varchar(128);not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Priority     string         `gorm:"type:varchar(10);default:'Medium'" json:"priority"`
	Status       string         `gorm:"type:varchar(20);default:'Todo';index:idx_task_status" json:"status"`
	AssignedToID *uint          `gorm:"index:idx_assigned_to" json:"assignedToId"`
	ProjectID    uint           `gorm:"not null;index:idx_project_id" json:"projectId"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	AssignedTo *User    `gorm:"foreignKey:AssignedToID" json:"assignedTo,omitempty"`
	Project    *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (Task) TableName() string { return "tasks" }
