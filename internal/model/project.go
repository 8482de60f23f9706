package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	ProjectNotStarted = "Not Started"
	ProjectInProgress = "In Progress"
	ProjectCompleted  = "Completed"
	ProjectCancelled  = "Cancelled"
)

type Project struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(128);not null" json:"name"`
	Status    string         `gorm:"type:varchar(20);default:'Not Started';index:idx_status" json:"status"`
	StartDate time.Time      `json:"startDate"`
	EndDate   time.Time      `json:"endDate"`
	Progress  int            `gorm:"default:0" json:"progress"`
	Budget    float64        `gorm:"default:0" json:"budget"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Members []User `gorm:"many2many:project_members" json:"members,omitempty"`
	Tasks   []Task `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

func (Project) TableName() string { return "projects" }
