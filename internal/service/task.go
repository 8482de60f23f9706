package service

import (
	"context"
	"errors"

	"github.com/tawargy/project-manager/internal/model"
	"github.com/tawargy/project-manager/internal/ws"
	"gorm.io/gorm"
)

type TaskService struct {
	db  *gorm.DB
	hub *ws.Hub
}

func NewTaskService(db *gorm.DB, hub *ws.Hub) *TaskService {
	return &TaskService{db: db, hub: hub}
}

type CreateTaskInput struct {
	Title        string
	Description  string
	Priority     string
	Status       string
	AssignedToID *uint
	ProjectID    uint
}

// TaskPatch is a sparse update. Nil pointers mean "leave as is".
// SetAssignee distinguishes an absent assignedToId from an explicit null:
// when true with a nil AssignedToID the assignee is disconnected.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *string
	Status       *string
	SetAssignee  bool
	AssignedToID *uint
}

func (s *TaskService) Create(in CreateTaskInput) (*model.Task, error) {
	var count int64
	s.db.Model(&model.Project{}).Where("id = ?", in.ProjectID).Count(&count)
	if count == 0 {
		return nil, NotFoundError("Project not found")
	}

	if in.AssignedToID != nil {
		if err := s.checkAssignee(*in.AssignedToID); err != nil {
			return nil, err
		}
	}

	task := &model.Task{
		Title:        in.Title,
		Description:  in.Description,
		Priority:     in.Priority,
		Status:       in.Status,
		AssignedToID: in.AssignedToID,
		ProjectID:    in.ProjectID,
	}
	if err := s.db.Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) ListByProject(projectID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := s.db.
		Preload("AssignedTo").
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) GetByID(id uint) (*model.Task, error) {
	var task model.Task
	err := s.db.
		Preload("AssignedTo").
		Preload("Project").
		Preload("Project.Members").
		First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("Task not found")
		}
		return nil, err
	}
	return &task, nil
}

// Update applies the patch and notifies watchers of the task's project.
// The project reference itself is immutable; no patch field can move a task
// between projects.
func (s *TaskService) Update(ctx context.Context, id uint, patch TaskPatch) (*model.Task, error) {
	_, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Priority != nil {
		updates["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.SetAssignee {
		if patch.AssignedToID != nil {
			if err := s.checkAssignee(*patch.AssignedToID); err != nil {
				return nil, err
			}
		}
		updates["assigned_to_id"] = patch.AssignedToID
	}

	if len(updates) > 0 {
		if err := s.db.Model(&model.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	updated, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ctx, ws.Event{
		Type:      ws.TaskUpdated,
		ProjectID: updated.ProjectID,
		TaskID:    updated.ID,
		Data:      updated,
	})
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	task, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&model.Task{}, id).Error; err != nil {
		return err
	}

	s.hub.Publish(ctx, ws.Event{
		Type:      ws.TaskDeleted,
		ProjectID: task.ProjectID,
		TaskID:    task.ID,
	})
	return nil
}

func (s *TaskService) checkAssignee(userID uint) error {
	var count int64
	s.db.Model(&model.User{}).Where("id = ?", userID).Count(&count)
	if count == 0 {
		return BadRequestError("Assigned user does not exist")
	}
	return nil
}
