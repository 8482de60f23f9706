package service

import (
	"errors"
	"time"

	"github.com/tawargy/project-manager/internal/model"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type CreateProjectInput struct {
	Name      string
	Status    string
	StartDate time.Time
	EndDate   time.Time
	Progress  int
	Budget    float64
	MemberIDs []uint
}

func (s *ProjectService) Create(in CreateProjectInput) (*model.Project, error) {
	members, err := s.resolveMembers(in.MemberIDs)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		Name:      in.Name,
		Status:    in.Status,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Progress:  in.Progress,
		Budget:    in.Budget,
		Members:   members,
	}
	if err := s.db.Create(project).Error; err != nil {
		return nil, err
	}
	return s.GetByID(project.ID)
}

func (s *ProjectService) List() ([]model.Project, error) {
	var projects []model.Project
	err := s.db.
		Preload("Members").
		Preload("Tasks").
		Preload("Tasks.AssignedTo").
		Order("created_at desc").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectService) GetByID(id uint) (*model.Project, error) {
	var project model.Project
	err := s.db.
		Preload("Members").
		Preload("Tasks").
		First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("Project not found")
		}
		return nil, err
	}
	return &project, nil
}

// Update applies a sparse patch. An empty memberIDs slice leaves the member
// set untouched; only a non-empty list replaces it wholesale. Clearing all
// members through this endpoint is therefore impossible.
func (s *ProjectService) Update(id uint, updates map[string]interface{}, memberIDs []uint) (*model.Project, error) {
	project, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if len(memberIDs) > 0 {
		members, err := s.resolveMembers(memberIDs)
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(project).Association("Members").Replace(members); err != nil {
			return nil, err
		}
	}

	return s.GetByID(id)
}

func (s *ProjectService) Delete(id uint) error {
	result := s.db.Delete(&model.Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NotFoundError("Project not found")
	}
	return nil
}

func (s *ProjectService) resolveMembers(ids []uint) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var members []model.User
	if err := s.db.Find(&members, ids).Error; err != nil {
		return nil, err
	}
	if len(members) != len(ids) {
		return nil, BadRequestError("One or more member ids do not exist")
	}
	return members, nil
}
