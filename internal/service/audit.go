package service

import (
	"log"
	"time"

	"github.com/tawargy/project-manager/internal/model"
	"gorm.io/gorm"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record writes an operation log entry. Audit failures are logged and
// swallowed; they never fail the mutation they describe.
func (s *AuditService) Record(entry *model.OperationLog) {
	if err := s.db.Create(entry).Error; err != nil {
		log.Printf("operation log write failed: %v", err)
	}
}

func (s *AuditService) List(userID *uint, action, resourceType string, startTime, endTime *time.Time, page, pageSize int) ([]model.OperationLog, int64, error) {
	query := s.db.Model(&model.OperationLog{})

	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}
	if startTime != nil {
		query = query.Where("created_at >= ?", *startTime)
	}
	if endTime != nil {
		query = query.Where("created_at <= ?", *endTime)
	}

	var total int64
	query.Count(&total)

	var logs []model.OperationLog
	err := query.Preload("User").
		Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
