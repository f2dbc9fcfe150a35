// Package reconciliationrepo persists reconciliation issues awaiting manual review.
package reconciliationrepo

import (
	"context"
	"errors"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"
	"shipping/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReconciliationIssueDTO represents a stored reconciliation issue.
type ReconciliationIssueDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Stage     int       `gorm:"type:smallint;not null"`
	Detail    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
	Resolved  bool      `gorm:"not null;default:false;index"`
}

func (ReconciliationIssueDTO) TableName() string {
	return "reconciliation_issues"
}

func fromDomain(issue *order.ReconciliationIssue) ReconciliationIssueDTO {
	return ReconciliationIssueDTO{
		ID:        issue.ID().Bytes(),
		OrderID:   issue.OrderID().Bytes(),
		Stage:     int(issue.Stage()),
		Detail:    issue.Detail(),
		CreatedAt: issue.CreatedAt(),
		Resolved:  issue.Resolved(),
	}
}

// ToDomain converts a stored row back to a ReconciliationIssue.
func ToDomain(dto ReconciliationIssueDTO) (*order.ReconciliationIssue, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	return order.RestoreReconciliationIssue(id, orderID, order.Stage(dto.Stage), dto.Detail, dto.CreatedAt.UTC(), dto.Resolved), nil
}

// GormReconciliationRepository implements ReconciliationRepository using GORM.
type GormReconciliationRepository struct {
	db *gorm.DB
}

func NewGormReconciliationRepository(db *gorm.DB) *GormReconciliationRepository {
	return &GormReconciliationRepository{db: db}
}

func (r *GormReconciliationRepository) Add(ctx context.Context, issue *order.ReconciliationIssue) error {
	dto := fromDomain(issue)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update stores the resolution state; the rest of an issue never changes.
func (r *GormReconciliationRepository) Update(ctx context.Context, issue *order.ReconciliationIssue) error {
	result := r.db.WithContext(ctx).
		Model(&ReconciliationIssueDTO{}).
		Where("id = ?", issue.ID().Bytes()).
		Update("resolved", issue.Resolved())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("reconciliation issue", issue.ID().String())
	}
	return nil
}

func (r *GormReconciliationRepository) Get(ctx context.Context, id kernel.UUID) (*order.ReconciliationIssue, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ReconciliationIssueDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("reconciliation issue", id.String())
		}
		return nil, err
	}
	return ToDomain(dto)
}
