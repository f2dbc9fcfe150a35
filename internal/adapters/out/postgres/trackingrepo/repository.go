// Package trackingrepo persists the append-only tracking history of orders.
package trackingrepo

import (
	"context"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackingEventDTO is one provider scan. (order_id, occurred_at, status) is
// unique so repeated polls never store an event twice.
type TrackingEventDTO struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tracking_events_unique,priority:1"`
	OccurredAt time.Time `gorm:"not null;uniqueIndex:idx_tracking_events_unique,priority:2"`
	Status     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_tracking_events_unique,priority:3"`
	Location   string    `gorm:"type:varchar(255)"`
	CreatedAt  time.Time
}

func (TrackingEventDTO) TableName() string {
	return "tracking_events"
}

// GormTrackingEventRepository implements TrackingEventRepository using GORM.
type GormTrackingEventRepository struct {
	db *gorm.DB
}

func NewGormTrackingEventRepository(db *gorm.DB) *GormTrackingEventRepository {
	return &GormTrackingEventRepository{db: db}
}

// Append stores the events, skipping ones already recorded.
func (r *GormTrackingEventRepository) Append(ctx context.Context, orderID kernel.UUID, events []order.TrackingEvent) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	dtos := make([]TrackingEventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, TrackingEventDTO{
			OrderID:    orderID.Bytes(),
			OccurredAt: e.OccurredAt(),
			Status:     e.Status(),
			Location:   e.Location(),
		})
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dtos).Error
}

// List returns the order's events oldest first.
func (r *GormTrackingEventRepository) List(ctx context.Context, orderID kernel.UUID) ([]order.TrackingEvent, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []TrackingEventDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("occurred_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]order.TrackingEvent, 0, len(dtos))
	for _, dto := range dtos {
		e, err := order.NewTrackingEvent(dto.OccurredAt.UTC(), dto.Status, dto.Location)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
