package order

import (
	"sort"
	"strings"
	"time"

	"shipping/internal/pkg/errs"
)

// TrackingEvent is one scan reported by the provider. Events are append-only.
type TrackingEvent struct {
	occurredAt time.Time
	status     string
	location   string
}

// NewTrackingEvent requires a timestamp and a status text.
func NewTrackingEvent(occurredAt time.Time, status, location string) (TrackingEvent, error) {
	if occurredAt.IsZero() {
		return TrackingEvent{}, errs.NewValueIsRequiredError("occurred_at")
	}
	if strings.TrimSpace(status) == "" {
		return TrackingEvent{}, errs.NewValueIsRequiredError("tracking status")
	}
	return TrackingEvent{
		occurredAt: occurredAt.UTC(),
		status:     strings.TrimSpace(status),
		location:   strings.TrimSpace(location),
	}, nil
}

func (e TrackingEvent) OccurredAt() time.Time { return e.occurredAt }
func (e TrackingEvent) Status() string        { return e.status }
func (e TrackingEvent) Location() string      { return e.location }

// TrackingSignal is what a provider status text means for the lifecycle.
type TrackingSignal int

const (
	// SignalNone only refreshes tracking_status.
	SignalNone TrackingSignal = iota
	SignalInTransit
	SignalDelivered
	// SignalFailed covers lost, damaged and return-to-origin deliveries.
	SignalFailed
	// SignalCancelled means the provider cancelled a shipment we still consider open.
	SignalCancelled
)

var inTransitMarkers = []string{
	"picked up", "pickup done", "in transit", "out for delivery", "shipped", "dispatched", "reached",
}

var failedMarkers = []string{"lost", "damaged", "destroyed"}

// ClassifyTrackingStatus maps free-form provider text such as "OUT_FOR_DELIVERY"
// or "RTO Delivered" onto a TrackingSignal.
func ClassifyTrackingStatus(status string) TrackingSignal {
	s := strings.ToLower(strings.TrimSpace(status))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)

	switch {
	case strings.HasPrefix(s, "rto") && strings.Contains(s, "delivered"):
		return SignalFailed
	case containsAny(s, failedMarkers):
		return SignalFailed
	case strings.Contains(s, "undelivered"):
		return SignalNone
	case strings.Contains(s, "cancel"):
		return SignalCancelled
	case strings.Contains(s, "delivered"):
		return SignalDelivered
	case containsAny(s, inTransitMarkers):
		return SignalInTransit
	default:
		return SignalNone
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// SortTrackingEvents orders events oldest first; events with equal
// timestamps keep their provider order.
func SortTrackingEvents(events []TrackingEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].occurredAt.Before(events[j].occurredAt)
	})
}
