package order

import (
	"fmt"

	"shipping/internal/pkg/errs"
)

// Stage is the shipment lifecycle state of an order and the single source of
// truth for which transition may run next.
//
//	accepted ─> registered ─> shipment_created ─> awb_generated ─> courier_assigned ─> pickup_scheduled ─> in_transit ─> delivered*
//	   │                             (courier_assigned directly when the provider returns a courier with the AWB)
//	   └─> rejected* (before registration)
//
// cancelled* is reachable from any non-terminal stage. failed is entered when the
// provider reports a lost, damaged or returned shipment; from failed only cancel
// is allowed. StageNone is the stage of a pending order that has not been accepted.
type Stage int

const (
	StageUnknown Stage = iota
	StageNone
	StageAccepted
	StageRegistered
	StageShipmentCreated
	StageAWBGenerated
	StageCourierAssigned
	StagePickupScheduled
	StageInTransit
	StageDelivered
	StageCancelled
	StageRejected
	StageFailed
)

func getStageStrings() map[Stage]string {
	return map[Stage]string{
		StageUnknown:         "unknown",
		StageNone:            "none",
		StageAccepted:        "accepted",
		StageRegistered:      "registered",
		StageShipmentCreated: "shipment_created",
		StageAWBGenerated:    "awb_generated",
		StageCourierAssigned: "courier_assigned",
		StagePickupScheduled: "pickup_scheduled",
		StageInTransit:       "in_transit",
		StageDelivered:       "delivered",
		StageCancelled:       "cancelled",
		StageRejected:        "rejected",
		StageFailed:          "failed",
	}
}

// Validate checks that the stage is a known value other than StageUnknown.
func (s Stage) Validate() error {
	if s <= StageUnknown || s > StageFailed {
		return errs.NewValueIsInvalidErrorWithCause("stage is invalid", fmt.Errorf("%d is not a valid stage", s))
	}
	return nil
}

func (s Stage) String() string {
	if str, ok := getStageStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// ParseStage converts a persisted stage name back to a Stage.
func ParseStage(s string) (Stage, error) {
	for stage, str := range getStageStrings() {
		if str == s && stage != StageUnknown {
			return stage, nil
		}
	}
	return StageUnknown, errs.NewValueIsInvalidErrorWithCause("stage", fmt.Errorf("%q is not a valid stage", s))
}

// IsTerminal reports whether no further transition is possible.
func (s Stage) IsTerminal() bool {
	return s == StageDelivered || s == StageCancelled || s == StageRejected
}

// IsTrackable reports whether the provider may report movement for this stage.
func (s Stage) IsTrackable() bool {
	return s >= StageAWBGenerated && s <= StageInTransit
}

// TrackableStages lists the stages the tracking poller sweeps.
func TrackableStages() []Stage {
	return []Stage{StageAWBGenerated, StageCourierAssigned, StagePickupScheduled, StageInTransit}
}

func (s Stage) transitionError(transition, reason string) error {
	return errs.NewTransitionIsInvalidError(transition, s.String(), reason)
}

// Accept moves a pending order into the lifecycle.
func (s Stage) Accept() (Stage, error) {
	if s != StageNone {
		return StageUnknown, s.transitionError("accept", "order is not pending")
	}
	return StageAccepted, nil
}

// Reject is allowed only before registration.
func (s Stage) Reject() (Stage, error) {
	if s != StageNone && s != StageAccepted {
		return StageUnknown, s.transitionError("reject", "order is already registered with the provider or closed")
	}
	return StageRejected, nil
}

// Register moves an accepted order to registered.
func (s Stage) Register() (Stage, error) {
	if s != StageAccepted {
		return StageUnknown, s.transitionError("register", "order must be accepted and not yet registered")
	}
	return StageRegistered, nil
}

// CreateShipment moves a registered order to shipment_created.
func (s Stage) CreateShipment() (Stage, error) {
	if s != StageRegistered {
		return StageUnknown, s.transitionError("create_shipment", "order must be registered without a shipment")
	}
	return StageShipmentCreated, nil
}

// GenerateAWB moves a created shipment to awb_generated, or straight to
// courier_assigned when the provider returned the courier with the AWB.
func (s Stage) GenerateAWB(withCourier bool) (Stage, error) {
	if s != StageShipmentCreated {
		return StageUnknown, s.transitionError("generate_awb", "shipment must exist without an AWB")
	}
	if withCourier {
		return StageCourierAssigned, nil
	}
	return StageAWBGenerated, nil
}

// AssignCourier is the post-AWB courier (re)assignment. Once the courier has
// picked the parcel up the assignment is frozen.
func (s Stage) AssignCourier() (Stage, error) {
	switch s { //nolint:exhaustive // all other stages are rejected
	case StageAWBGenerated, StageCourierAssigned, StagePickupScheduled:
		return StageCourierAssigned, nil
	default:
		return StageUnknown, s.transitionError("assign_courier", "courier can only be assigned after AWB generation and before pickup")
	}
}

// SchedulePickup requires an AWB. Rescheduling keeps the stage.
func (s Stage) SchedulePickup() (Stage, error) {
	switch s { //nolint:exhaustive // all other stages are rejected
	case StageAWBGenerated, StageCourierAssigned, StagePickupScheduled:
		return StagePickupScheduled, nil
	default:
		return StageUnknown, s.transitionError("schedule_pickup", "pickup requires an AWB and a shipment that has not been picked up")
	}
}

// MarkInTransit is driven by tracking. in_transit to in_transit is allowed so
// repeated scans only refresh the tracking status.
func (s Stage) MarkInTransit() (Stage, error) {
	if !s.IsTrackable() {
		return StageUnknown, s.transitionError("mark_in_transit", "shipment is not trackable")
	}
	return StageInTransit, nil
}

// MarkDelivered is driven by tracking.
func (s Stage) MarkDelivered() (Stage, error) {
	if !s.IsTrackable() {
		return StageUnknown, s.transitionError("mark_delivered", "shipment is not trackable")
	}
	return StageDelivered, nil
}

// Fail records a provider-reported terminal failure.
func (s Stage) Fail() (Stage, error) {
	if s.IsTerminal() || s == StageFailed || s == StageNone {
		return StageUnknown, s.transitionError("mark_failed", "order is not in an active stage")
	}
	return StageFailed, nil
}

// Cancel is allowed from every non-terminal stage, failed included.
func (s Stage) Cancel() (Stage, error) {
	if s.IsTerminal() || s == StageUnknown {
		return StageUnknown, s.transitionError("cancel", "order is already closed")
	}
	return StageCancelled, nil
}
