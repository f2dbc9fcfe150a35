package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// StageChange is a committed move between two lifecycle stages. Orders collect
// them so the application layer can publish events after the transaction commits.
type StageChange struct {
	From   Stage
	To     Stage
	Status Status
}

// Order is the aggregate root of the shipment lifecycle. It owns the shipment
// and is the only place stage transitions are decided; handlers perform the
// remote calls and then hand the provider's answer to an Order method.
//
// Order follows these invariants:
//   - Must have a valid unique identifier, customer and parcel snapshot
//   - A shipment exists from the accepted stage onwards
//   - awbCode implies shipmentID implies providerOrderID
//   - Stage transitions follow Stage; a failed method leaves the order untouched
//   - Can only be created through NewOrder or RestoreOrder
type Order struct {
	// id is the merchant's order id
	id kernel.UUID

	// status is the business status shown to operators
	status Status

	// stage is the shipment lifecycle state
	stage Stage

	// failedStage is the stage the order was in when it entered StageFailed
	failedStage Stage

	paymentStatus PaymentStatus
	customer      Customer
	parcel        Parcel

	// shipment is nil until the order is accepted
	shipment *Shipment

	// changes are stage moves not yet handed to the publisher
	changes []StageChange

	isConstructed bool
}

// NewOrder creates a pending order from a completed checkout.
//
// Parameters:
//   - id: merchant order id (must be a valid UUID)
//   - customer: buyer snapshot
//   - parcel: package dimensions, weight and declared value
//   - payment: how the customer paid
//
// Returns:
//   - *Order: a pending order at StageNone with no shipment
//   - error: every invalid parameter joined together
//
// Example:
//
//	o, err := order.NewOrder(kernel.NewUUID(), customer, parcel, order.PaymentPaid)
//	if err != nil {
//	    return err
//	}
func NewOrder(id kernel.UUID, customer Customer, parcel Parcel, payment PaymentStatus) (*Order, error) {
	o := &Order{
		status:        Pending,
		stage:         StageNone,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setPaymentStatus(payment),
		customer.Address().Validate(),
	); err != nil {
		return nil, err
	}
	o.customer = customer
	o.parcel = parcel

	return o, nil
}

// Snapshot carries the persisted state of an order into RestoreOrder.
type Snapshot struct {
	ID            kernel.UUID
	Status        Status
	Stage         Stage
	FailedStage   Stage
	PaymentStatus PaymentStatus
	Customer      Customer
	Parcel        Parcel
	Shipment      *Shipment
}

// RestoreOrder rebuilds an order loaded from storage and re-checks that the
// stage agrees with the shipment fields.
//
// Returns:
//   - *Order: the restored aggregate with no pending stage changes
//   - error: if any field is invalid or the stage contradicts the shipment
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		id:            s.ID,
		status:        s.Status,
		stage:         s.Stage,
		failedStage:   s.FailedStage,
		paymentStatus: s.PaymentStatus,
		customer:      s.Customer,
		parcel:        s.Parcel,
		shipment:      s.Shipment,
		isConstructed: true,
	}

	if err := errors.Join(
		s.ID.Validate(),
		s.Status.Validate(),
		s.Stage.Validate(),
		s.PaymentStatus.Validate(),
		o.validateStageFields(),
	); err != nil {
		return nil, fmt.Errorf("restore order %s: %w", s.ID, err)
	}

	return o, nil
}

// Snapshot captures the persisted state of the order. Pending stage changes
// are not part of it.
func (o *Order) Snapshot() Snapshot {
	s := Snapshot{
		ID:            o.id,
		Status:        o.status,
		Stage:         o.stage,
		FailedStage:   o.failedStage,
		PaymentStatus: o.paymentStatus,
		Customer:      o.customer,
		Parcel:        o.parcel,
	}
	if o.shipment != nil {
		shipment := *o.shipment
		s.Shipment = &shipment
	}
	return s
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by id.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the merchant order id.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Status returns the business status.
func (o *Order) Status() Status {
	return o.status
}

// Stage returns the lifecycle stage.
func (o *Order) Stage() Stage {
	return o.stage
}

// FailedStage returns the stage the order failed in, StageUnknown otherwise.
func (o *Order) FailedStage() Stage {
	return o.failedStage
}

func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

func (o *Order) Customer() Customer {
	return o.customer
}

func (o *Order) Parcel() Parcel {
	return o.parcel
}

// Shipment returns nil for a pending or rejected-before-accept order.
func (o *Order) Shipment() *Shipment {
	return o.shipment
}

// PullChanges returns and clears the stage changes recorded since the order
// was loaded.
func (o *Order) PullChanges() []StageChange {
	changes := o.changes
	o.changes = nil
	return changes
}

// Accept moves a pending order into the lifecycle and opens its shipment.
func (o *Order) Accept() error {
	next, err := o.stage.Accept()
	if err != nil {
		return err
	}

	o.shipment = newShipment()
	o.status = Accepted
	o.moveTo(next)
	return nil
}

// Reject closes an order before it is registered with the provider.
func (o *Order) Reject() error {
	if o.IsRegistered() {
		return errs.NewTransitionIsInvalidError("reject", o.stage.String(), "order is already registered with the provider")
	}
	next, err := o.stage.Reject()
	if err != nil {
		return err
	}

	o.status = Rejected
	o.moveTo(next)
	return nil
}

// OverrideStatus lets an operator set the business status directly. The
// lifecycle stage is never touched and closed orders refuse overrides.
func (o *Order) OverrideStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if o.stage.IsTerminal() {
		return errs.NewTransitionIsInvalidError("override_status", o.stage.String(), "order is closed")
	}

	o.status = status
	return nil
}

// IsRegistered reports whether the provider already knows the order.
func (o *Order) IsRegistered() bool {
	return o.shipment != nil && o.shipment.providerOrderID != ""
}

// CanRegister checks the register preconditions without side effects.
func (o *Order) CanRegister() error {
	if err := o.status.ValidateRegister(); err != nil {
		return err
	}
	_, err := o.stage.Register()
	return err
}

// Register stores the provider's order id and moves the order to registered.
//
// Parameters:
//   - providerOrderID: the provider's id for this order (required)
//
// Returns:
//   - nil on success; the business status becomes Processing
//   - a validation error if the order cannot be registered
func (o *Order) Register(providerOrderID string) error {
	if strings.TrimSpace(providerOrderID) == "" {
		return errs.NewValueIsRequiredError("provider_order_id")
	}
	if err := o.CanRegister(); err != nil {
		return err
	}
	next, _ := o.stage.Register()

	o.shipment.providerOrderID = providerOrderID
	o.status = Processing
	o.moveTo(next)
	return nil
}

// CanCreateShipment checks the createShipment preconditions. An accepted
// order that is not yet registered passes; the handler registers it first.
func (o *Order) CanCreateShipment() error {
	if o.stage == StageAccepted {
		return o.CanRegister()
	}
	_, err := o.stage.CreateShipment()
	return err
}

// AttachShipment stores the provider's shipment id and pickup location.
func (o *Order) AttachShipment(shipmentID, pickupLocation string) error {
	if strings.TrimSpace(shipmentID) == "" {
		return errs.NewValueIsRequiredError("shipment_id")
	}
	next, err := o.stage.CreateShipment()
	if err != nil {
		return err
	}
	if pickupLocation == "" {
		pickupLocation = DefaultPickupLocation
	}

	o.shipment.shipmentID = shipmentID
	o.shipment.pickupLocation = pickupLocation
	o.moveTo(next)
	return nil
}

// CanGenerateAWB checks that a shipment exists and has no AWB yet.
func (o *Order) CanGenerateAWB() error {
	_, err := o.stage.GenerateAWB(false)
	return err
}

// AssignAWB stores the AWB and, when the provider returned one, the courier.
//
// Returns:
//   - nil on success; stage becomes courier_assigned with a courier, awb_generated without
//   - a validation error if the stage does not allow AWB generation
func (o *Order) AssignAWB(awbCode string, courier *CourierAssignment) error {
	if strings.TrimSpace(awbCode) == "" {
		return errs.NewValueIsRequiredError("awb_code")
	}
	next, err := o.stage.GenerateAWB(courier != nil)
	if err != nil {
		return err
	}

	o.shipment.awbCode = awbCode
	if courier != nil {
		c := *courier
		o.shipment.courier = &c
	}
	o.moveTo(next)
	return nil
}

// HasAWB reports whether an AWB has been issued.
func (o *Order) HasAWB() bool {
	return o.shipment != nil && o.shipment.awbCode != ""
}

// CanAssignCourier checks that a shipment exists and the parcel has not been
// picked up yet.
func (o *Order) CanAssignCourier() error {
	if o.stage == StageShipmentCreated {
		return nil
	}
	_, err := o.stage.AssignCourier()
	return err
}

// PreferCourier records the courier to request when the AWB is generated.
// Only valid between shipment creation and AWB generation; no stage change.
func (o *Order) PreferCourier(courierID int) error {
	if courierID <= 0 {
		return errs.NewValueIsOutOfRangeError("courier_id", courierID, 1, "+inf")
	}
	if o.stage != StageShipmentCreated {
		return errs.NewTransitionIsInvalidError("prefer_courier", o.stage.String(), "preferred courier can only be set before AWB generation")
	}

	o.shipment.preferredCourierID = courierID
	return nil
}

// AssignCourier replaces the courier after AWB generation. The provider may
// reissue the AWB (empty awbCode keeps the current one). A scheduled pickup is
// reset because pickup tokens belong to the previous courier.
//
// Returns:
//   - pickupReset: whether a scheduled pickup was cleared
//   - error: a validation error once the parcel is in transit or later
func (o *Order) AssignCourier(courier CourierAssignment, awbCode string) (pickupReset bool, err error) {
	next, err := o.stage.AssignCourier()
	if err != nil {
		return false, err
	}

	if awbCode != "" {
		o.shipment.awbCode = awbCode
	}
	o.shipment.courier = &courier
	if o.shipment.pickup != nil {
		o.shipment.pickup = nil
		pickupReset = true
	}
	o.moveTo(next)
	return pickupReset, nil
}

// CanSchedulePickup checks that an AWB exists and the parcel is not yet picked up.
func (o *Order) CanSchedulePickup() error {
	_, err := o.stage.SchedulePickup()
	return err
}

// ScheduledPickupOn returns the current pickup when it is for the given day.
func (o *Order) ScheduledPickupOn(date time.Time) (Pickup, bool) {
	if o.shipment == nil || o.shipment.pickup == nil || !o.shipment.pickup.IsOn(date) {
		return Pickup{}, false
	}
	return *o.shipment.pickup, true
}

// SchedulePickup stores the pickup, replacing any earlier one.
func (o *Order) SchedulePickup(pickup Pickup) error {
	if pickup.token == "" {
		return errs.NewValueIsRequiredError("pickup")
	}
	next, err := o.stage.SchedulePickup()
	if err != nil {
		return err
	}

	o.shipment.pickup = &pickup
	o.moveTo(next)
	return nil
}

// CanFetchLabel checks that there is an AWB to print a label for.
func (o *Order) CanFetchLabel() error {
	if !o.HasAWB() || o.stage == StageCancelled || o.stage == StageRejected {
		return errs.NewTransitionIsInvalidError("fetch_label", o.stage.String(), "label requires an AWB on an open shipment")
	}
	return nil
}

// SetLabelURL stores the label location. No stage change.
func (o *Order) SetLabelURL(url string) error {
	if strings.TrimSpace(url) == "" {
		return errs.NewValueIsRequiredError("label_url")
	}
	if err := o.CanFetchLabel(); err != nil {
		return err
	}

	o.shipment.labelURL = url
	return nil
}

// TrackingUpdate is the outcome of ApplyTracking.
type TrackingUpdate struct {
	// Applied are the events newer than the previous sync, oldest first.
	Applied []TrackingEvent

	// RemoteCancelled is set when the provider reports a cancellation the
	// order does not reflect.
	RemoteCancelled bool
}

// CanTrack checks that the shipment is in a stage the provider tracks and
// that no operator has closed the order's status.
func (o *Order) CanTrack() error {
	if !o.HasAWB() || !o.stage.IsTrackable() {
		return errs.NewTransitionIsInvalidError("track", o.stage.String(), "shipment is not trackable")
	}
	if o.status.IsClosed() {
		return errs.NewTransitionIsInvalidError("track", o.stage.String(), "order status is "+o.status.String())
	}
	return nil
}

// ApplyTracking feeds provider scans into the lifecycle. Only events strictly
// newer than the last sync are applied, oldest first. Applying stops at the
// first event that closes or fails the order.
//
// Returns:
//   - TrackingUpdate: the applied events and whether a remote cancel was seen
//   - error: a validation error if the shipment is not trackable
func (o *Order) ApplyTracking(events []TrackingEvent) (TrackingUpdate, error) {
	if err := o.CanTrack(); err != nil {
		return TrackingUpdate{}, err
	}

	sorted := make([]TrackingEvent, 0, len(events))
	for _, e := range events {
		if e.occurredAt.After(o.shipment.lastTrackingSyncAt) {
			sorted = append(sorted, e)
		}
	}
	SortTrackingEvents(sorted)

	var update TrackingUpdate
	for _, e := range sorted {
		o.shipment.trackingStatus = e.status
		o.shipment.lastTrackingSyncAt = e.occurredAt
		update.Applied = append(update.Applied, e)

		switch ClassifyTrackingStatus(e.status) {
		case SignalInTransit:
			if err := o.MarkInTransit(); err != nil {
				return TrackingUpdate{}, err
			}
		case SignalDelivered:
			if err := o.MarkDelivered(); err != nil {
				return TrackingUpdate{}, err
			}
			return update, nil
		case SignalFailed:
			if err := o.MarkFailed(); err != nil {
				return TrackingUpdate{}, err
			}
			return update, nil
		case SignalCancelled:
			update.RemoteCancelled = true
		case SignalNone:
		}
	}
	return update, nil
}

// MarkInTransit records that the courier has the parcel. Repeated calls keep
// the stage.
func (o *Order) MarkInTransit() error {
	next, err := o.stage.MarkInTransit()
	if err != nil {
		return err
	}

	o.status = Shipped
	o.moveTo(next)
	return nil
}

// MarkDelivered closes the order as delivered.
func (o *Order) MarkDelivered() error {
	next, err := o.stage.MarkDelivered()
	if err != nil {
		return err
	}

	o.status = Delivered
	o.moveTo(next)
	return nil
}

// MarkFailed moves the order to failed and remembers the stage it failed in.
func (o *Order) MarkFailed() error {
	next, err := o.stage.Fail()
	if err != nil {
		return err
	}

	o.failedStage = o.stage
	o.moveTo(next)
	return nil
}

// CanCancel checks that the order is not closed.
func (o *Order) CanCancel() error {
	_, err := o.stage.Cancel()
	return err
}

// Cancel closes the order locally. Remote cancellation is the handler's job
// and does not block this transition.
func (o *Order) Cancel() error {
	next, err := o.stage.Cancel()
	if err != nil {
		return err
	}

	o.status = Cancelled
	o.moveTo(next)
	return nil
}

// RecordFailure keeps the last failed attempt on the shipment for operators.
// The stage is left unchanged.
func (o *Order) RecordFailure(kind, message string, at time.Time) {
	if o.shipment == nil {
		return
	}
	o.shipment.lastFailure = &Failure{
		Stage:   o.stage,
		Kind:    kind,
		Message: message,
		At:      at.UTC(),
	}
}

func (o *Order) moveTo(next Stage) {
	if o.shipment != nil {
		o.shipment.lastFailure = nil
	}
	if next == o.stage {
		return
	}
	o.changes = append(o.changes, StageChange{From: o.stage, To: next, Status: o.status})
	o.stage = next
}

// validateStageFields checks that the stage agrees with the shipment fields.
func (o *Order) validateStageFields() error {
	if o.stage == StageNone || (o.stage == StageRejected && o.shipment == nil) {
		return nil
	}
	if o.shipment == nil {
		return errs.NewValueIsInvalidErrorWithCause("shipment", fmt.Errorf("stage %s requires a shipment", o.stage))
	}
	if err := o.shipment.validateInvariants(); err != nil {
		return err
	}

	s := o.shipment
	reached := o.stage
	if reached == StageFailed {
		reached = o.failedStage
	}
	var missing string
	switch {
	case reached >= StageRegistered && reached <= StageDelivered && s.providerOrderID == "":
		missing = "provider_order_id"
	case reached >= StageShipmentCreated && reached <= StageDelivered && s.shipmentID == "":
		missing = "shipment_id"
	case reached >= StageAWBGenerated && reached <= StageDelivered && s.awbCode == "":
		missing = "awb_code"
	}
	if missing != "" {
		return errs.NewValueIsInvalidErrorWithCause(missing, fmt.Errorf("stage %s requires %s", o.stage, missing))
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setPaymentStatus(p PaymentStatus) error {
	if err := p.Validate(); err != nil {
		return err
	}
	o.paymentStatus = p
	return nil
}
