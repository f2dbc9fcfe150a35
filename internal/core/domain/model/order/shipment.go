package order

import (
	"errors"
	"strings"
	"time"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"
)

// DefaultPickupLocation is the pre-registered warehouse used when the caller
// does not name one.
const DefaultPickupLocation = "Primary"

// CourierAssignment is the courier attached to a shipment, as returned by the
// provider with the AWB or chosen by an operator afterwards.
type CourierAssignment struct {
	id            int
	name          string
	estimatedDays int
	freightCharge kernel.Money
	codCharge     kernel.Money
}

// NewCourierAssignment validates the courier id and name.
func NewCourierAssignment(id int, name string, estimatedDays int, freight, cod kernel.Money) (CourierAssignment, error) {
	var errList []error
	if id <= 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("courier_id", id, 1, "+inf"))
	}
	if strings.TrimSpace(name) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("courier name"))
	}
	if estimatedDays < 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("estimated_days", estimatedDays, 0, "+inf"))
	}
	if err := errors.Join(errList...); err != nil {
		return CourierAssignment{}, err
	}

	return CourierAssignment{
		id:            id,
		name:          strings.TrimSpace(name),
		estimatedDays: estimatedDays,
		freightCharge: freight,
		codCharge:     cod,
	}, nil
}

func (c CourierAssignment) ID() int                   { return c.id }
func (c CourierAssignment) Name() string              { return c.name }
func (c CourierAssignment) EstimatedDays() int        { return c.estimatedDays }
func (c CourierAssignment) FreightCharge() kernel.Money { return c.freightCharge }
func (c CourierAssignment) CODCharge() kernel.Money   { return c.codCharge }

// Pickup is a scheduled collection: the calendar day and the provider's token.
type Pickup struct {
	date  time.Time
	token string
}

// NewPickup normalizes date to midnight UTC.
func NewPickup(date time.Time, token string) (Pickup, error) {
	if date.IsZero() {
		return Pickup{}, errs.NewValueIsRequiredError("pickup date")
	}
	if strings.TrimSpace(token) == "" {
		return Pickup{}, errs.NewValueIsRequiredError("pickup token")
	}
	return Pickup{date: PickupDay(date), token: token}, nil
}

// PickupDay truncates t to its calendar day in UTC.
func PickupDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (p Pickup) Date() time.Time { return p.date }
func (p Pickup) Token() string   { return p.token }

// IsOn reports whether the pickup is scheduled for the same calendar day.
func (p Pickup) IsOn(date time.Time) bool {
	return p.date.Equal(PickupDay(date))
}

// Failure is the last failed transition attempt, kept for operators.
type Failure struct {
	Stage   Stage
	Kind    string
	Message string
	At      time.Time
}

// Shipment is owned by its Order and filled in as lifecycle stages succeed.
//
// Invariants:
//   - shipmentID implies providerOrderID
//   - awbCode implies shipmentID
//   - courier implies awbCode
//   - pickup implies awbCode
//
// A field, once set, is only cleared by an explicit reset (courier change
// resets the pickup).
type Shipment struct {
	providerOrderID    string
	shipmentID         string
	awbCode            string
	courier            *CourierAssignment
	preferredCourierID int
	pickupLocation     string
	pickup             *Pickup
	trackingStatus     string
	labelURL           string
	lastTrackingSyncAt time.Time
	lastFailure        *Failure
}

// ShipmentSnapshot carries persisted shipment fields into RestoreShipment.
type ShipmentSnapshot struct {
	ProviderOrderID    string
	ShipmentID         string
	AWBCode            string
	Courier            *CourierAssignment
	PreferredCourierID int
	PickupLocation     string
	Pickup             *Pickup
	TrackingStatus     string
	LabelURL           string
	LastTrackingSyncAt time.Time
	LastFailure        *Failure
}

func newShipment() *Shipment {
	return &Shipment{}
}

// RestoreShipment rebuilds a shipment and re-checks its field dependencies.
func RestoreShipment(s ShipmentSnapshot) (*Shipment, error) {
	shipment := &Shipment{
		providerOrderID:    s.ProviderOrderID,
		shipmentID:         s.ShipmentID,
		awbCode:            s.AWBCode,
		courier:            s.Courier,
		preferredCourierID: s.PreferredCourierID,
		pickupLocation:     s.PickupLocation,
		pickup:             s.Pickup,
		trackingStatus:     s.TrackingStatus,
		labelURL:           s.LabelURL,
		lastTrackingSyncAt: s.LastTrackingSyncAt,
		lastFailure:        s.LastFailure,
	}
	if err := shipment.validateInvariants(); err != nil {
		return nil, err
	}
	return shipment, nil
}

// Snapshot returns the shipment's fields for persistence.
func (s *Shipment) Snapshot() ShipmentSnapshot {
	return ShipmentSnapshot{
		ProviderOrderID:    s.providerOrderID,
		ShipmentID:         s.shipmentID,
		AWBCode:            s.awbCode,
		Courier:            s.Courier(),
		PreferredCourierID: s.preferredCourierID,
		PickupLocation:     s.pickupLocation,
		Pickup:             s.Pickup(),
		TrackingStatus:     s.trackingStatus,
		LabelURL:           s.labelURL,
		LastTrackingSyncAt: s.lastTrackingSyncAt,
		LastFailure:        s.LastFailure(),
	}
}

func (s *Shipment) validateInvariants() error {
	var errList []error
	if s.shipmentID != "" && s.providerOrderID == "" {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("shipment_id", errors.New("shipment id requires a provider order id")))
	}
	if s.awbCode != "" && s.shipmentID == "" {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("awb_code", errors.New("AWB requires a shipment id")))
	}
	if s.courier != nil && s.awbCode == "" {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("courier", errors.New("courier requires an AWB")))
	}
	if s.pickup != nil && s.awbCode == "" {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("pickup", errors.New("pickup requires an AWB")))
	}
	return errors.Join(errList...)
}

func (s *Shipment) ProviderOrderID() string { return s.providerOrderID }
func (s *Shipment) ShipmentID() string      { return s.shipmentID }
func (s *Shipment) AWBCode() string         { return s.awbCode }
func (s *Shipment) PickupLocation() string  { return s.pickupLocation }
func (s *Shipment) TrackingStatus() string  { return s.trackingStatus }
func (s *Shipment) LabelURL() string        { return s.labelURL }

// PreferredCourierID is the pre-AWB courier override, 0 when unset.
func (s *Shipment) PreferredCourierID() int { return s.preferredCourierID }

// LastTrackingSyncAt is the timestamp of the newest applied tracking event.
func (s *Shipment) LastTrackingSyncAt() time.Time { return s.lastTrackingSyncAt }

// Courier returns nil until a courier is assigned.
func (s *Shipment) Courier() *CourierAssignment {
	if s.courier == nil {
		return nil
	}
	c := *s.courier
	return &c
}

// Pickup returns nil until a pickup is scheduled.
func (s *Shipment) Pickup() *Pickup {
	if s.pickup == nil {
		return nil
	}
	p := *s.pickup
	return &p
}

// LastFailure returns nil when the last transition attempt succeeded.
func (s *Shipment) LastFailure() *Failure {
	if s.lastFailure == nil {
		return nil
	}
	f := *s.lastFailure
	return &f
}
