package order

import (
	"fmt"

	"shipping/internal/pkg/errs"
)

// Status is the business status of an order as shown to operators. It is
// distinct from Stage, which tracks the shipment lifecycle.
//
//	Pending ──> Accepted ──> Processing ──> Shipped ──> Delivered
//	   │           │              │            │
//	   └──> Rejected <──┘          └─────┬──────┘
//	                                    └──> Cancelled
//
// Most changes follow from stage transitions. Operators may also override the
// status directly (OverrideStatus) while the lifecycle is not terminal.
type Status int

const (
	// Unknown (0) catches uninitialized values.
	Unknown Status = iota
	Pending
	Accepted
	Rejected
	Processing
	Shipped
	Delivered
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "unknown",
		Pending:    "pending",
		Accepted:   "accepted",
		Rejected:   "rejected",
		Processing: "processing",
		Shipped:    "shipped",
		Delivered:  "delivered",
		Cancelled:  "cancelled",
	}
}

// Validate checks that the status is one of the known values other than Unknown.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the lower-case name used in persistence and the API.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsClosed reports whether the business status ends the order's life,
// whether reached through the lifecycle or set by an operator.
func (s Status) IsClosed() bool {
	return s == Delivered || s == Cancelled
}

// ClosedStatuses lists the statuses for which IsClosed is true.
func ClosedStatuses() []Status {
	return []Status{Delivered, Cancelled}
}

// ParseStatus converts the persisted or API name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// ValidateRegister checks that an order with this status may be registered
// with the logistics provider.
func (s Status) ValidateRegister() error {
	if s != Accepted && s != Processing {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to register", s.String()),
		)
	}
	return nil
}
