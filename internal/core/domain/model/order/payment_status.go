package order

import (
	"fmt"

	"shipping/internal/pkg/errs"
)

// PaymentStatus is how the customer paid. COD orders are sent to the provider
// with a collectable amount.
type PaymentStatus int

const (
	PaymentUnknown PaymentStatus = iota
	PaymentPending
	PaymentPaid
	PaymentCOD
	PaymentRefunded
)

var paymentStatusStrings = map[PaymentStatus]string{
	PaymentPending:  "pending",
	PaymentPaid:     "paid",
	PaymentCOD:      "cod",
	PaymentRefunded: "refunded",
}

func (p PaymentStatus) Validate() error {
	if _, ok := paymentStatusStrings[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("payment status is invalid", fmt.Errorf("%d is not a valid payment status", p))
	}
	return nil
}

func (p PaymentStatus) String() string {
	if str, ok := paymentStatusStrings[p]; ok {
		return str
	}
	return "unknown"
}

// IsCOD reports whether the courier collects payment on delivery.
func (p PaymentStatus) IsCOD() bool {
	return p == PaymentCOD
}

// ParsePaymentStatus converts a persisted or API name back to a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for p, str := range paymentStatusStrings {
		if str == s {
			return p, nil
		}
	}
	return PaymentUnknown, errs.NewValueIsInvalidErrorWithCause("payment_status", fmt.Errorf("%q is not a valid payment status", s))
}
