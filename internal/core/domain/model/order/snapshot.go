package order

import (
	"errors"
	"strings"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Customer is the buyer snapshot captured at checkout and sent to the provider
// on registration. It never changes once the order is accepted.
type Customer struct {
	name    string
	email   string
	phone   string
	address kernel.Address
}

// NewCustomer validates the buyer data. Email is optional.
func NewCustomer(name, email, phone string, address kernel.Address) (Customer, error) {
	c := Customer{
		name:    strings.TrimSpace(name),
		email:   strings.TrimSpace(email),
		phone:   strings.TrimSpace(phone),
		address: address,
	}

	var errList []error
	if c.name == "" {
		errList = append(errList, errs.NewValueIsRequiredError("customer name"))
	}
	if c.phone == "" {
		errList = append(errList, errs.NewValueIsRequiredError("customer phone"))
	}
	if c.email != "" && !strings.Contains(c.email, "@") {
		errList = append(errList, errs.NewValueIsInvalidError("customer email"))
	}
	errList = append(errList, address.Validate())

	if err := errors.Join(errList...); err != nil {
		return Customer{}, err
	}
	return c, nil
}

func (c Customer) Name() string            { return c.name }
func (c Customer) Email() string           { return c.email }
func (c Customer) Phone() string           { return c.phone }
func (c Customer) Address() kernel.Address { return c.address }

// Parcel is the physical package: weight in kilograms, dimensions in
// centimetres and the declared value used for insurance and COD.
type Parcel struct {
	weightKg      decimal.Decimal
	lengthCm      decimal.Decimal
	breadthCm     decimal.Decimal
	heightCm      decimal.Decimal
	declaredValue kernel.Money
}

// NewParcel validates that weight and all dimensions are positive.
func NewParcel(weightKg, lengthCm, breadthCm, heightCm decimal.Decimal, declaredValue kernel.Money) (Parcel, error) {
	positive := func(name string, v decimal.Decimal) error {
		if !v.IsPositive() {
			return errs.NewValueIsOutOfRangeError(name, v.String(), "0 (exclusive)", "+inf")
		}
		return nil
	}

	if err := errors.Join(
		positive("weight_kg", weightKg),
		positive("length_cm", lengthCm),
		positive("breadth_cm", breadthCm),
		positive("height_cm", heightCm),
	); err != nil {
		return Parcel{}, err
	}

	return Parcel{
		weightKg:      weightKg,
		lengthCm:      lengthCm,
		breadthCm:     breadthCm,
		heightCm:      heightCm,
		declaredValue: declaredValue,
	}, nil
}

func (p Parcel) WeightKg() decimal.Decimal    { return p.weightKg }
func (p Parcel) LengthCm() decimal.Decimal    { return p.lengthCm }
func (p Parcel) BreadthCm() decimal.Decimal   { return p.breadthCm }
func (p Parcel) HeightCm() decimal.Decimal    { return p.heightCm }
func (p Parcel) DeclaredValue() kernel.Money  { return p.declaredValue }
