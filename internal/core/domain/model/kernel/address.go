package kernel

import (
	"errors"
	"strings"

	"shipping/internal/pkg/errs"
	"shipping/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when a zero value Address is used.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError("address must be created via NewAddress")

// DefaultCountry is used when an address is built without a country.
const DefaultCountry = "India"

// Address is the postal address a shipment is delivered to. It is an immutable
// value object; all text fields are trimmed on construction.
//
// Required fields: line1, city, state and postcode. Line2 is optional and an empty
// country falls back to DefaultCountry.
type Address struct { //nolint:recvcheck // setters use pointer receivers during construction
	line1    string
	line2    string
	city     string
	state    string
	postcode string
	country  string
	guard    guard.ConstructorGuard
}

// AddressParams groups the raw values of an address.
type AddressParams struct {
	Line1    string
	Line2    string
	City     string
	State    string
	Postcode string
	Country  string
}

// NewAddress validates the params and builds an Address. All missing
// required fields are reported at once.
//
// Example:
//
//	addr, err := kernel.NewAddress(kernel.AddressParams{
//	    Line1: "12 MG Road", City: "Bengaluru", State: "Karnataka", Postcode: "560001",
//	})
func NewAddress(p AddressParams) (Address, error) {
	addr := Address{
		line2:   strings.TrimSpace(p.Line2),
		country: strings.TrimSpace(p.Country),
		guard:   guard.NewConstructorGuard(),
	}
	if addr.country == "" {
		addr.country = DefaultCountry
	}

	if err := errors.Join(
		addr.setLine1(p.Line1),
		addr.setCity(p.City),
		addr.setState(p.State),
		addr.setPostcode(p.Postcode),
	); err != nil {
		return Address{}, err
	}

	return addr, nil
}

// Validate checks that the address was built by NewAddress.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) Line1() string    { return a.line1 }
func (a Address) Line2() string    { return a.line2 }
func (a Address) City() string     { return a.city }
func (a Address) State() string    { return a.state }
func (a Address) Postcode() string { return a.postcode }
func (a Address) Country() string  { return a.country }

// Params returns the raw values, e.g. for persistence or provider payloads.
func (a Address) Params() AddressParams {
	return AddressParams{
		Line1:    a.line1,
		Line2:    a.line2,
		City:     a.city,
		State:    a.state,
		Postcode: a.postcode,
		Country:  a.country,
	}
}

// String returns a single-line form: "line1, line2, city, state postcode, country".
func (a Address) String() string {
	parts := []string{a.line1}
	if a.line2 != "" {
		parts = append(parts, a.line2)
	}
	parts = append(parts, a.city, a.state+" "+a.postcode, a.country)
	return strings.Join(parts, ", ")
}

func (a *Address) setLine1(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errs.NewValueIsRequiredError("line1")
	}
	a.line1 = v
	return nil
}

func (a *Address) setCity(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errs.NewValueIsRequiredError("city")
	}
	a.city = v
	return nil
}

func (a *Address) setState(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errs.NewValueIsRequiredError("state")
	}
	a.state = v
	return nil
}

func (a *Address) setPostcode(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errs.NewValueIsRequiredError("postcode")
	}
	for _, r := range v {
		if (r < '0' || r > '9') && (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') && r != ' ' && r != '-' {
			return errs.NewValueIsInvalidErrorWithCause("postcode", errors.New("unexpected character"))
		}
	}
	a.postcode = v
	return nil
}
