package types

import "strings"

// AddressLine is one postal destination (shipping or billing).
type AddressLine struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

// Address is persisted as a jsonb document on the users table.
type Address struct {
	Shipping AddressLine `json:"shipping"`
	Billing  AddressLine `json:"billing"`
}

// AddressLinePatch carries optional replacements for an AddressLine.
type AddressLinePatch struct {
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	Pincode *string `json:"pincode,omitempty"`
}

// AddressPatch carries optional replacements for either half of an Address.
type AddressPatch struct {
	Shipping *AddressLinePatch `json:"shipping,omitempty"`
	Billing  *AddressLinePatch `json:"billing,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p AddressPatch) IsEmpty() bool {
	return p.Shipping == nil && p.Billing == nil
}

// Apply merges the patch into the address and returns the result.
func (p AddressPatch) Apply(addr Address) Address {
	if p.Shipping != nil {
		addr.Shipping = p.Shipping.apply(addr.Shipping)
	}
	if p.Billing != nil {
		addr.Billing = p.Billing.apply(addr.Billing)
	}
	return addr
}

func (p AddressLinePatch) apply(line AddressLine) AddressLine {
	if p.Street != nil {
		line.Street = strings.TrimSpace(*p.Street)
	}
	if p.City != nil {
		line.City = strings.TrimSpace(*p.City)
	}
	if p.Pincode != nil {
		line.Pincode = strings.TrimSpace(*p.Pincode)
	}
	return line
}
