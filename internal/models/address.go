package models

import "strings"

// Address is a structured location on a trip leg. The external wire contract
// carries addresses as a single comma-delimited string; Encode/DecodeAddress
// are the only place that format is produced or consumed.
type Address struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	Country string `bson:"country" json:"country"`
}

// Encode serializes the address to the delimited wire form
// "street, city, country". Empty trailing parts are dropped.
func (a Address) Encode() string {
	parts := []string{a.Street, a.City, a.Country}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ", ")
}

// DecodeAddress parses the delimited wire form back into a structured
// address. Inverse of Encode for addresses whose fields contain no commas.
func DecodeAddress(s string) Address {
	parts := strings.SplitN(s, ", ", 3)
	var a Address
	switch len(parts) {
	case 3:
		a.Street, a.City, a.Country = parts[0], parts[1], parts[2]
	case 2:
		a.Street, a.City = parts[0], parts[1]
	case 1:
		a.Street = parts[0]
	}
	return a
}
