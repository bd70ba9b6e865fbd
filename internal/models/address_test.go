package models

import "testing"

func TestAddressEncode(t *testing.T) {
	tests := []struct {
		name    string
		address Address
		want    string
	}{
		{
			name:    "full address",
			address: Address{Street: "Hauptstrasse 12", City: "Berlin", Country: "Germany"},
			want:    "Hauptstrasse 12, Berlin, Germany",
		},
		{
			name:    "missing country dropped",
			address: Address{Street: "Hauptstrasse 12", City: "Berlin"},
			want:    "Hauptstrasse 12, Berlin",
		},
		{
			name:    "street only",
			address: Address{Street: "Hauptstrasse 12"},
			want:    "Hauptstrasse 12",
		},
		{
			name:    "empty address",
			address: Address{},
			want:    "",
		},
		{
			name:    "empty middle part kept",
			address: Address{Street: "Hauptstrasse 12", Country: "Germany"},
			want:    "Hauptstrasse 12, , Germany",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.address.Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeAddress(t *testing.T) {
	tests := []struct {
		input string
		want  Address
	}{
		{"Hauptstrasse 12, Berlin, Germany", Address{Street: "Hauptstrasse 12", City: "Berlin", Country: "Germany"}},
		{"Hauptstrasse 12, Berlin", Address{Street: "Hauptstrasse 12", City: "Berlin"}},
		{"Hauptstrasse 12", Address{Street: "Hauptstrasse 12"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DecodeAddress(tt.input); got != tt.want {
				t.Errorf("DecodeAddress(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAddressRoundTrip(t *testing.T) {
	original := Address{Street: "Keizersgracht 44", City: "Amsterdam", Country: "Netherlands"}
	if got := DecodeAddress(original.Encode()); got != original {
		t.Errorf("round trip = %+v, want %+v", got, original)
	}
}
