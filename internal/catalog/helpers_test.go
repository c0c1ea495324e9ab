package catalog

import "testing"

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Airport Transfer — Marrakech", "airport-transfer-marrakech"},
		{"  Atlas Circuit (3 days)  ", "atlas-circuit-3-days"},
		{"Casablanca -> Rabat", "casablanca-rabat"},
		{"Hourly Hire", "hourly-hire"},
		{"véhicule", "vhicule"},
	}

	for _, tt := range tests {
		if got := GenerateSlug(tt.name); got != tt.want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
