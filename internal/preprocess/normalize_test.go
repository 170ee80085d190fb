package preprocess

import "testing"

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"chennai", "Chennai"},
		{"  MADRAS ", "Chennai"},
		{"Selam", "Salem"},
		{"salem", "Salem"},
		{"new  DELHI", "New Delhi"},
		{"coimbatore", "Coimbatore"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeCity(tt.in); got != tt.want {
				t.Errorf("NormalizeCity(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeCityIdempotent(t *testing.T) {
	for _, in := range []string{"madras", "new delhi", "SALEM", "tiruchirappalli"} {
		once := NormalizeCity(in)
		if twice := NormalizeCity(once); twice != once {
			t.Errorf("NormalizeCity(NormalizeCity(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in   string
		want PropertyType
	}{
		{"flat", Residential},
		{"Villa", Residential},
		{"SHOWROOM", Commercial},
		{" office ", Commercial},
		{"plot", Land},
		{"Site", Land},
		{"castle", Residential},
		{"", Residential},
	}

	for _, tt := range tests {
		if got := NormalizeType(tt.in); got != tt.want {
			t.Errorf("NormalizeType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"available", StatusActive},
		{"For Sale", StatusActive},
		{"completed", StatusSold},
		{"SOLD", StatusSold},
		{"under contract", StatusPending},
		{"in escrow", StatusPending},
		{"whatever", StatusActive},
		{"", StatusActive},
	}

	for _, tt := range tests {
		if got := NormalizeStatus(tt.in); got != tt.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
