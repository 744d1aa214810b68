package filter

import "testing"

func TestParseTimeWindow(t *testing.T) {
	tests := []struct {
		input    string
		from, to string
		wantErr  bool
	}{
		{"09:00-12:00", "09:00", "12:00", false},
		{"9:00 ~ 12:30", "09:00", "12:30", false},
		{"12:00-", "12:00", "", false},
		{"-12:00", "", "12:00", false},
		{"14:00", "14:00", "14:00", false},
		{"", "", "", true},
		{"-", "", "", true},
		{"오후", "", "", true},
		{"12:00-09:00", "", "", true},
		{"25:00-26:00", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			from, to, err := ParseTimeWindow(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeWindow(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if from != tt.from || to != tt.to {
				t.Errorf("ParseTimeWindow(%q) = (%q, %q), want (%q, %q)", tt.input, from, to, tt.from, tt.to)
			}
		})
	}
}
