package profanity

import "testing"

func TestContainsProfanity(t *testing.T) {
	filter := NewFilter()

	tests := []struct {
		text string
		want bool
	}{
		{"", false},
		{"hello world", false},
		{"what the fuck", true},
		{"WHAT THE FUCK", true},
		{"what the fuuuck", true},
		{"what the f*u*c*k", true},
		{"f.u.c.k that", true},
		{"s h i t", true},
		{"sh1t happens", true},
		{"the class assignment", false},
		{"scunthorpe problem", false},
	}

	for _, tt := range tests {
		if got := filter.ContainsProfanity(tt.text); got != tt.want {
			t.Errorf("ContainsProfanity(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestNewFilterReturnsSharedInstance(t *testing.T) {
	if NewFilter() != NewFilter() {
		t.Error("expected the same filter instance")
	}
}
