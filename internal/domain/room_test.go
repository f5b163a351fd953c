package domain

import (
	"strings"
	"testing"
)

func TestValidRoomName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Orchid", true},
		{"Board Room 2", true},
		{"tab\tseparated", true},
		{strings.Repeat("a", MaxNameLength), true},
		{"", false},
		{strings.Repeat("a", MaxNameLength+1), false},
		{"Room #1", false},
		{"Café", false},
	}
	for _, tt := range tests {
		if got := ValidRoomName(tt.name); got != tt.want {
			t.Fatalf("ValidRoomName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
