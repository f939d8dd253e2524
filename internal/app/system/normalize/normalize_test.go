package normalize

import "testing"

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Amina Yusuf", "Amina Yusuf"},
		{"  Amina Yusuf  ", "Amina Yusuf"},
		{"", ""},
		{"   ", ""},
		{"UPPERCASE NAME", "UPPERCASE NAME"}, // case preserved
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Name(tt.input); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"father", "father"},
		{"FATHER", "father"},
		{"  Mother  ", "mother"},
		{"Child", "child"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Role(tt.input); got != tt.want {
				t.Errorf("Role(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJoinCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abcd1234", "ABCD1234"},
		{" ABCD1234 ", "ABCD1234"},
		{"AbCd1234", "ABCD1234"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := JoinCode(tt.input); got != tt.want {
				t.Errorf("JoinCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
