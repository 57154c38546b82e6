package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/eddy/internal/ui/testutil"
)

func TestGradient_KeepsText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		from, to lipgloss.Color
	}{
		{"hex colors", "eddy", P().Accent, P().AccentAlt},
		{"single cluster", "e", P().Accent, P().AccentAlt},
		{"ansi fallback", "eddy", lipgloss.Color("39"), P().AccentAlt},
		{"empty", "", P().Accent, P().AccentAlt},
		{"combining marks", "café", P().Accent, P().AccentAlt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.StripANSI(Gradient(tt.text, tt.from, tt.to)); got != tt.text {
				t.Errorf("Gradient(%q) text = %q", tt.text, got)
			}
		})
	}
}
