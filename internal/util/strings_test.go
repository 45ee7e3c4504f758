package util

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "GBuffer", 10, "GBuffer"},
		{"exact", "GBuffer", 7, "GBuffer"},
		{"cut", "vkCmdDraw(gbuffer 0)", 8, "vkCmdDr…"},
		{"one column", "Shadow", 1, "…"},
		{"zero width", "Shadow", 0, ""},
		{"wide runes", "影影影影", 5, "影影…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.width); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestTruncate_Styled(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("Lighting pass")
	got := Truncate(styled, 6)
	if w := lipgloss.Width(got); w > 6 {
		t.Errorf("visible width = %d, want <= 6", w)
	}
}

func TestTruncateLeft(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Frame/GBuffer", 20, "Frame/GBuffer"},
		{"Frame/GBuffer/Draw", 8, "…er/Draw"},
		{"Frame", 1, "…"},
		{"Frame", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateLeft(tt.in, tt.width); got != tt.want {
			t.Errorf("TruncateLeft(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
