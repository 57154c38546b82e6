// Package testutil has helpers for asserting on rendered terminal output.
package testutil

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// Width returns the visible width of s.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// Lines splits rendered output into unstyled lines without trailing blanks.
func Lines(output string) []string {
	lines := strings.Split(StripANSI(output), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// FindLine returns the first unstyled line containing substr, or "".
func FindLine(output, substr string) string {
	for _, line := range Lines(output) {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}

// Contains fails t unless the unstyled output contains every substr.
func Contains(t *testing.T, output string, substrs ...string) {
	t.Helper()
	plain := StripANSI(output)
	for _, s := range substrs {
		if !strings.Contains(plain, s) {
			t.Errorf("output does not contain %q:\n%s", s, plain)
		}
	}
}

// NotContains fails t if the unstyled output contains any substr.
func NotContains(t *testing.T, output string, substrs ...string) {
	t.Helper()
	plain := StripANSI(output)
	for _, s := range substrs {
		if strings.Contains(plain, s) {
			t.Errorf("output unexpectedly contains %q:\n%s", s, plain)
		}
	}
}
