// ABOUTME: Tests for logger construction.
// ABOUTME: Verifies level selection by the verbose flag.
package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.verbose)

			logger.Debug("debug line", "day", "2024-45")
			logger.Info("info line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug present = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "info line") {
				t.Errorf("expected info line in output:\n%s", out)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing to see")
}
