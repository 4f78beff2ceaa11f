package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/roast/internal/adapters/detector"
)

func TestDetectEnvironment_CI(t *testing.T) {
	for _, ci := range []string{"true", "1"} {
		t.Run("CI="+ci, func(t *testing.T) {
			t.Setenv("CI", ci)
			assert.Equal(t, detector.FormatJSON, detector.DetectEnvironment())
		})
	}
}

func TestDetectEnvironment_NotTerminal(t *testing.T) {
	// go test never attaches stderr to a terminal.
	t.Setenv("CI", "")
	assert.Equal(t, detector.FormatJSON, detector.DetectEnvironment())
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name         string
		autoDetected detector.LogFormat
		userFlag     string
		expected     detector.LogFormat
	}{
		{"pretty overrides json", detector.FormatJSON, "pretty", detector.FormatPretty},
		{"json overrides pretty", detector.FormatPretty, "json", detector.FormatJSON},
		{"auto keeps detection", detector.FormatPretty, "auto", detector.FormatPretty},
		{"empty keeps detection", detector.FormatJSON, "", detector.FormatJSON},
		{"unknown keeps detection", detector.FormatPretty, "fancy", detector.FormatPretty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.ResolveFormat(tt.autoDetected, tt.userFlag))
		})
	}
}
