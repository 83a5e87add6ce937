package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigValidator_NonNegative(t *testing.T) {
	if !NewConfigValidator("History").NonNegative("Limit", -1).HasErrors() {
		t.Error("Expected error for negative value")
	}
	if NewConfigValidator("History").NonNegative("Limit", 0).HasErrors() {
		t.Error("Expected no error for zero")
	}
}

func TestConfigValidator_RangeFloat(t *testing.T) {
	tests := []struct {
		value     float64
		expectErr bool
	}{
		{0, true},
		{0.01, false},
		{0.999, false},
		{1, true},
		{-0.5, true},
	}

	for _, tt := range tests {
		cv := NewConfigValidator("Geometry")
		cv.RangeFloat("NearlyAntipodal", tt.value, 0, 1)

		if tt.expectErr != cv.HasErrors() {
			t.Errorf("RangeFloat(%g): HasErrors() = %v, want %v", tt.value, cv.HasErrors(), tt.expectErr)
		}
	}
}

func TestConfigValidator_PositiveAndLess(t *testing.T) {
	cv := NewConfigValidator("Geometry")
	cv.PositiveFloat("Zero", 0).
		Less("Zero", 0.1, "MinimumRadius", 0.02)

	if len(cv.Errors()) != 2 {
		t.Fatalf("Expected 2 errors, got %d: %v", len(cv.Errors()), cv.Errors())
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	allowed := []string{"json", "text"}

	cv := NewConfigValidator("Log")
	cv.OneOf("Format", "xml", allowed)
	if !cv.HasErrors() {
		t.Error("Expected error for value not in allowed list")
	}

	cv2 := NewConfigValidator("Log")
	cv2.OneOf("Format", "text", allowed)
	if cv2.HasErrors() {
		t.Error("Expected no error for allowed value")
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("bad")

	cv := NewConfigValidator("TestConfig")
	cv.Custom("Field", func() error { return sentinel })
	if err := cv.Validate(); !errors.Is(err, sentinel) {
		t.Errorf("Expected wrapped custom error, got: %v", err)
	}

	if err := NewConfigValidator("TestConfig").Custom("Field", func() error { return nil }).Validate(); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestConfigValidator_ValidateCombines(t *testing.T) {
	cv := NewConfigValidator("Config")
	cv.OneOf("A", "", []string{"json"}).PositiveFloat("B", -1).NonNegative("C", -1)

	err := cv.Validate()
	if err == nil {
		t.Fatal("Expected combined error")
	}
	for _, part := range []string{"3 errors", "Config.A", "Config.B", "Config.C"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("Expected %q in %q", part, err.Error())
		}
	}
}
