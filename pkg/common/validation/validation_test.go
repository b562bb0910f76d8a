package validation

import (
	"errors"
	"testing"

	tmerrors "github.com/skalidindi/taskmill/pkg/common/errors"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"positive", 1, false},
		{"large positive", 1 << 20, false},
		{"zero", 0, true},
		{"negative", -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("test", "field", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositive(%d) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, tmerrors.ErrInvalidConfiguration) {
				t.Error("error should wrap ErrInvalidConfiguration")
			}
		})
	}
}

func TestValidateNonNegative(t *testing.T) {
	if err := ValidateNonNegative("test", "field", 0); err != nil {
		t.Errorf("zero should be valid, got %v", err)
	}
	if err := ValidateNonNegative("test", "field", -1); err == nil {
		t.Error("negative should be invalid")
	}
}

func TestValidateAtMost(t *testing.T) {
	if err := ValidateAtMost("test", "field", 3, 3); err != nil {
		t.Errorf("value equal to limit should be valid, got %v", err)
	}
	if err := ValidateAtMost("test", "field", 4, 3); err == nil {
		t.Error("value above limit should be invalid")
	}
}

func TestValidateNotNil(t *testing.T) {
	if err := ValidateNotNil("test", "field", struct{}{}); err != nil {
		t.Errorf("non-nil should be valid, got %v", err)
	}
	if err := ValidateNotNil("test", "field", nil); err == nil {
		t.Error("nil should be invalid")
	}
}

func TestValidateNotEmpty(t *testing.T) {
	if err := ValidateNotEmpty("test", "field", "value"); err != nil {
		t.Errorf("non-empty should be valid, got %v", err)
	}
	if err := ValidateNotEmpty("test", "field", ""); err == nil {
		t.Error("empty should be invalid")
	}
}
