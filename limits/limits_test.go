package limits

import (
	"errors"
	"testing"
)

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr error
	}{
		{"valid", 640, 480, nil},
		{"max", MaxDimension, MaxDimension, nil},
		{"one_by_one", 1, 1, nil},
		{"zero_width", 0, 480, ErrZeroDimension},
		{"zero_height", 640, 0, ErrZeroDimension},
		{"too_wide", MaxDimension + 1, 10, ErrDimensionTooLarge},
		{"negative", -1, 10, ErrDimensionTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimensions(tt.w, tt.h)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDisplaySize(t *testing.T) {
	if err := ValidateDisplaySize(640, 480, 640, 480); err != nil {
		t.Fatalf("equal sizes rejected: %v", err)
	}
	if err := ValidateDisplaySize(636, 478, 640, 480); err != nil {
		t.Fatalf("smaller display rejected: %v", err)
	}
	if err := ValidateDisplaySize(641, 480, 640, 480); !errors.Is(err, ErrDisplayExceedsBuffer) {
		t.Fatalf("expected ErrDisplayExceedsBuffer, got %v", err)
	}
	if err := ValidateDisplaySize(640, 480, 0, 480); !errors.Is(err, ErrZeroDimension) {
		t.Fatalf("expected ErrZeroDimension, got %v", err)
	}
}

func TestRGBASize(t *testing.T) {
	if got := RGBASize(4, 2); got != 32 {
		t.Errorf("RGBASize(4, 2) = %d, want 32", got)
	}
}
