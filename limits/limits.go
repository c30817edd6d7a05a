// Package limits provides centralized size limits for IVF playback.
// This ensures consistent validation across the container parser, the decode
// session and the pixel converter.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxDimension is the largest width or height accepted anywhere in the
	// pipeline. IVF stores dimensions as 16-bit fields.
	MaxDimension = 65535

	// FileHeaderSize is the size of the IVF file header in bytes.
	FileHeaderSize = 32

	// ChunkHeaderSize is the size of each per-frame IVF header in bytes.
	ChunkHeaderSize = 12

	// ChunkReadStep is the largest amount of payload memory reserved before
	// the bytes have actually been read. A chunk header may declare up to 4 GiB,
	// so payloads are read in steps of this size.
	ChunkReadStep = 1024 * 1024

	// BytesPerPixel is the size of one packed RGBA8 pixel.
	BytesPerPixel = 4
)

var (
	// ErrZeroDimension indicates a width or height of zero.
	ErrZeroDimension = errors.New("zero dimension")

	// ErrDimensionTooLarge indicates a width or height above MaxDimension.
	ErrDimensionTooLarge = errors.New("dimension too large")

	// ErrDisplayExceedsBuffer indicates a visible region larger than its allocation.
	ErrDisplayExceedsBuffer = errors.New("display size exceeds buffer size")
)

// ValidateDimensions checks that width and height are both in [1, MaxDimension].
func ValidateDimensions(width, height int) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrZeroDimension, width, height)
	}
	if width < 0 || height < 0 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrDimensionTooLarge, width, height, MaxDimension)
	}
	return nil
}

// ValidateDisplaySize checks a display region against its buffer allocation.
// Both sizes must pass ValidateDimensions and the display size must fit.
func ValidateDisplaySize(width, height, bufWidth, bufHeight int) error {
	if err := ValidateDimensions(width, height); err != nil {
		return err
	}
	if err := ValidateDimensions(bufWidth, bufHeight); err != nil {
		return err
	}
	if width > bufWidth || height > bufHeight {
		return fmt.Errorf("%w: display %dx%d, buffer %dx%d",
			ErrDisplayExceedsBuffer, width, height, bufWidth, bufHeight)
	}
	return nil
}

// RGBASize returns the size in bytes of a packed RGBA8 buffer.
func RGBASize(width, height int) int {
	return width * height * BytesPerPixel
}
