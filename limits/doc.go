// Package limits provides centralized size constants and validation functions
// for IVF playback.
//
// # Limits
//
//   - MaxDimension (65535): IVF stores width and height as 16-bit fields, and
//     the decode session rejects engine images that exceed it.
//
//   - FileHeaderSize (32) and ChunkHeaderSize (12): the fixed IVF header sizes.
//
//   - ChunkReadStep (1 MiB): the container parser never reserves more payload
//     memory than this ahead of the bytes actually read, so a corrupt size
//     field on a short file costs at most one step.
//
// # Validation Functions
//
//	if err := limits.ValidateDimensions(w, h); err != nil {
//	    return fmt.Errorf("bad header: %w", err)
//	}
//
// Errors wrap ErrZeroDimension, ErrDimensionTooLarge or ErrDisplayExceedsBuffer
// and can be classified with errors.Is.
package limits
