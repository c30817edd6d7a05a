package vpx

import (
	"errors"
	"fmt"
)

// Decode errors
var (
	// ErrDecode matches every *DecodeError via errors.Is.
	ErrDecode = errors.New("decode failed")

	// ErrSubmissionInFlight indicates Submit was called while the previous
	// chunk's images were neither drained nor abandoned with Frames.Close.
	ErrSubmissionInFlight = errors.New("previous submission not drained")

	// ErrSessionClosed indicates use of a session after Close.
	ErrSessionClosed = errors.New("session closed")

	// ErrNilEngine indicates a session constructed without an engine.
	ErrNilEngine = errors.New("nil decode engine")

	// ErrImageReleased indicates access to an image whose planes were
	// returned to the engine.
	ErrImageReleased = errors.New("image released")
)

// Bitstream inspection errors
var (
	// ErrBitstream indicates a malformed VP9 frame header or superframe index.
	ErrBitstream = errors.New("malformed VP9 bitstream")
)

// ErrorCode is a decoder status code in libvpx vpx_codec_err_t numbering.
type ErrorCode int

const (
	CodeOK ErrorCode = iota
	CodeError
	CodeMemError
	CodeABIMismatch
	CodeIncapable
	CodeUnsupBitstream
	CodeUnsupFeature
	CodeCorruptFrame
	CodeInvalidParam
	CodeListEnd
)

var errorCodeText = [...]string{
	CodeOK:             "Success",
	CodeError:          "Unspecified internal error",
	CodeMemError:       "Memory allocation error",
	CodeABIMismatch:    "ABI version mismatch",
	CodeIncapable:      "Codec does not implement requested capability",
	CodeUnsupBitstream: "Bitstream not supported by this decoder",
	CodeUnsupFeature:   "Bitstream required feature not supported by this decoder",
	CodeCorruptFrame:   "Corrupt frame detected",
	CodeInvalidParam:   "Invalid parameter",
	CodeListEnd:        "End of iterated list",
}

func (c ErrorCode) String() string {
	if c >= 0 && int(c) < len(errorCodeText) {
		return errorCodeText[c]
	}
	return fmt.Sprintf("Unrecognized error code %d", int(c))
}

// DecodeError reports a chunk the engine refused to decode. The session stays
// usable; the next chunk may be submitted.
type DecodeError struct {
	Code   ErrorCode
	Detail string
	Chunk  uint64 // ordinal of the failed submission, starting at 1
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decode failed on chunk %d: %s (code %d)", e.Chunk, e.Code, int(e.Code))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is makes errors.Is(err, ErrDecode) hold for any *DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
