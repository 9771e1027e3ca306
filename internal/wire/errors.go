package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData is returned when the input ends in the middle of a
	// value.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrValueTooLong is returned when a string or a collection does not fit
	// its length prefix.
	ErrValueTooLong = errors.New("value too long")
	// ErrBufferFull is returned when an encoder would grow past its capacity.
	ErrBufferFull = errors.New("buffer full")
	// ErrTrailingData is returned when a value was decoded from a buffer that
	// had to be consumed completely, but bytes were left over.
	ErrTrailingData = errors.New("trailing data")
	// ErrUnknownVariant matches every *UnknownVariantError.
	ErrUnknownVariant = errors.New("unknown variant")
)

type UnknownVariantError struct {
	Type  string
	Index uint8
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown %s variant %d", e.Type, e.Index)
}

func (e *UnknownVariantError) Is(target error) bool {
	return target == ErrUnknownVariant
}
