package domain

import "errors"

var (
	ErrMissingMask     = errors.New("mask input required but not supplied")
	ErrMissingImage    = errors.New("image input required but not supplied")
	ErrUnknownPolicy   = errors.New("unknown missing_mask policy")
	ErrExtentMismatch  = errors.New("mask extent does not match image extent")
	ErrBadChannelCount = errors.New("unsupported image channel count")
)
