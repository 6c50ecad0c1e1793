package errors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyKey          = errors.New("empty key")
	ErrInvalidData       = errors.New("invalid data type")
	ErrMissingField      = errors.New("missing required field")
	ErrIncompatibleModel = errors.New("weight keys incompatible with current global model")
	ErrOffline           = errors.New("device is offline")
	ErrQueueFull         = errors.New("pending update queue is full")
	ErrModelNotLoaded    = errors.New("detection model not loaded")
	ErrBadImage          = errors.New("malformed image data")
)
