package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrInvalidFrame    = errors.New("invalid frame format")
	ErrUnknownAction   = errors.New("unknown action")
	ErrEmptyMessage    = errors.New("message body is empty")
	ErrMessageTooLong  = errors.New("message body is too long")
)
