package adapter

import "errors"

var (
	ErrPublisherClosed        = errors.New("session event publisher closed")
	ErrUnexpectedScriptResult = errors.New("unexpected rate limiter script result")
)
