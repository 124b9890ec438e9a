package externalApi

import "errors"

var (
	ErrNotFound    = errors.New("error not found")
	ErrNetwork     = errors.New("error network failure")
	ErrBadStatus   = errors.New("error unexpected response status")
	ErrBadResponse = errors.New("error malformed response")
)
