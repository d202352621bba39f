package restclient

import (
	"errors"
	"fmt"
)

var (
	ErrNodeHostNotSpecified = errors.New("no specified node host URL")
	ErrUnknownResponseType  = errors.New("unknown response type")
	ErrNotFound             = errors.New("not found")
	ErrBadStatusCode        = errors.New("bad status code")
	ErrNoOutpoints          = errors.New("no outpoints requested")
	ErrTooManyOutpoints     = errors.New("too many outpoints in one request")
	ErrUnexpectedResponse   = errors.New("unexpected response")
)

func newBadStatusCodeError(statusCode int) error {
	return fmt.Errorf("%w (%d)", ErrBadStatusCode, statusCode)
}
