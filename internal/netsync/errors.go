package netsync

import (
	"errors"
	"fmt"
)

// DropCode says why an inbound frame was ignored.
type DropCode string

const (
	DropMalformed      DropCode = "MALFORMED"
	DropUnknownEvent   DropCode = "UNKNOWN_EVENT"
	DropForeignRoom    DropCode = "FOREIGN_ROOM"
	DropOwnOrigin      DropCode = "OWN_ORIGIN"
	DropInvalidPayload DropCode = "INVALID_PAYLOAD"
)

// DropError is returned by Decode for frames the gateway ignores. Dropping
// is routine on a shared broadcast channel and never fatal.
type DropError struct {
	Code   DropCode
	Reason string
}

func (e *DropError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func newDropError(code DropCode, reason string) *DropError {
	return &DropError{Code: code, Reason: reason}
}

// DropCodeOf returns the drop code of err, or "" if err is not a drop.
// Uses errors.As to handle wrapped errors.
func DropCodeOf(err error) DropCode {
	var de *DropError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
