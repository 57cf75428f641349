package sped

import (
	"fmt"
	"strings"
)

// MalformedResponseError is returned when a response, or the manifest
// embedded in it, is not parseable XML or lacks the embedded manifest.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// UnexpectedStructureError is returned when the XML parses but does not
// have the expected shape. It usually means the service contract changed.
type UnexpectedStructureError struct {
	// Path lists the nodes leading to the missing or unexpected one.
	Path []string

	// Detail adds context such as a SOAP fault message.
	Detail string
}

func (e *UnexpectedStructureError) Error() string {
	msg := "unexpected structure at " + strings.Join(e.Path, "/")
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}
