package gameapi

import "fmt"

// TransportError wraps connect/receive/timeout failures. The client retries
// these; everything else surfaces immediately.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError marks a malformed response: invalid JSON or an envelope the
// client cannot interpret. Not retried.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return "protocol: " + e.Reason }

// GameError is a server-reported failure, surfaced verbatim to the caller.
type GameError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *GameError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
