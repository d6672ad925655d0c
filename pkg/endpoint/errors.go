package endpoint

import "fmt"

// TransportError reports a network-level failure: connect or read timeouts,
// refused connections, DNS failures, or a broken body stream.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// ProtocolError reports a non-200 response from the server. Message holds the
// error text accumulated from the response body.
type ProtocolError struct {
	StatusCode int
	Message    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// DecodeError reports a response line that could not be decoded. A corrupt
// line invalidates the whole stream, so it is fatal to the call.
type DecodeError struct {
	Line  string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response line %q: %v", e.Line, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }
