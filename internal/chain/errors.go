package chain

import "fmt"

// ReadError indicates a read-only contract call failed at the transport or
// node level. It is distinct from absence: a missing record decodes as a
// Clarity none and is never reported through this type.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("contract read %s: %v", e.Op, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// WriteError indicates a transaction broadcast failed before it was accepted
// by the node. Rejection by consensus is not a WriteError; it surfaces as a
// failed status from polling.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("contract write %s: %v", e.Op, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// DecodeError indicates a contract response did not match the expected
// Clarity shape.
type DecodeError struct {
	Want string
	Got  string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode clarity value: want %s, got %s: %v", e.Want, e.Got, e.Err)
	}
	return fmt.Sprintf("decode clarity value: want %s, got %s", e.Want, e.Got)
}

func (e *DecodeError) Unwrap() error { return e.Err }
