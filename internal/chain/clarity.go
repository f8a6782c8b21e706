package chain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// =============================================================================
// Clarity Value Codec
// =============================================================================

// Value is the decoded JSON form of a Clarity value as returned by the node's
// read-only call endpoint. The parsers below validate shape once at the
// boundary; nothing downstream handles raw JSON.
type Value struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Clarity value type tags used on the wire.
const (
	TypeUint        = "uint"
	TypeInt         = "int"
	TypeBool        = "bool"
	TypeStringASCII = "string-ascii"
	TypeStringUTF8  = "string-utf8"
	TypePrincipal   = "principal"
	TypeTuple       = "tuple"
	TypeList        = "list"
	TypeOptional    = "optional"
	TypeNone        = "none"
	TypeResponseOK  = "response-ok"
	TypeResponseErr = "response-err"
)

// ParseUint parses an unsigned integer value. Clarity uints are serialized as
// decimal strings because they can exceed the range of a JSON number.
func ParseUint(v Value) (uint64, error) {
	if v.Type != TypeUint && v.Type != TypeInt {
		return 0, &DecodeError{Want: TypeUint, Got: v.Type}
	}
	var s string
	if err := json.Unmarshal(v.Value, &s); err != nil {
		// Older node versions emit small values as bare numbers.
		var n uint64
		if err2 := json.Unmarshal(v.Value, &n); err2 == nil {
			return n, nil
		}
		return 0, &DecodeError{Want: TypeUint, Got: v.Type, Err: err}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, &DecodeError{Want: TypeUint, Got: v.Type, Err: err}
	}
	return n, nil
}

// ParseBool parses a boolean value.
func ParseBool(v Value) (bool, error) {
	if v.Type != TypeBool {
		return false, &DecodeError{Want: TypeBool, Got: v.Type}
	}
	var b bool
	if err := json.Unmarshal(v.Value, &b); err != nil {
		return false, &DecodeError{Want: TypeBool, Got: v.Type, Err: err}
	}
	return b, nil
}

// ParseString parses a string-ascii or string-utf8 value.
func ParseString(v Value) (string, error) {
	if v.Type != TypeStringASCII && v.Type != TypeStringUTF8 {
		return "", &DecodeError{Want: TypeStringASCII, Got: v.Type}
	}
	var s string
	if err := json.Unmarshal(v.Value, &s); err != nil {
		return "", &DecodeError{Want: v.Type, Got: v.Type, Err: err}
	}
	return s, nil
}

// ParsePrincipal parses a principal (wallet or contract address) value.
func ParsePrincipal(v Value) (string, error) {
	if v.Type != TypePrincipal {
		return "", &DecodeError{Want: TypePrincipal, Got: v.Type}
	}
	var s string
	if err := json.Unmarshal(v.Value, &s); err != nil {
		return "", &DecodeError{Want: TypePrincipal, Got: v.Type, Err: err}
	}
	return s, nil
}

// ParseTuple parses a tuple into its named fields.
func ParseTuple(v Value) (map[string]Value, error) {
	if v.Type != TypeTuple {
		return nil, &DecodeError{Want: TypeTuple, Got: v.Type}
	}
	var fields map[string]Value
	if err := json.Unmarshal(v.Value, &fields); err != nil {
		return nil, &DecodeError{Want: TypeTuple, Got: v.Type, Err: err}
	}
	return fields, nil
}

// ParseList parses a list of values.
func ParseList(v Value) ([]Value, error) {
	if v.Type != TypeList {
		return nil, &DecodeError{Want: TypeList, Got: v.Type}
	}
	var items []Value
	if err := json.Unmarshal(v.Value, &items); err != nil {
		return nil, &DecodeError{Want: TypeList, Got: v.Type, Err: err}
	}
	return items, nil
}

// ParseOptional unwraps an optional value. A none returns (nil, nil) so the
// caller can distinguish absence from a malformed payload.
func ParseOptional(v Value) (*Value, error) {
	switch v.Type {
	case TypeNone:
		return nil, nil
	case TypeOptional:
		var inner Value
		if err := json.Unmarshal(v.Value, &inner); err != nil {
			return nil, &DecodeError{Want: TypeOptional, Got: v.Type, Err: err}
		}
		return &inner, nil
	default:
		return nil, &DecodeError{Want: TypeOptional, Got: v.Type}
	}
}

// ParseResponse unwraps a response value, returning an error for response-err.
func ParseResponse(v Value) (Value, error) {
	switch v.Type {
	case TypeResponseOK:
		var inner Value
		if err := json.Unmarshal(v.Value, &inner); err != nil {
			return Value{}, &DecodeError{Want: TypeResponseOK, Got: v.Type, Err: err}
		}
		return inner, nil
	case TypeResponseErr:
		var inner Value
		if err := json.Unmarshal(v.Value, &inner); err != nil {
			return Value{}, &DecodeError{Want: TypeResponseOK, Got: v.Type, Err: err}
		}
		return Value{}, fmt.Errorf("contract returned err value of type %s", inner.Type)
	default:
		return Value{}, &DecodeError{Want: TypeResponseOK, Got: v.Type}
	}
}

// TupleField extracts a named field from a parsed tuple.
func TupleField(fields map[string]Value, name string) (Value, error) {
	v, ok := fields[name]
	if !ok {
		return Value{}, &DecodeError{Want: name, Got: "missing field"}
	}
	return v, nil
}

// =============================================================================
// Call Arguments
// =============================================================================

// Arg is a typed argument for a contract call.
type Arg struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// Uint builds an unsigned integer argument.
func Uint(v uint64) Arg { return Arg{Type: TypeUint, Value: strconv.FormatUint(v, 10)} }

// Bool builds a boolean argument.
func Bool(v bool) Arg { return Arg{Type: TypeBool, Value: v} }

// StringASCII builds a string-ascii argument.
func StringASCII(v string) Arg { return Arg{Type: TypeStringASCII, Value: v} }

// StringUTF8 builds a string-utf8 argument.
func StringUTF8(v string) Arg { return Arg{Type: TypeStringUTF8, Value: v} }

// Principal builds a principal argument.
func Principal(v string) Arg { return Arg{Type: TypePrincipal, Value: v} }

// Some wraps an argument in an optional.
func Some(inner Arg) Arg { return Arg{Type: TypeOptional, Value: inner} }

// None builds an empty optional argument.
func None() Arg { return Arg{Type: TypeNone} }
