package protocol

import (
	"fmt"

	"github.com/sheetcore/reactive-sheets/internal/domain/value"
)

// Reply is the wire-level response shape of spec.md §6: either a value
// reply carrying a cell name and its value, or a top-level error reply.
type Reply struct {
	IsError bool
	Cell    string
	Value   value.Value
	Message string
}

// ValueReply builds a successful get's reply.
func ValueReply(cell string, v value.Value) Reply {
	return Reply{Cell: cell, Value: v}
}

// ErrorReply builds a parse-error or cell-error reply.
func ErrorReply(message string) Reply {
	return Reply{IsError: true, Message: message}
}

// ShapeGet applies the get-pipeline reply shaping rule of spec.md §4.6: a
// self-referential or reference-of-error value surfaces as a top-level
// error reply, never as a value reply wrapping an error.
func ShapeGet(cell string, v value.Value) Reply {
	if v.IsSelfReferential() || (v.IsAnyError() && v.Message == value.ReferenceErrorMessage) {
		return ErrorReply(v.Message)
	}
	return ValueReply(cell, v)
}

// Encode renders a Reply as one protocol line.
func (r Reply) Encode() string {
	if r.IsError {
		return fmt.Sprintf("error %s", r.Message)
	}
	return fmt.Sprintf("value %s %s", r.Cell, r.Value.String())
}
