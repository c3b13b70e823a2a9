// Package cellstore is the cell store of spec.md §4.1 and §3: a mapping
// from cell identifier to cell record, with cells created lazily on first
// reference and never destroyed. Exclusive mutation of a record's fields
// is mediated entirely by the lock pool's permit (internal/domain/lockpool);
// Record itself carries no lock of its own.
package cellstore

import (
	"github.com/sheetcore/reactive-sheets/internal/domain/value"
)

// Stamp is a monotonic logical clock: wall time broken by a per-process
// sequence counter, so two sets issued back-to-back from one worker never
// tie (spec §9's Design Notes explicitly invite this tiebreaker).
type Stamp struct {
	Wall int64
	Seq  uint64
}

// Before reports whether s happened strictly before o.
func (s Stamp) Before(o Stamp) bool {
	if s.Wall != o.Wall {
		return s.Wall < o.Wall
	}
	return s.Seq < o.Seq
}

// zero is the "never written" timestamp (spec §3: timestamp = -∞).
var zero = Stamp{}

// Record is a cell's stored state (spec.md §3's cell record). Dependencies
// (the set of cells whose formula reads this one) live in the dependency
// graph rather than duplicated here, so there is exactly one place that can
// disagree with itself about an edge.
type Record struct {
	Value     value.Value
	Formula   string
	Timestamp Stamp

	// CastExempt is set after a set whose evaluated value was the
	// evaluator's untranslatable-return sentinel (value.CastErrorMessage).
	// The *next* set on this cell skips dependency retraction, per the
	// exemption spec.md §4.5 step 5 and §7(d) describe.
	CastExempt bool
}

// NewRecord returns the blank record a cell starts life with.
func NewRecord() *Record {
	return &Record{Value: value.Absent, Timestamp: zero}
}

// IsBlank reports whether the record has never been written.
func (r *Record) IsBlank() bool { return r.Timestamp == zero }
