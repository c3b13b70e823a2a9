package cellstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sheetcore/reactive-sheets/internal/domain/value"
)

func TestGetOrInsertCreatesBlankRecord(t *testing.T) {
	s := New()
	rec := s.GetOrInsert("A1")
	assert.True(t, rec.IsBlank())
	assert.Equal(t, value.Absent, rec.Value)
}

func TestGetOrInsertIsIdempotent(t *testing.T) {
	s := New()
	first := s.GetOrInsert("A1")
	first.Formula = "=1+1"

	second := s.GetOrInsert("A1")
	assert.Same(t, first, second)
	assert.Equal(t, "=1+1", second.Formula)
}

func TestGetReportsAbsence(t *testing.T) {
	s := New()
	_, ok := s.Get("A1")
	assert.False(t, ok)

	s.GetOrInsert("A1")
	rec, ok := s.Get("A1")
	assert.True(t, ok)
	assert.NotNil(t, rec)
}

func TestStampBefore(t *testing.T) {
	early := Stamp{Wall: 1, Seq: 5}
	late := Stamp{Wall: 1, Seq: 6}
	assert.True(t, early.Before(late))
	assert.False(t, late.Before(early))

	assert.True(t, Stamp{Wall: 1}.Before(Stamp{Wall: 2}))
}
