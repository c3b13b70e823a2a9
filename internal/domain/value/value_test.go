package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberAndString(t *testing.T) {
	v := Number(3.5)
	assert.Equal(t, KindScalar, v.Kind)
	assert.Equal(t, "3.5", v.String())
	assert.False(t, v.IsAnyError())
}

func TestSelfReferential(t *testing.T) {
	v := SelfReferential("A1")
	assert.True(t, v.IsAnyError())
	assert.True(t, v.IsSelfReferential())
	assert.False(t, v.IsCastError())
}

func TestCastError(t *testing.T) {
	v := CastError()
	assert.True(t, v.IsAnyError())
	assert.True(t, v.IsCastError())
	assert.False(t, v.IsSelfReferential())
	assert.Equal(t, CastErrorMessage, v.Message)
}

func TestReferenceError(t *testing.T) {
	v := ReferenceError()
	assert.True(t, v.IsAnyError())
	assert.False(t, v.IsSelfReferential())
	assert.False(t, v.IsCastError())
	assert.Equal(t, ReferenceErrorMessage, v.Message)
}

func TestAbsentString(t *testing.T) {
	assert.Equal(t, "", Absent.String())
	assert.False(t, Absent.IsAnyError())
}
