package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSet(t *testing.T) {
	cmd, err := Parse("set A1 =1+1")
	require.NoError(t, err)
	assert.Equal(t, Set, cmd.Kind)
	assert.Equal(t, "A1", cmd.Cell.String())
	assert.Equal(t, "=1+1", cmd.Formula)
}

func TestParseGet(t *testing.T) {
	cmd, err := Parse("get B2")
	require.NoError(t, err)
	assert.Equal(t, Get, cmd.Kind)
	assert.Equal(t, "B2", cmd.Cell.String())
}

func TestParseBareVerbIsLosingRequiredValue(t *testing.T) {
	_, err := Parse("set")
	assert.ErrorIs(t, err, ErrLosingRequiredValue)

	_, err = Parse("get")
	assert.ErrorIs(t, err, ErrLosingRequiredValue)
}

func TestParseUnknownVerbIsInvalidCommand(t *testing.T) {
	_, err := Parse("delete A1")
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestParseGetWithExtraArgsIsUnexpectedValue(t *testing.T) {
	_, err := Parse("get A1 B2")
	assert.ErrorIs(t, err, ErrUnexpectedValue)
}

func TestParseMalformedCellIsInvalidKey(t *testing.T) {
	_, err := Parse("get 1A")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = Parse("set 1A =1")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestParseSetMissingFormulaIsLosingRequiredValue(t *testing.T) {
	_, err := Parse("set A1")
	assert.ErrorIs(t, err, ErrLosingRequiredValue)

	_, err = Parse("set A1  ")
	assert.ErrorIs(t, err, ErrLosingRequiredValue)
}
