package cellid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	id, err := Parse("a1")
	require.NoError(t, err)
	assert.Equal(t, "A", id.Col)
	assert.Equal(t, 1, id.Row)
	assert.Equal(t, "A1", id.String())
}

func TestParseRejectsLeadingZero(t *testing.T) {
	_, err := Parse("A01")
	assert.Error(t, err)
}

func TestParseRejectsMissingRow(t *testing.T) {
	_, err := Parse("A")
	assert.Error(t, err)
}

func TestColumnNumberRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		num  int
	}{
		{"A", 1},
		{"Z", 26},
		{"AA", 27},
		{"AZ", 52},
		{"BA", 53},
	}
	for _, c := range cases {
		assert.Equal(t, c.num, ColumnNumber(c.name), c.name)
		assert.Equal(t, c.name, ColumnName(c.num), c.name)
	}
}

func TestBuild(t *testing.T) {
	id := Build(27, 5)
	assert.Equal(t, "AA5", id.String())
	assert.Equal(t, "AA", id.Col)
	assert.Equal(t, 5, id.Row)
}
