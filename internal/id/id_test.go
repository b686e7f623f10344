package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatParse(t *testing.T) {
	s := Format(1001)
	assert.Equal(t, "1001", s)

	n, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), n)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("abc")
	require.Error(t, err)

	_, err = Parse("")
	require.Error(t, err)

	// Below the allocation base.
	_, err = Parse("42")
	require.Error(t, err)
}

func TestLess(t *testing.T) {
	assert.True(t, Less("1001", "1002"))
	assert.False(t, Less("1002", "1001"))
	assert.False(t, Less("1001", "1001"))

	// Numeric, not lexicographic.
	assert.True(t, Less("1002", "10010"))
}
