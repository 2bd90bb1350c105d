package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/passage.route/internal/geo"
)

func TestParseCoordinate(t *testing.T) {
	t.Parallel()

	c, err := parseCoordinate("48.66,-2.03")
	require.NoError(t, err)
	assert.Equal(t, geo.NewCoordinate(48.66, -2.03), c)

	c, err = parseCoordinate(" 42.68 , 9.30 ")
	require.NoError(t, err)
	assert.Equal(t, geo.NewCoordinate(42.68, 9.30), c)
}

func TestParseCoordinateErrors(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"48.66",
		"48.66,-2.03,7",
		"north,west",
		"91,0",
		"0,181",
	}
	for _, in := range cases {
		_, err := parseCoordinate(in)
		assert.Error(t, err, "input %q should not parse", in)
	}
}
