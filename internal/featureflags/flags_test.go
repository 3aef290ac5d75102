package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreOn(t *testing.T) {
	f := Default()
	assert.True(t, f.Enabled(Registration, 0))
	assert.True(t, f.Enabled(Comments, 7))
	assert.False(t, f.Enabled("unknown", 7))

	var nilFlags *Flags
	assert.True(t, nilFlags.Enabled(Comments, 1))
}

func TestParse(t *testing.T) {
	f, err := Parse(" Registration = OFF , comments=false ")
	require.NoError(t, err)
	assert.False(t, f.Enabled(Registration, 0))
	assert.False(t, f.Enabled(Comments, 1))

	for _, raw := range []string{"typo=on", "comments", "comments=maybe", "comments=150%", "comments=x%"} {
		_, err := Parse(raw)
		assert.Error(t, err, raw)
	}
}

func TestPercentageRollout(t *testing.T) {
	f, err := Parse("comments=30%")
	require.NoError(t, err)

	assert.False(t, f.Enabled(Comments, 0), "anonymous users are outside partial rollouts")

	first := f.Enabled(Comments, 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, f.Enabled(Comments, 42))
	}

	on := 0
	for id := uint(1); id <= 1000; id++ {
		if f.Enabled(Comments, id) {
			on++
		}
	}
	assert.InDelta(t, 300, on, 80)

	all, err := Parse("comments=100%,registration=0%")
	require.NoError(t, err)
	assert.True(t, all.Enabled(Comments, 0))
	assert.False(t, all.Enabled(Registration, 0))
}
