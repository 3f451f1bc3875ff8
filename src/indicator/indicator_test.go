package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulated_ConfigureSetToggle(t *testing.T) {
	s := NewSimulated(nil)
	require.True(t, s.IsReady())
	assert.False(t, s.Configured())

	require.NoError(t, s.Configure(true))
	assert.True(t, s.Configured())
	assert.True(t, s.Active())

	require.NoError(t, s.Toggle())
	assert.False(t, s.Active())

	require.NoError(t, s.Toggle())
	assert.True(t, s.Active())

	require.NoError(t, s.Set(false))
	assert.False(t, s.Active())

	require.NoError(t, s.Set(true))
	require.NoError(t, s.Set(true))
	assert.True(t, s.Active())

	assert.Equal(t, 6, s.Ops())
}

func TestSimulated_NotReady(t *testing.T) {
	s := NewSimulated(nil)
	s.SetReady(false)
	assert.False(t, s.IsReady())
	assert.Equal(t, 0, s.Ops())
}

func TestNew(t *testing.T) {
	t.Run("default is simulated", func(t *testing.T) {
		ind, err := New(Config{}, nil)
		require.NoError(t, err)
		assert.IsType(t, &Simulated{}, ind)
	})

	t.Run("sim", func(t *testing.T) {
		ind, err := New(Config{Driver: DriverSim}, nil)
		require.NoError(t, err)
		assert.IsType(t, &Simulated{}, ind)
	})

	t.Run("gpiocdev", func(t *testing.T) {
		ind, err := New(Config{Driver: DriverGPIOCdev, Chip: "gpiochip-does-not-exist", Line: 13}, nil)
		require.NoError(t, err)
		assert.IsType(t, &Line{}, ind)
		assert.False(t, ind.IsReady())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New(Config{Driver: "pwm"}, nil)
		assert.ErrorContains(t, err, `unknown indicator driver "pwm"`)
	})
}

func TestStateName(t *testing.T) {
	assert.Equal(t, "on", StateName(true))
	assert.Equal(t, "off", StateName(false))
}
