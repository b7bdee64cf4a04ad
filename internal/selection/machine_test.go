package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-artifacts/internal/calibration"
	"visual-artifacts/internal/transform"
)

// scripted replays fixed draws so tests control every choice.
type scripted struct {
	values []int
	calls  []int
}

func (s *scripted) IntN(n int) int {
	s.calls = append(s.calls, n)
	v := s.values[0]
	s.values = s.values[1:]
	return v % n
}

func testPools() Pools {
	return Pools{
		High: Pool{
			Ops:         []transform.Op{transform.HueShift, transform.RGBSplit, transform.Kaleidoscope},
			MinDuration: 30,
			MaxDuration: 60,
		},
		Low: Pool{
			Ops:         []transform.Op{transform.ChannelSwap, transform.ColorBlast},
			MinDuration: 10,
			MaxDuration: 30,
		},
	}
}

func TestNextDrawsFromClassPool(t *testing.T) {
	src := &scripted{values: []int{1, 5, 0, 0}}
	m, err := NewMachine(testPools(), src)
	require.NoError(t, err)

	c := m.Next(calibration.Above)
	assert.True(t, c.Drawn)
	assert.Equal(t, transform.RGBSplit, c.Op)
	assert.Equal(t, 34, c.Remaining) // duration 35, one consumed
	assert.Equal(t, []int{3, 31}, src.calls)
}

func TestChoiceHeldForExactlyDrawnDuration(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		m, err := NewMachine(testPools(), NewSource(seed))
		require.NoError(t, err)

		first := m.Next(calibration.Below)
		require.True(t, first.Drawn)
		d := first.Remaining + 1
		assert.GreaterOrEqual(t, d, 10)
		assert.LessOrEqual(t, d, 30)

		for i := 1; i < d; i++ {
			class := calibration.Below
			if i%2 == 0 {
				class = calibration.Above
			}
			c := m.Next(class)
			assert.False(t, c.Drawn, "seed %d frame %d re-rolled early", seed, i)
			assert.Equal(t, first.Op, c.Op)
		}
		assert.Equal(t, 1, m.Draws())

		c := m.Next(calibration.Above)
		assert.True(t, c.Drawn)
		assert.Equal(t, 2, m.Draws())
		assert.Contains(t, testPools().High.Ops, c.Op)
		assert.GreaterOrEqual(t, c.Remaining+1, 30)
		assert.LessOrEqual(t, c.Remaining+1, 60)
	}
}

func TestEmptyPoolFallsBackToIdentity(t *testing.T) {
	pools := Pools{
		High: Pool{MinDuration: 1, MaxDuration: 1},
		Low:  Pool{MinDuration: 1, MaxDuration: 1},
	}
	m, err := NewMachine(pools, NewSource(7))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		c := m.Next(calibration.Above)
		assert.Equal(t, transform.Identity, c.Op)
		assert.True(t, c.Drawn)
	}
}

func TestSingleFrameDurationRedrawsEveryFrame(t *testing.T) {
	pools := Pools{
		High: Pool{Ops: []transform.Op{transform.EdgeFlash}, MinDuration: 1, MaxDuration: 1},
		Low:  Pool{Ops: []transform.Op{transform.EdgeOverlay}, MinDuration: 1, MaxDuration: 1},
	}
	m, err := NewMachine(pools, NewSource(3))
	require.NoError(t, err)

	assert.Equal(t, transform.EdgeFlash, m.Next(calibration.Above).Op)
	assert.Equal(t, transform.EdgeOverlay, m.Next(calibration.Below).Op)
	assert.Equal(t, transform.EdgeFlash, m.Next(calibration.Above).Op)
	assert.Equal(t, 3, m.Draws())
}

func TestResetForcesRedraw(t *testing.T) {
	m, err := NewMachine(testPools(), NewSource(11))
	require.NoError(t, err)

	m.Next(calibration.Above)
	m.Reset()
	op, remaining := m.Current()
	assert.Equal(t, transform.Identity, op)
	assert.Equal(t, 0, remaining)

	assert.True(t, m.Next(calibration.Below).Drawn)
}

func TestPoolValidation(t *testing.T) {
	tests := []struct {
		name string
		pool Pool
	}{
		{"zero min", Pool{MinDuration: 0, MaxDuration: 3}},
		{"max below min", Pool{MinDuration: 5, MaxDuration: 3}},
		{"invalid op", Pool{Ops: []transform.Op{transform.Op(500)}, MinDuration: 1, MaxDuration: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMachine(Pools{High: tt.pool, Low: testPools().Low}, nil)
			assert.Error(t, err)
		})
	}
}
