package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-artifacts/internal/frame"
)

func TestFramesEndOfInput(t *testing.T) {
	a, err := frame.Filled(2, 2, frame.Red)
	require.NoError(t, err)

	src := NewFrames([]frame.Frame{a}, 25, false)
	ok, f := src.Read()
	require.True(t, ok)
	assert.True(t, a.PixelsEqual(f))

	ok, _ = src.Read()
	assert.False(t, ok)
	assert.Equal(t, 25.0, src.FPS())
}

func TestFramesLoop(t *testing.T) {
	a, err := frame.Filled(2, 2, frame.Red)
	require.NoError(t, err)
	b, err := frame.Filled(2, 2, frame.Blue)
	require.NoError(t, err)

	src := NewFrames([]frame.Frame{a, b}, 30, true)
	var got []frame.BGR
	for i := 0; i < 5; i++ {
		ok, f := src.Read()
		require.True(t, ok)
		got = append(got, f.At(0, 0))
	}
	assert.Equal(t, []frame.BGR{frame.Red, frame.Blue, frame.Red, frame.Blue, frame.Red}, got)

	require.NoError(t, src.Close())
	ok, _ := src.Read()
	assert.False(t, ok)
}

func TestFramesReturnsCopies(t *testing.T) {
	a, err := frame.Filled(1, 1, frame.Green)
	require.NoError(t, err)

	src := NewFrames([]frame.Frame{a}, 30, true)
	_, f := src.Read()
	f.Set(0, 0, frame.Red)

	_, again := src.Read()
	assert.Equal(t, frame.Green, again.At(0, 0))
}

func TestEmptyLoopingSourceEnds(t *testing.T) {
	ok, _ := NewFrames(nil, 30, true).Read()
	assert.False(t, ok)
}
