package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-artifacts/internal/pipeline"
)

func TestProgressUpdatesView(t *testing.T) {
	m := NewModel("assets/videos/clip.mp4", 100, nil)

	next, cmd := m.Update(ProgressMsg{Stats: pipeline.Stats{Frames: 25, Instance: "Grunge"}})
	assert.Nil(t, cmd)
	m = next.(Model)

	assert.InDelta(t, 0.25, m.Progress(), 1e-9)
	view := m.View()
	assert.Contains(t, view, "clip.mp4")
	assert.Contains(t, view, "25/100")
	assert.Contains(t, view, "Grunge")
	assert.Contains(t, view, "calibrating")
}

func TestDoneQuits(t *testing.T) {
	m := NewModel("clip.mp4", 10, nil)

	next, cmd := m.Update(DoneMsg{Stats: pipeline.Stats{Frames: 10}, OutputPath: "build/video.mp4"})
	require.NotNil(t, cmd)
	m = next.(Model)

	assert.True(t, m.Done)
	assert.Contains(t, m.View(), "build/video.mp4")
}

func TestDoneWithError(t *testing.T) {
	next, _ := NewModel("clip.mp4", 10, nil).Update(DoneMsg{Error: errors.New("codec unavailable")})
	assert.Contains(t, next.(Model).View(), "codec unavailable")
}

func TestQuitCancelsRunningJob(t *testing.T) {
	cancelled := false
	m := NewModel("clip.mp4", 10, func() { cancelled = true })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.True(t, cancelled)
	assert.True(t, next.(Model).Cancelled)
}

func TestProgressClampsAndHandlesUnknownTotal(t *testing.T) {
	m := NewModel("clip.mp4", 0, nil)
	m.Stats.Frames = 5
	assert.Zero(t, m.Progress())

	m.TotalFrames = 4
	assert.Equal(t, 1.0, m.Progress())
}
