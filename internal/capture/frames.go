package capture

import "visual-artifacts/internal/frame"

// Frames replays an in-memory sequence, optionally looping.
type Frames struct {
	frames []frame.Frame
	fps    float64
	loop   bool
	pos    int
}

func NewFrames(frames []frame.Frame, fps float64, loop bool) *Frames {
	return &Frames{frames: frames, fps: fps, loop: loop}
}

func (s *Frames) Read() (bool, frame.Frame) {
	if s.pos >= len(s.frames) {
		if !s.loop || len(s.frames) == 0 {
			return false, frame.Frame{}
		}
		s.pos = 0
	}
	f := s.frames[s.pos].Clone()
	s.pos++
	return true, f
}

func (s *Frames) FPS() float64 {
	return s.fps
}

func (s *Frames) Close() error {
	s.pos = len(s.frames)
	s.loop = false
	return nil
}
