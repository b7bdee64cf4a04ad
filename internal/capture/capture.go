// Package capture reads frames from video files and webcams.
package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/logger"
	"visual-artifacts/internal/opencv/safe"
)

const component = "Capture"

// Source yields frames until ok is false, which marks end of input.
type Source interface {
	Read() (ok bool, f frame.Frame)
	FPS() float64
	Close() error
}

type Options struct {
	// Loop rewinds a file source when it runs out.
	Loop   bool
	Width  int
	Height int
}

// Capture wraps a gocv VideoCapture and reuses one Mat for every read.
// Close waits for an in-flight Read.
type Capture struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	mat    gocv.Mat
	name   string
	loop   bool
	read   int
	closed bool
	log    logger.Logger
}

func OpenFile(path string, opts Options, log logger.Logger) (*Capture, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	return newCapture(vc, path, opts, log)
}

func OpenWebcam(device int, opts Options, log logger.Logger) (*Capture, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open webcam %d: %w", device, err)
	}
	opts.Loop = false
	return newCapture(vc, fmt.Sprintf("webcam:%d", device), opts, log)
}

func newCapture(vc *gocv.VideoCapture, name string, opts Options, log logger.Logger) (*Capture, error) {
	if log == nil {
		log = logger.Nop()
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("capture %s is not opened", name)
	}
	if opts.Width > 0 && opts.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(opts.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(opts.Height))
	}

	c := &Capture{
		vc:   vc,
		mat:  gocv.NewMat(),
		name: name,
		loop: opts.Loop,
		log:  log,
	}
	log.Info(component, "capture opened", map[string]interface{}{
		"source": name,
		"fps":    c.FPS(),
		"loop":   c.loop,
	})
	return c, nil
}

func (c *Capture) Read() (bool, frame.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, frame.Frame{}
	}

	if !c.vc.Read(&c.mat) || c.mat.Empty() {
		if !c.loop || c.read == 0 {
			return false, frame.Frame{}
		}
		if err := c.rewind(); err != nil {
			c.log.Warning(component, "rewind failed", map[string]interface{}{
				"source": c.name,
				"error":  err.Error(),
			})
			return false, frame.Frame{}
		}
		if !c.vc.Read(&c.mat) || c.mat.Empty() {
			return false, frame.Frame{}
		}
	}

	view := safe.Wrap(c.mat.Clone())
	f, err := view.ToFrame()
	view.Close()
	if err != nil {
		c.log.Error(component, err, map[string]interface{}{"source": c.name})
		return false, frame.Frame{}
	}
	c.read++
	return true, f
}

// Rewind seeks a file source back to its first frame.
func (c *Capture) Rewind() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rewind()
}

func (c *Capture) rewind() error {
	if c.closed {
		return fmt.Errorf("capture %s is closed", c.name)
	}
	c.vc.Set(gocv.VideoCapturePosFrames, 0)
	if pos := c.vc.Get(gocv.VideoCapturePosFrames); pos != 0 {
		return fmt.Errorf("seek to start of %s landed on frame %.0f", c.name, pos)
	}
	c.log.Debug(component, "source rewound", map[string]interface{}{
		"source": c.name,
		"frames": c.read,
	})
	return nil
}

// FPS reports the container frame rate, 0 when unknown.
func (c *Capture) FPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0
	}
	return c.vc.Get(gocv.VideoCaptureFPS)
}

func (c *Capture) Name() string {
	return c.name
}

// FramesRead counts successful reads, across rewinds.
func (c *Capture) FramesRead() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read
}

func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.mat.Close()
	return c.vc.Close()
}

func (c *Capture) Shutdown() {
	if err := c.Close(); err != nil {
		c.log.Error(component, err, map[string]interface{}{"source": c.name})
	}
}
