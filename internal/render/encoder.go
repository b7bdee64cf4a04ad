package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/logger"
	"visual-artifacts/internal/opencv/safe"
)

const encoderComponent = "Encoder"

var ErrEncoderClosed = errors.New("encoder is closed")

// OutputPath names a render output after its start time.
func OutputPath(buildDir string, at time.Time) string {
	return filepath.Join(buildDir, "video_"+at.Format("2006_01_02_15_04_05")+".mp4")
}

// Encoder writes frames to a video file. The writer opens on the first
// frame, whose size fixes the stream geometry. Write and Close are
// serialised, and a closed encoder rejects further frames.
type Encoder struct {
	mu     sync.Mutex
	closed bool
	path   string
	codec  string
	fps    float64
	writer *gocv.VideoWriter
	width  int
	height int
	count  int
	log    logger.Logger
}

func NewEncoder(path, codec string, fps float64, log logger.Logger) (*Encoder, error) {
	if log == nil {
		log = logger.Nop()
	}
	if fps <= 0 {
		return nil, fmt.Errorf("encoder fps must be positive, got %v", fps)
	}
	if len(codec) != 4 {
		return nil, fmt.Errorf("codec must be a four character code, got %q", codec)
	}
	return &Encoder{path: path, codec: codec, fps: fps, log: log}, nil
}

func (e *Encoder) Write(f frame.Frame) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEncoderClosed
	}
	if e.writer == nil {
		if err := e.open(f.Width, f.Height); err != nil {
			return err
		}
	}
	if f.Width != e.width || f.Height != e.height {
		return fmt.Errorf("frame %dx%d does not match stream %dx%d", f.Width, f.Height, e.width, e.height)
	}

	drawn, err := Rasterize(f)
	if err != nil {
		return err
	}

	mat, err := safe.FromFrame(drawn)
	if err != nil {
		return err
	}
	defer mat.Close()

	if err := e.writer.Write(mat.GetMat()); err != nil {
		return fmt.Errorf("write frame %d: %w", e.count, err)
	}
	e.count++
	return nil
}

func (e *Encoder) open(width, height int) error {
	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	writer, err := gocv.VideoWriterFile(e.path, e.codec, e.fps, width, height, true)
	if err != nil {
		return fmt.Errorf("open video writer %s: %w", e.path, err)
	}
	if !writer.IsOpened() {
		writer.Close()
		return fmt.Errorf("video writer %s did not open with codec %s", e.path, e.codec)
	}

	e.writer, e.width, e.height = writer, width, height
	e.log.Info(encoderComponent, "encoder opened", map[string]interface{}{
		"path":   e.path,
		"codec":  e.codec,
		"fps":    e.fps,
		"width":  width,
		"height": height,
	})
	return nil
}

func (e *Encoder) Path() string {
	return e.path
}

func (e *Encoder) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	if e.writer == nil {
		return nil
	}
	err := e.writer.Close()
	e.writer = nil
	e.log.Info(encoderComponent, "encoder closed", map[string]interface{}{
		"path":   e.path,
		"frames": e.count,
	})
	return err
}

func (e *Encoder) Shutdown() {
	if err := e.Close(); err != nil {
		e.log.Error(encoderComponent, err, map[string]interface{}{"path": e.path})
	}
}
