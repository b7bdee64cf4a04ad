// Package safe wraps gocv.Mat with validity tracking, reference counting and
// a finalizer so native memory is released even when Close is missed.
package safe

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"

	"visual-artifacts/internal/frame"
)

type Mat struct {
	mat      gocv.Mat
	isValid  int32
	refCount int32
	mu       sync.RWMutex
	id       uint64
}

var nextMatID uint64

func NewMat(rows, cols int, matType gocv.MatType) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", cols, rows)
	}

	mat := gocv.NewMatWithSize(rows, cols, matType)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to create Mat with size %dx%d", cols, rows)
	}

	return Wrap(mat), nil
}

// Wrap takes ownership of m.
func Wrap(m gocv.Mat) *Mat {
	safeMat := &Mat{
		mat:      m,
		isValid:  1,
		refCount: 1,
		id:       atomic.AddUint64(&nextMatID, 1),
	}
	runtime.SetFinalizer(safeMat, (*Mat).finalize)
	return safeMat
}

// NewMatFromMat clones src; the caller keeps ownership of src.
func NewMatFromMat(src gocv.Mat) (*Mat, error) {
	if src.Empty() {
		return nil, fmt.Errorf("source Mat is empty")
	}

	cloned := src.Clone()
	if cloned.Empty() {
		cloned.Close()
		return nil, fmt.Errorf("failed to clone Mat")
	}

	return Wrap(cloned), nil
}

// FromFrame copies a frame's pixels into a new CV_8UC3 Mat.
func FromFrame(f frame.Frame) (*Mat, error) {
	if err := ValidateFrame(f, "FromFrame"); err != nil {
		return nil, err
	}

	view, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Pix)
	if err != nil {
		return nil, fmt.Errorf("Mat from frame bytes: %w", err)
	}
	defer view.Close()

	return NewMatFromMat(view)
}

// ToFrame copies the Mat into a BGR frame, expanding grayscale and
// saturating other depths to 8 bits.
func (sm *Mat) ToFrame() (frame.Frame, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() || sm.mat.Empty() {
		return frame.Frame{}, fmt.Errorf("cannot convert invalid Mat to frame")
	}

	src := sm.mat
	if src.Channels() == 1 {
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(src, &bgr, gocv.ColorGrayToBGR)
		src = bgr
	}
	if src.Channels() != frame.Channels {
		return frame.Frame{}, fmt.Errorf("unsupported channel count for frame: %d", src.Channels())
	}
	if src.Type() != gocv.MatTypeCV8UC3 {
		converted := gocv.NewMat()
		defer converted.Close()
		src.ConvertTo(&converted, gocv.MatTypeCV8UC3)
		src = converted
	}

	return frame.FromBytes(src.Cols(), src.Rows(), src.ToBytes())
}

func (sm *Mat) IsValid() bool {
	return atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Empty() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return true
	}

	return sm.mat.Empty()
}

func (sm *Mat) Rows() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Cols()
}

func (sm *Mat) Channels() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Channels()
}

func (sm *Mat) Type() gocv.MatType {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return gocv.MatTypeCV8UC1
	}

	return sm.mat.Type()
}

func (sm *Mat) Clone() (*Mat, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return nil, fmt.Errorf("cannot clone invalid Mat")
	}

	return NewMatFromMat(sm.mat)
}

// GetMat exposes the underlying Mat. It stays owned by sm.
func (sm *Mat) GetMat() gocv.Mat {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat
}

// Ptr is used as the destination argument of gocv calls.
func (sm *Mat) Ptr() *gocv.Mat {
	return &sm.mat
}

func (sm *Mat) ID() uint64 {
	return sm.id
}

func (sm *Mat) AddRef() {
	atomic.AddInt32(&sm.refCount, 1)
}

func (sm *Mat) Release() {
	if atomic.AddInt32(&sm.refCount, -1) == 0 {
		sm.Close()
	}
}

func (sm *Mat) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		sm.mat.Close()
		runtime.SetFinalizer(sm, nil)
	}
}

func (sm *Mat) finalize() {
	if atomic.LoadInt32(&sm.isValid) == 1 {
		sm.Close()
	}
}
