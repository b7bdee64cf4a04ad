// Package registry owns the named effect instances, the active selection and
// the global enable toggle, and dispatches frames either through automatic
// selection or through an explicit operation list.
package registry

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	"visual-artifacts/internal/effect"
	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/logger"
	"visual-artifacts/internal/transform"
)

const component = "Registry"

var ErrUnknownInstance = errors.New("unknown effect instance")

type Manager struct {
	instances map[string]*effect.Instance
	active    *effect.Instance
	enabled   bool
	history   []string
	opHistory []string
	log       logger.Logger
	mu        sync.RWMutex
}

func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		instances: make(map[string]*effect.Instance),
		enabled:   true,
		log:       log,
	}
}

// Register adds an instance under its name. Names are unique.
func (m *Manager) Register(inst *effect.Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if inst == nil {
		return fmt.Errorf("cannot register nil instance")
	}
	if _, exists := m.instances[inst.Name()]; exists {
		return fmt.Errorf("instance already registered: %s", inst.Name())
	}

	m.instances[inst.Name()] = inst
	return nil
}

// Activate selects the instance used by Dispatch. Unknown names leave the
// current selection untouched.
func (m *Manager) Activate(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, exists := m.instances[name]
	if !exists {
		err := fmt.Errorf("%w: %s", ErrUnknownInstance, name)
		m.log.Warning(component, "could not find instance", map[string]interface{}{
			"instance":  name,
			"available": m.namesLocked(),
		})
		return err
	}

	m.active = inst
	m.history = append(m.history, name)
	m.log.Info(component, "instance activated", map[string]interface{}{"instance": name})
	return nil
}

func (m *Manager) Active() *effect.Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

func (m *Manager) Get(name string) (*effect.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if inst, exists := m.instances[name]; exists {
		return inst, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownInstance, name)
}

// Names lists registered instances alphabetically.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.namesLocked()
}

func (m *Manager) namesLocked() []string {
	names := make([]string, 0, len(m.instances))
	for name := range m.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Operations maps each instance to the names of its declared operations.
func (m *Manager) Operations() map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]string, len(m.instances))
	for name, inst := range m.instances {
		ops := inst.Ops()
		names := make([]string, len(ops))
		for i, op := range ops {
			names[i] = op.String()
		}
		out[name] = names
	}
	return out
}

func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Toggle flips the enable flag and returns the new value.
func (m *Manager) Toggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = !m.enabled
	return m.enabled
}

// History returns activated instance names in activation order.
func (m *Manager) History() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.history...)
}

// OperationHistory returns explicitly requested operation names in first-use order.
func (m *Manager) OperationHistory() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.opHistory...)
}

func (m *Manager) recordOp(name string) {
	for _, seen := range m.opHistory {
		if seen == name {
			return
		}
	}
	m.opHistory = append(m.opHistory, name)
}

// Dispatch transforms f with the active instance. When disabled or nothing
// is active, f is returned unchanged. Failures never escape: the frame from
// before the failing step is passed through.
func (m *Manager) Dispatch(f frame.Frame, score float64, explicitOps []string) frame.Frame {
	m.mu.Lock()
	active, enabled := m.active, m.enabled
	if active != nil && enabled {
		for _, name := range explicitOps {
			m.recordOp(name)
		}
	}
	m.mu.Unlock()

	if active == nil || !enabled {
		return f
	}

	result := f.Clone()

	if len(explicitOps) > 0 {
		return m.runExplicit(active, result, score, explicitOps)
	}

	out, err := m.safeProcess(active, result, score)
	if err != nil {
		m.log.Error(component, err, map[string]interface{}{
			"instance": active.Name(),
			"stage":    "automatic",
		})
		return result
	}
	return out
}

func (m *Manager) runExplicit(active *effect.Instance, result frame.Frame, score float64, names []string) frame.Frame {
	for _, name := range names {
		op, err := transform.ParseOp(name)
		if err != nil || !active.Has(op) {
			m.log.Warning(component, "operation not found, skipping", map[string]interface{}{
				"instance":  active.Name(),
				"operation": name,
			})
			continue
		}

		out, err := m.safeApply(active, op, result, score)
		if err != nil {
			m.log.Error(component, err, map[string]interface{}{
				"instance":  active.Name(),
				"operation": name,
			})
			continue
		}
		result = out
	}
	return result
}

func (m *Manager) safeProcess(inst *effect.Instance, f frame.Frame, score float64) (out frame.Frame, err error) {
	defer recoverInto(&err, inst.Name(), "automatic")
	out, _, err = inst.Process(f, score)
	return out, err
}

func (m *Manager) safeApply(inst *effect.Instance, op transform.Op, f frame.Frame, score float64) (out frame.Frame, err error) {
	defer recoverInto(&err, inst.Name(), op.String())
	return inst.Apply(op, f, score)
}

func recoverInto(err *error, instance, operation string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic in %s/%s: %v\n%s", instance, operation, r, debug.Stack())
	}
}
