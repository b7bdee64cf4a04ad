// Package shutdown releases capture, encoder and display resources in
// reverse registration order when the run ends or a signal arrives.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"visual-artifacts/internal/logger"
)

const component = "ShutdownManager"

const DefaultTimeout = 10 * time.Second

type Shutdownable interface {
	Shutdown()
}

// Func adapts a plain function to Shutdownable.
type Func func()

func (f Func) Shutdown() { f() }

type entry struct {
	name      string
	component Shutdownable
}

type Manager struct {
	components []entry
	logger     logger.Logger
	timeout    time.Duration
	mu         sync.Mutex
	done       chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		logger:  log,
		timeout: DefaultTimeout,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (m *Manager) SetTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = d
}

func (m *Manager) Register(name string, c Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, entry{name: name, component: c})
}

// Listen cancels Context on SIGINT or SIGTERM. Components are released
// only by Shutdown, once whoever is using them has stopped.
func (m *Manager) Listen() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info(component, "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Cancel()
		case <-m.done:
		}
		signal.Stop(sigChan)
	}()
}

// Cancel asks running work to stop without releasing anything.
func (m *Manager) Cancel() {
	m.cancel()
}

// Shutdown cancels Context and releases components in reverse order. It is
// idempotent and must run after the components' users have returned.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return
	default:
		close(m.done)
	}

	m.logger.Info(component, "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})

	m.cancel()

	for i := len(m.components) - 1; i >= 0; i-- {
		e := m.components[i]

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			e.component.Shutdown()
		}()

		select {
		case <-finished:
			m.logger.Debug(component, "component released", map[string]interface{}{
				"component": e.name,
			})
		case <-time.After(m.timeout):
			m.logger.Warning(component, "component shutdown timeout", map[string]interface{}{
				"component": e.name,
			})
		}
	}

	m.logger.Info(component, "shutdown sequence completed", nil)
}

// Context is cancelled by a signal, Cancel or Shutdown.
func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
