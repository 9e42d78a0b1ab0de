// Package browser holds device selection state for an interactive front end.
// It keeps the device list, runs one tree traversal at a time in the
// background and reports every state change to an Observer.
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/gajzzs/devtree/internal/device"
	"github.com/gajzzs/devtree/internal/logging"
	"github.com/gajzzs/devtree/internal/tree"
)

// State of the current selection.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is an immutable view of the browser state.
type Snapshot struct {
	State  State
	Device device.Handle
	Tree   *tree.Node
	Err    error
}

// Observer receives state changes in the order they happen. It must not call
// Select or Refresh synchronously.
type Observer interface {
	StateChanged(Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) StateChanged(s Snapshot) { f(s) }

type Browser struct {
	svc      device.Service
	observer Observer

	mu      sync.Mutex
	entries []device.Handle
	snap    Snapshot
	gen     uint64
	cancel  context.CancelFunc
	done    chan struct{}

	notifyMu sync.Mutex
	wg       sync.WaitGroup
	// session serializes device access across traversals.
	session sync.Mutex
}

// New creates a browser with only the placeholder entry. Call Refresh to
// load devices.
func New(svc device.Service, observer Observer) *Browser {
	if observer == nil {
		observer = ObserverFunc(func(Snapshot) {})
	}
	return &Browser{
		svc:      svc,
		observer: observer,
		entries:  []device.Handle{{}},
	}
}

// Entries returns the selectable devices; index 0 is always the
// "no device selected" placeholder.
func (b *Browser) Entries() []device.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]device.Handle(nil), b.entries...)
}

// Snapshot returns the current state.
func (b *Browser) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap
}

// Refresh reloads the device list. A listing failure cancels any traversal
// and moves the browser to StateFailed.
func (b *Browser) Refresh(ctx context.Context) error {
	handles, err := device.List(ctx, b.svc)
	if err != nil {
		gen := b.restart()
		b.transition(gen, Snapshot{State: StateFailed, Err: err})
		return err
	}

	b.mu.Lock()
	b.entries = append([]device.Handle{{}}, handles...)
	current := b.snap.Device
	b.mu.Unlock()

	logging.Debug("device list refreshed", logging.Int("devices", len(handles)))

	if !current.IsPlaceholder() && !contains(handles, current) {
		logging.Info("selected device disappeared", logging.String("device", current.ID))
		gen := b.restart()
		b.transition(gen, Snapshot{State: StateIdle})
	}
	return nil
}

// Select picks the entry at index. Choosing the placeholder cancels any
// traversal in flight and returns to StateIdle; choosing a device starts a
// new background traversal, replacing the previous one.
func (b *Browser) Select(ctx context.Context, index int) error {
	b.mu.Lock()
	if index < 0 || index >= len(b.entries) {
		n := len(b.entries)
		b.mu.Unlock()
		return fmt.Errorf("selection %d out of range [0,%d)", index, n)
	}
	h := b.entries[index]
	b.mu.Unlock()

	b.SelectHandle(ctx, h)
	return nil
}

// SelectHandle is Select for a handle that may not be in Entries.
func (b *Browser) SelectHandle(ctx context.Context, h device.Handle) {
	gen := b.restart()
	if h.IsPlaceholder() {
		b.transition(gen, Snapshot{State: StateIdle})
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	b.mu.Lock()
	if b.gen != gen {
		b.mu.Unlock()
		cancel()
		return
	}
	b.cancel = cancel
	b.done = done
	b.mu.Unlock()

	b.transition(gen, Snapshot{State: StateLoading, Device: h})
	b.wg.Add(1)
	go b.load(ctx, gen, h, done)
}

// Wait blocks until the current traversal, if any, has finished.
func (b *Browser) Wait() {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close cancels any traversal in flight and waits for all of them to exit.
func (b *Browser) Close() {
	b.restart()
	b.wg.Wait()
}

func (b *Browser) load(ctx context.Context, gen uint64, h device.Handle, done chan struct{}) {
	defer b.wg.Done()
	defer close(done)

	b.session.Lock()
	root, err := device.Read(ctx, b.svc, h)
	b.session.Unlock()

	if ctx.Err() != nil {
		logging.Debug("traversal cancelled", logging.String("device", h.ID))
		b.transition(gen, Snapshot{State: StateFailed, Device: h, Err: ctx.Err()})
		return
	}
	if err != nil {
		logging.Error("device read failed", logging.String("device", h.ID), logging.Err(err))
		b.transition(gen, Snapshot{State: StateFailed, Device: h, Err: err})
		return
	}

	node := tree.Build(root)
	logging.Info("device tree loaded",
		logging.String("device", h.ID),
		logging.Int("nodes", tree.Count(node)))
	b.transition(gen, Snapshot{State: StateReady, Device: h, Tree: node})
}

// restart cancels the current traversal and starts a new generation.
func (b *Browser) restart() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.gen++
	return b.gen
}

// transition publishes snap if gen is still current.
func (b *Browser) transition(gen uint64, snap Snapshot) bool {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return false
	}
	b.snap = snap
	b.mu.Unlock()

	b.observer.StateChanged(snap)
	return true
}

func contains(handles []device.Handle, h device.Handle) bool {
	for _, x := range handles {
		if x.ID == h.ID {
			return true
		}
	}
	return false
}
