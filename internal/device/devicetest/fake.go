// Package devicetest provides an in-memory device.Service for tests.
package devicetest

import (
	"context"
	"sync"

	"github.com/gajzzs/devtree/internal/device"
)

// Fake serves fixed trees keyed by handle ID.
type Fake struct {
	Devices []device.Handle
	Trees   map[string]*device.Folder

	ListErr       error
	ConnectErr    error
	DisconnectErr error
	ReadErr       error

	// Gate, when set, blocks GetFullContents until it is closed or ctx ends.
	Gate chan struct{}

	mu        sync.Mutex
	calls     []string
	connected map[string]bool
	active    int
	maxActive int
}

// New returns a Fake serving the given trees, one handle per entry in order.
func New(handles ...device.Handle) *Fake {
	return &Fake{
		Devices: handles,
		Trees:   make(map[string]*device.Folder),
	}
}

// SetDevices replaces the device list while the Fake is in use.
func (f *Fake) SetDevices(handles ...device.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Devices = handles
}

func (f *Fake) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

// Calls returns the operations made so far, e.g. "connect:a".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Connected reports whether a session to id is still open.
func (f *Fake) Connected(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected[id]
}

// MaxActive is the largest number of sessions that were open at once.
func (f *Fake) MaxActive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxActive
}

func (f *Fake) ListDevices(ctx context.Context) ([]device.Handle, error) {
	f.record("list")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]device.Handle(nil), f.Devices...), nil
}

func (f *Fake) Connect(ctx context.Context, h device.Handle) error {
	f.record("connect:" + h.ID)
	if f.ConnectErr != nil {
		return f.ConnectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connected == nil {
		f.connected = make(map[string]bool)
	}
	f.connected[h.ID] = true
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	return nil
}

func (f *Fake) Disconnect(ctx context.Context, h device.Handle) error {
	f.record("disconnect:" + h.ID)
	f.mu.Lock()
	if f.connected[h.ID] {
		f.connected[h.ID] = false
		f.active--
	}
	f.mu.Unlock()
	return f.DisconnectErr
}

func (f *Fake) GetFullContents(ctx context.Context, h device.Handle) (*device.Folder, error) {
	f.record("read:" + h.ID)
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	return f.Trees[h.ID], nil
}
