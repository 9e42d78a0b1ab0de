package device

import (
	"context"
	"errors"
	"fmt"
)

// Backend names a device access implementation.
const (
	BackendMount = "mount"
	BackendADB   = "adb"
)

// Handle identifies a connected device. The zero Handle is the
// "no device selected" placeholder.
type Handle struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Backend string `json:"backend"`
}

// IsPlaceholder reports whether h is the "no device selected" entry.
func (h Handle) IsPlaceholder() bool {
	return h == Handle{}
}

func (h Handle) String() string {
	if h.IsPlaceholder() {
		return "(no device selected)"
	}
	if h.Name == "" {
		return h.ID
	}
	return fmt.Sprintf("%s (%s)", h.Name, h.ID)
}

// Service is the device access contract. GetFullContents returns the root
// folder with every child materialized; it is only valid between Connect and
// Disconnect.
type Service interface {
	ListDevices(ctx context.Context) ([]Handle, error)
	Connect(ctx context.Context, h Handle) error
	Disconnect(ctx context.Context, h Handle) error
	GetFullContents(ctx context.Context, h Handle) (*Folder, error)
}

// ErrNoDevice is returned when the placeholder handle is used as a device.
var ErrNoDevice = errors.New("no device selected")

// ConnectionError reports a failure to list, connect to or disconnect from a
// device.
type ConnectionError struct {
	Op     string
	Device Handle
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Device.IsPlaceholder() {
		return fmt.Sprintf("device %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("device %s %s: %v", e.Op, e.Device.ID, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ReadError reports a failure to enumerate a device's contents.
type ReadError struct {
	Device Handle
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read device %s: %v", e.Device.ID, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// List wraps svc.ListDevices so failures come back as *ConnectionError.
func List(ctx context.Context, svc Service) ([]Handle, error) {
	handles, err := svc.ListDevices(ctx)
	if err != nil {
		return nil, &ConnectionError{Op: "list", Err: err}
	}
	return handles, nil
}

// Read connects to h, reads its full contents and disconnects. Disconnect
// runs on every path once Connect has succeeded, including when the read
// fails or ctx is cancelled.
func Read(ctx context.Context, svc Service, h Handle) (root *Folder, err error) {
	if h.IsPlaceholder() {
		return nil, ErrNoDevice
	}
	if err := svc.Connect(ctx, h); err != nil {
		return nil, &ConnectionError{Op: "connect", Device: h, Err: err}
	}
	defer func() {
		// ctx may already be cancelled; release must still happen.
		if derr := svc.Disconnect(context.WithoutCancel(ctx), h); derr != nil {
			err = errors.Join(err, &ConnectionError{Op: "disconnect", Device: h, Err: derr})
			root = nil
		}
	}()

	root, err = svc.GetFullContents(ctx, h)
	if err != nil {
		return nil, &ReadError{Device: h, Err: err}
	}
	if root == nil {
		return nil, &ReadError{Device: h, Err: errors.New("device returned no root folder")}
	}
	return root, nil
}
