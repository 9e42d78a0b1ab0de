package platform

import (
	"errors"
	"fmt"
	"time"

	"github.com/gajzzs/devtree/internal/device"
)

var errNotConnected = errors.New("not connected")

// Options selects and configures a device backend.
type Options struct {
	Backend string
	AdbPath string
	AdbRoot string
	Timeout time.Duration
}

// NewDeviceService creates the device.Service for opts.Backend.
func NewDeviceService(opts Options) (device.Service, error) {
	switch opts.Backend {
	case device.BackendMount, "":
		return NewMountService(), nil
	case device.BackendADB:
		return NewADBService(opts.AdbPath, opts.AdbRoot, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown device backend %q", opts.Backend)
	}
}
