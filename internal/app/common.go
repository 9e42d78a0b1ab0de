package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gajzzs/devtree/internal/browser"
	"github.com/gajzzs/devtree/internal/config"
	"github.com/gajzzs/devtree/internal/device"
	"github.com/gajzzs/devtree/internal/logging"
	"github.com/gajzzs/devtree/internal/platform"
	"github.com/gajzzs/devtree/internal/snapshot"
)

// newDeviceService builds the backend named in the configuration. Tests
// replace it with a fake.
var newDeviceService = func() (device.Service, error) {
	cfg := config.GetConfig()
	return platform.NewDeviceService(platform.Options{
		Backend: cfg.Backend,
		AdbPath: cfg.AdbPath,
		AdbRoot: cfg.AdbRoot,
		Timeout: cfg.TimeoutList.Std(),
	})
}

func openStore() (*snapshot.Store, error) {
	return snapshot.Open(config.GetConfig().SnapshotDir)
}

// loadBrowser creates a browser over the configured backend and loads the
// device list.
func loadBrowser(ctx context.Context, obs browser.Observer) (*browser.Browser, error) {
	svc, err := newDeviceService()
	if err != nil {
		return nil, err
	}
	b := browser.New(svc, obs)
	if err := b.Refresh(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// pickEntry resolves a command line device argument against entries, which
// start with the placeholder. The argument is an index as printed by
// "devices list" or a device ID. With no argument the last used device is
// preferred, then the only connected device.
func pickEntry(entries []device.Handle, arg, last string) (int, error) {
	if arg == "" {
		if last != "" {
			for i, h := range entries {
				if i > 0 && h.ID == last {
					return i, nil
				}
			}
		}
		switch len(entries) {
		case 1:
			return 0, fmt.Errorf("no devices connected")
		case 2:
			return 1, nil
		default:
			return 0, fmt.Errorf("%d devices connected, pass an index or id (see 'devtree devices list')", len(entries)-1)
		}
	}

	if i, err := strconv.Atoi(arg); err == nil {
		if i < 0 || i >= len(entries) {
			return 0, fmt.Errorf("device index %d out of range [0,%d]", i, len(entries)-1)
		}
		return i, nil
	}
	for i, h := range entries {
		if i > 0 && h.ID == arg {
			return i, nil
		}
	}
	return 0, fmt.Errorf("device %s not found", arg)
}

// loadTree selects the device named by arg and waits for its tree.
func loadTree(ctx context.Context, arg string) (browser.Snapshot, error) {
	b, err := loadBrowser(ctx, nil)
	if err != nil {
		return browser.Snapshot{}, err
	}
	defer b.Close()

	index, err := pickEntry(b.Entries(), arg, config.GetConfig().LastDevice)
	if err != nil {
		return browser.Snapshot{}, err
	}
	if index == 0 {
		return browser.Snapshot{}, device.ErrNoDevice
	}
	if err := b.Select(ctx, index); err != nil {
		return browser.Snapshot{}, err
	}
	b.Wait()

	snap := b.Snapshot()
	if snap.State != browser.StateReady {
		if snap.Err == nil {
			return snap, fmt.Errorf("traversal ended %s", snap.State)
		}
		return snap, snap.Err
	}
	rememberDevice(snap.Device)
	return snap, nil
}

func rememberDevice(h device.Handle) {
	cfg := config.GetConfig()
	if cfg.LastDevice == h.ID {
		return
	}
	cfg.LastDevice = h.ID
	if err := config.SaveConfig(); err != nil {
		logging.Warn("could not remember device", logging.String("device", h.ID), logging.Err(err))
	}
}
