package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gajzzs/devtree/internal/device"
	"github.com/gajzzs/devtree/internal/logging"
	"github.com/gajzzs/devtree/internal/snapshot"
	"github.com/gajzzs/devtree/internal/tree"
)

// Report is the outcome of inspecting one device.
type Report struct {
	Device   device.Handle
	Tree     *tree.Node
	Current  *snapshot.Snapshot
	Previous *snapshot.Snapshot
	Changed  bool
}

// Inspect reads the device tree, records its digest in store and reports
// whether it changed since the last recorded snapshot.
func Inspect(ctx context.Context, svc device.Service, store *snapshot.Store, h device.Handle) (*Report, error) {
	root, err := device.Read(ctx, svc, h)
	if err != nil {
		return nil, err
	}
	node := tree.Build(root)

	current := &snapshot.Snapshot{
		DeviceID:   h.ID,
		DeviceName: h.Name,
		Digest:     tree.Digest(node),
		Nodes:      tree.Count(node),
		TakenAt:    time.Now().UTC(),
	}
	changed, previous, err := store.Record(current)
	if err != nil {
		return nil, fmt.Errorf("record snapshot for %s: %w", h.ID, err)
	}

	return &Report{
		Device:   h,
		Tree:     node,
		Current:  current,
		Previous: previous,
		Changed:  changed,
	}, nil
}

// Daemon watches for devices and snapshots each one as it arrives.
type Daemon struct {
	svc      device.Service
	store    *snapshot.Store
	interval time.Duration

	// OnReport, if set, is called after each successful inspection.
	OnReport func(*Report)

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewDaemon(svc device.Service, store *snapshot.Store, interval time.Duration) *Daemon {
	return &Daemon{
		svc:      svc,
		store:    store,
		interval: interval,
	}
}

func (d *Daemon) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return fmt.Errorf("daemon already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running = true

	logging.Info("devtree daemon starting", logging.Duration("interval", d.interval))
	go d.run(ctx, d.done)
	return nil
}

func (d *Daemon) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon not running")
	}
	d.running = false
	d.cancel()
	done := d.done
	d.mu.Unlock()

	<-done
	logging.Info("devtree daemon stopped")
	return nil
}

func (d *Daemon) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for ev := range NewWatcher(d.svc, d.interval).Watch(ctx) {
		if !ev.Connected {
			logging.Info("device disconnected", logging.String("device", ev.Device.ID))
			continue
		}
		logging.Info("device connected",
			logging.String("device", ev.Device.ID),
			logging.String("name", ev.Device.Name))

		report, err := Inspect(ctx, d.svc, d.store, ev.Device)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Error("device inspection failed", logging.String("device", ev.Device.ID), logging.Err(err))
			continue
		}

		if report.Changed {
			logging.Info("tree changed",
				logging.String("device", ev.Device.ID),
				logging.Int("nodes", report.Current.Nodes),
				logging.String("digest", report.Current.Digest))
		} else {
			logging.Info("tree unchanged", logging.String("device", ev.Device.ID))
		}
		if d.OnReport != nil {
			d.OnReport(report)
		}
	}
}
