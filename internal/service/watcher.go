package service

import (
	"context"
	"sort"
	"time"

	"github.com/gajzzs/devtree/internal/device"
	"github.com/gajzzs/devtree/internal/logging"
)

// Event reports a device arriving or going away.
type Event struct {
	Connected bool
	Device    device.Handle
}

// Watcher polls a device.Service for arrivals and removals.
type Watcher struct {
	svc      device.Service
	interval time.Duration
}

func NewWatcher(svc device.Service, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{svc: svc, interval: interval}
}

// Watch polls immediately and then every interval. Devices present at the
// first poll are reported as arrivals. The channel is closed when ctx is
// cancelled.
func (w *Watcher) Watch(ctx context.Context) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		known := make(map[string]device.Handle)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			if !w.poll(ctx, known, ch) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return ch
}

// poll diffs the current device list against known and sends removals
// (by ID) before arrivals (in list order). It returns false once ctx is done.
func (w *Watcher) poll(ctx context.Context, known map[string]device.Handle, ch chan<- Event) bool {
	handles, err := device.List(ctx, w.svc)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		logging.Warn("device poll failed", logging.Err(err))
		return true
	}

	current := make(map[string]bool, len(handles))
	for _, h := range handles {
		current[h.ID] = true
	}

	var gone []string
	for id := range known {
		if !current[id] {
			gone = append(gone, id)
		}
	}
	sort.Strings(gone)

	send := func(ev Event) bool {
		select {
		case ch <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, id := range gone {
		h := known[id]
		delete(known, id)
		if !send(Event{Connected: false, Device: h}) {
			return false
		}
	}
	for _, h := range handles {
		if _, ok := known[h.ID]; ok {
			continue
		}
		known[h.ID] = h
		if !send(Event{Connected: true, Device: h}) {
			return false
		}
	}
	return true
}
