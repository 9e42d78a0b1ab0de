package platform

import (
	"path/filepath"
	"strings"

	"github.com/gajzzs/devtree/internal/device"
	"github.com/shirou/gopsutil/v3/disk"
)

// FUSE filesystems that expose an MTP device as a directory tree.
var mtpFSTypes = map[string]bool{
	"fuse.jmtpfs":         true,
	"fuse.simple-mtpfs":   true,
	"fuse.go-mtpfs":       true,
	"fuse.mtpfs":          true,
	"fuse.aft-mtp-mount":  true,
	"fuse.android-file-t": true,
}

const gvfsFSType = "fuse.gvfsd-fuse"

// Mount roots where desktop environments put removable volumes.
var removableRoots = []string{"/media/", "/run/media/", "/mnt/"}

type volumeResolver interface {
	UUID(devPath string) string
	Label(devPath string) string
	Subdirs(dir string) []string
}

// volumesFromPartitions picks the partitions that look like portable
// devices and turns them into handles, in partition order.
func volumesFromPartitions(parts []disk.PartitionStat, r volumeResolver) []device.Handle {
	var handles []device.Handle
	seen := make(map[string]bool)
	add := func(h device.Handle) {
		if seen[h.ID] {
			return
		}
		seen[h.ID] = true
		handles = append(handles, h)
	}

	for _, p := range parts {
		switch {
		case mtpFSTypes[p.Fstype]:
			add(device.Handle{
				ID:      "mtp:" + p.Mountpoint,
				Name:    filepath.Base(p.Mountpoint),
				Path:    p.Mountpoint,
				Backend: device.BackendMount,
			})

		case p.Fstype == gvfsFSType:
			// gvfs mounts every MTP device as a subdirectory named mtp:host=...
			for _, sub := range r.Subdirs(p.Mountpoint) {
				if !strings.HasPrefix(sub, "mtp:") {
					continue
				}
				add(device.Handle{
					ID:      sub,
					Name:    strings.TrimPrefix(sub, "mtp:host="),
					Path:    filepath.Join(p.Mountpoint, sub),
					Backend: device.BackendMount,
				})
			}

		case strings.HasPrefix(p.Device, "/dev/sd") && isRemovableMount(p.Mountpoint):
			id := r.UUID(p.Device)
			if id == "" {
				id = "NO-UUID-" + filepath.Base(p.Device)
			}
			name := r.Label(p.Device)
			if name == "" {
				name = filepath.Base(p.Mountpoint)
			}
			add(device.Handle{
				ID:      id,
				Name:    name,
				Path:    p.Mountpoint,
				Backend: device.BackendMount,
			})
		}
	}
	return handles
}

func isRemovableMount(mountpoint string) bool {
	for _, root := range removableRoots {
		if strings.HasPrefix(mountpoint, root) {
			return true
		}
	}
	return false
}
