//go:build !linux && !darwin
// +build !linux,!darwin

package platform

import (
	"context"

	"github.com/gajzzs/devtree/internal/device"
	"github.com/shirou/gopsutil/v3/disk"
)

type noResolver struct{}

func (noResolver) UUID(string) string      { return "" }
func (noResolver) Label(string) string     { return "" }
func (noResolver) Subdirs(string) []string { return nil }

func listVolumes(ctx context.Context) ([]device.Handle, error) {
	partitions, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	handles := volumesFromPartitions(partitions, noResolver{})
	if len(handles) > 0 {
		return handles, nil
	}

	// No FUSE or /dev/sd naming here: offer every mounted volume.
	for _, p := range partitions {
		if p.Mountpoint == "" {
			continue
		}
		handles = append(handles, device.Handle{
			ID:      p.Mountpoint,
			Name:    p.Mountpoint,
			Path:    p.Mountpoint,
			Backend: device.BackendMount,
		})
	}
	return handles, nil
}
