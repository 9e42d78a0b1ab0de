//go:build darwin
// +build darwin

package platform

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/gajzzs/devtree/internal/device"
	"howett.net/plist"
)

type diskutilPartition struct {
	DeviceIdentifier string `plist:"DeviceIdentifier"`
	VolumeName       string `plist:"VolumeName"`
	VolumeUUID       string `plist:"VolumeUUID"`
	MountPoint       string `plist:"MountPoint"`
}

type diskutilOutput struct {
	AllDisksAndPartitions []struct {
		Partitions []diskutilPartition `plist:"Partitions"`
	} `plist:"AllDisksAndPartitions"`
}

func listVolumes(ctx context.Context) ([]device.Handle, error) {
	cmd := exec.CommandContext(ctx, "diskutil", "list", "-plist", "external")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("diskutil list: %w", err)
	}
	return parseDiskutil(output)
}

func parseDiskutil(output []byte) ([]device.Handle, error) {
	var out diskutilOutput
	if _, err := plist.Unmarshal(output, &out); err != nil {
		return nil, fmt.Errorf("decode diskutil plist: %w", err)
	}

	var handles []device.Handle
	for _, disk := range out.AllDisksAndPartitions {
		for _, partition := range disk.Partitions {
			if partition.MountPoint == "" {
				continue
			}
			// prefer VolumeUUID, fall back to DeviceIdentifier like on Linux
			id := partition.VolumeUUID
			if id == "" {
				id = "NO-UUID-" + partition.DeviceIdentifier
			}
			name := partition.VolumeName
			if name == "" {
				name = partition.DeviceIdentifier
			}
			handles = append(handles, device.Handle{
				ID:      id,
				Name:    name,
				Path:    partition.MountPoint,
				Backend: device.BackendMount,
			})
		}
	}
	return handles, nil
}
