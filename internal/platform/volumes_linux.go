//go:build linux
// +build linux

package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gajzzs/devtree/internal/device"
	"github.com/shirou/gopsutil/v3/disk"
)

type linuxResolver struct{}

func listVolumes(ctx context.Context) ([]device.Handle, error) {
	// all=true so FUSE mounts are included
	partitions, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	return volumesFromPartitions(partitions, linuxResolver{}), nil
}

func (linuxResolver) UUID(devPath string) string {
	return linkNameFor("/dev/disk/by-uuid", devPath)
}

func (linuxResolver) Label(devPath string) string {
	if label := linkNameFor("/dev/disk/by-label", devPath); label != "" {
		return label
	}

	// Fallback: device model from sysfs
	baseName := strings.TrimPrefix(devPath, "/dev/")
	baseName = strings.TrimRight(baseName, "0123456789")
	modelPath := fmt.Sprintf("/sys/block/%s/device/model", baseName)
	if data, err := os.ReadFile(modelPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func (linuxResolver) Subdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

// linkNameFor returns the name of the symlink in dir that points at devPath.
func linkNameFor(dir, devPath string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	for _, entry := range entries {
		linkPath := filepath.Join(dir, entry.Name())
		target, err := os.Readlink(linkPath)
		if err != nil {
			continue
		}

		// Resolve relative path
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(linkPath), target)
		}
		target = filepath.Clean(target)

		if target == devPath {
			return entry.Name()
		}
	}
	return ""
}
