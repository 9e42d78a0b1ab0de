package system

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Info is a point-in-time view of the host devtree runs on. Fields the
// platform cannot report are left zero.
type Info struct {
	Hostname      string
	OS            string
	Platform      string
	Uptime        time.Duration
	CPUPercent    float64
	MemoryTotal   uint64
	MemoryPercent float64
	// Disk usage of the volume holding the snapshot store.
	DiskPath    string
	DiskPercent float64
	DiskFree    uint64
}

type SystemMonitor struct {
	diskPath string
	sample   time.Duration
}

// NewSystemMonitor reports disk usage for diskPath ("/" when empty).
func NewSystemMonitor(diskPath string) *SystemMonitor {
	if diskPath == "" {
		diskPath = "/"
	}
	return &SystemMonitor{diskPath: diskPath, sample: 200 * time.Millisecond}
}

// GetSystemInfo collects host, cpu, memory and disk figures. Individual
// probes that fail are skipped.
func (sm *SystemMonitor) GetSystemInfo(ctx context.Context) *Info {
	info := &Info{DiskPath: sm.diskPath}

	if hostInfo, err := host.InfoWithContext(ctx); err == nil {
		info.Hostname = hostInfo.Hostname
		info.OS = hostInfo.OS
		info.Platform = hostInfo.Platform
		info.Uptime = time.Duration(hostInfo.Uptime) * time.Second
	}

	if memInfo, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.MemoryTotal = memInfo.Total
		info.MemoryPercent = memInfo.UsedPercent
	}

	if cpuPercent, err := cpu.PercentWithContext(ctx, sm.sample, false); err == nil && len(cpuPercent) > 0 {
		info.CPUPercent = cpuPercent[0]
	}

	if diskInfo, err := disk.UsageWithContext(ctx, sm.diskPath); err == nil {
		info.DiskPercent = diskInfo.UsedPercent
		info.DiskFree = diskInfo.Free
	}

	return info
}

// Print writes info in the indented form used by the status command.
func (info *Info) Print(w io.Writer) {
	if info.Hostname != "" {
		fmt.Fprintf(w, "  Hostname: %s\n", info.Hostname)
	}
	if info.OS != "" {
		if info.Platform != "" {
			fmt.Fprintf(w, "  OS: %s (%s)\n", info.OS, info.Platform)
		} else {
			fmt.Fprintf(w, "  OS: %s\n", info.OS)
		}
	}
	if info.Uptime > 0 {
		fmt.Fprintf(w, "  Uptime: %s\n", info.Uptime)
	}
	fmt.Fprintf(w, "  CPU Usage: %.2f%%\n", info.CPUPercent)
	fmt.Fprintf(w, "  Memory Usage: %.2f%% of %s\n", info.MemoryPercent, formatBytes(info.MemoryTotal))
	fmt.Fprintf(w, "  Disk Usage (%s): %.2f%%, %s free\n", info.DiskPath, info.DiskPercent, formatBytes(info.DiskFree))
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
