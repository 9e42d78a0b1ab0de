package system

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{8 << 30, "8.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInfoPrint(t *testing.T) {
	info := &Info{
		Hostname:      "backup-box",
		OS:            "linux",
		Platform:      "debian",
		Uptime:        90 * time.Minute,
		CPUPercent:    12.5,
		MemoryTotal:   4 << 30,
		MemoryPercent: 50,
		DiskPath:      "/home",
		DiskPercent:   75,
		DiskFree:      2 << 30,
	}

	var buf bytes.Buffer
	info.Print(&buf)

	for _, want := range []string{
		"  Hostname: backup-box\n",
		"  OS: linux (debian)\n",
		"  Uptime: 1h30m0s\n",
		"  CPU Usage: 12.50%\n",
		"  Memory Usage: 50.00% of 4.0 GiB\n",
		"  Disk Usage (/home): 75.00%, 2.0 GiB free\n",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestInfoPrintSkipsUnknownHost(t *testing.T) {
	var buf bytes.Buffer
	(&Info{DiskPath: "/"}).Print(&buf)
	if strings.Contains(buf.String(), "Hostname") || strings.Contains(buf.String(), "OS:") {
		t.Errorf("unexpected host lines:\n%s", buf.String())
	}
}
