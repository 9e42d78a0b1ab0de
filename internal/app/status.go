package app

import (
	"fmt"

	"github.com/gajzzs/devtree/internal/config"
	"github.com/gajzzs/devtree/internal/device"
	"github.com/gajzzs/devtree/internal/logging"
	"github.com/gajzzs/devtree/internal/service"
	"github.com/gajzzs/devtree/internal/system"
	"github.com/spf13/cobra"
)

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:                   "status",
		Short:                 "Show configuration, devices, snapshots and host status",
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := config.GetConfig()

			fmt.Fprintln(out, "devtree Status")
			fmt.Fprintln(out, "==============")

			fmt.Fprintln(out, "\nConfiguration:")
			fmt.Fprintf(out, "  File: %s\n", config.ConfigFile)
			fmt.Fprintf(out, "  Backend: %s\n", cfg.Backend)
			if cfg.Backend == device.BackendADB {
				fmt.Fprintf(out, "  adb: %s (root %s)\n", cfg.AdbPath, cfg.AdbRoot)
			}
			fmt.Fprintf(out, "  Source Folders: %d\n", len(cfg.SourceFolders))
			if cfg.LastDevice != "" {
				fmt.Fprintf(out, "  Last Device: %s\n", cfg.LastDevice)
			}

			fmt.Fprintln(out, "\nDevices:")
			if b, err := loadBrowser(cmd.Context(), nil); err == nil {
				fmt.Fprintf(out, "  Connected: %d\n", len(b.Entries())-1)
				b.Close()
			} else {
				fmt.Fprintf(out, "  Unavailable: %v\n", err)
			}

			fmt.Fprintln(out, "\nSnapshots:")
			if store, err := openStore(); err == nil {
				snaps, err := store.List()
				store.Close()
				if err != nil {
					fmt.Fprintf(out, "  Unavailable: %v\n", err)
				}
				for _, s := range snaps {
					fmt.Fprintf(out, "  %s  %d nodes  %s  %.12s\n", s.DeviceID, s.Nodes, s.TakenAt.Local().Format("2006-01-02 15:04"), s.Digest)
				}
				if err == nil && len(snaps) == 0 {
					fmt.Fprintln(out, "  None recorded")
				}
			} else {
				// the service holds the store lock while it runs
				logging.Debug("snapshot store unavailable", logging.Err(err))
				fmt.Fprintln(out, "  Store in use or unavailable")
			}

			fmt.Fprintln(out, "\nService Status:")
			if sm, err := newServiceManager(); err == nil {
				if status, err := sm.Status(); err == nil {
					fmt.Fprintf(out, "  Status: %s\n", status)
				} else {
					fmt.Fprintln(out, "  Status: Not installed")
				}
				fmt.Fprintf(out, "  Config: %s\n", service.GetServiceConfigPath())
			} else {
				fmt.Fprintln(out, "  Status: Not Available")
			}

			fmt.Fprintln(out, "\nSystem Information:")
			system.NewSystemMonitor(cfg.SnapshotDir).GetSystemInfo(cmd.Context()).Print(out)
			return nil
		},
	}
}
