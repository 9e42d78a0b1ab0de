package app

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/gajzzs/devtree/internal/config"
	"github.com/gajzzs/devtree/internal/device"
	"github.com/gajzzs/devtree/internal/service"
	"github.com/spf13/cobra"
)

func NewDevicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List and watch portable devices",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List connected devices",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := loadBrowser(cmd.Context(), nil)
				if err != nil {
					return err
				}
				defer b.Close()

				printEntries(cmd.OutOrStdout(), b.Entries(), config.GetConfig().LastDevice)
				return nil
			},
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Print devices as they are connected and removed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := newDeviceService()
				if err != nil {
					return err
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				out := cmd.OutOrStdout()
				interval := config.GetConfig().WatchInterval
				fmt.Fprintf(out, "Watching for devices every %s (Ctrl-C to stop)\n", interval)
				for ev := range service.NewWatcher(svc, interval.Std()).Watch(ctx) {
					if ev.Connected {
						fmt.Fprintf(out, "+ %s\n", ev.Device)
					} else {
						fmt.Fprintf(out, "- %s\n", ev.Device)
					}
				}
				return nil
			},
		},
	)

	return cmd
}

func printEntries(w io.Writer, entries []device.Handle, last string) {
	fmt.Fprintln(w, "Devices:")
	for i, h := range entries {
		marker := " "
		if i > 0 && h.ID == last {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %d) %s\n", marker, i, h)
		if i > 0 && h.Path != "" {
			fmt.Fprintf(w, "     %s: %s\n", h.Backend, h.Path)
		}
	}
	if len(entries) == 1 {
		fmt.Fprintln(w, "\nNo devices connected.")
	}
}
