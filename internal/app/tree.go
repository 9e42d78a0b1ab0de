package app

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gajzzs/devtree/internal/snapshot"
	"github.com/gajzzs/devtree/internal/tree"
	"github.com/spf13/cobra"
)

func NewTreeCommand() *cobra.Command {
	var (
		asJSON     bool
		showDigest bool
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "tree [index|id]",
		Short: "Read a device and print its folder tree",
		Long: "Connects to the device, walks every folder and prints the tree.\n" +
			"Folders are shown with a leading backslash. Without an argument the\n" +
			"last used device, or the only connected one, is read.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			snap, err := loadTree(ctx, arg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := tree.WriteJSON(out, snap.Tree); err != nil {
					return err
				}
			} else if err := tree.Render(out, snap.Tree); err != nil {
				return err
			}

			digest := tree.Digest(snap.Tree)
			if showDigest {
				fmt.Fprintf(cmd.ErrOrStderr(), "digest: %s (%d nodes)\n", digest, tree.Count(snap.Tree))
			}

			if save {
				store, err := openStore()
				if err != nil {
					return err
				}
				defer store.Close()

				changed, previous, err := store.Record(&snapshot.Snapshot{
					DeviceID:   snap.Device.ID,
					DeviceName: snap.Device.Name,
					Digest:     digest,
					Nodes:      tree.Count(snap.Tree),
					TakenAt:    time.Now().UTC(),
				})
				if err != nil {
					return err
				}
				switch {
				case previous == nil:
					fmt.Fprintln(cmd.ErrOrStderr(), "snapshot saved")
				case changed:
					fmt.Fprintf(cmd.ErrOrStderr(), "tree changed since %s\n", previous.TakenAt.Local().Format(time.RFC3339))
				default:
					fmt.Fprintf(cmd.ErrOrStderr(), "tree unchanged since %s\n", previous.TakenAt.Local().Format(time.RFC3339))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")
	cmd.Flags().BoolVar(&showDigest, "digest", false, "print the tree digest to stderr")
	cmd.Flags().BoolVar(&save, "save", false, "record the tree digest in the snapshot store")
	return cmd
}
