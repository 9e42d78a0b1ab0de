package app

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/gajzzs/devtree/internal/config"
	"github.com/gajzzs/devtree/internal/tree"
	"github.com/spf13/cobra"
)

func NewSourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage the device folders of interest",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List configured source folders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				folders := config.GetConfig().SourceFolders
				if len(folders) == 0 {
					fmt.Fprintln(out, "No source folders configured.")
					return nil
				}
				fmt.Fprintln(out, "Source Folders:")
				for _, f := range folders {
					fmt.Fprintf(out, "  - %s\n", f)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add [path]",
			Short: `Add a source folder, e.g. "This PC\XT1068\Internal storage\DCIM\Camera"`,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return config.AddSourceFolder(args[0])
			},
		},
		&cobra.Command{
			Use:   "remove [path]",
			Short: "Remove a source folder",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.RemoveSourceFolder(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed source folder '%s'\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "check [index|id]",
			Short: "Read a device and report which source folders it has",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				folders := config.GetConfig().SourceFolders
				if len(folders) == 0 {
					return fmt.Errorf("no source folders configured")
				}

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

				if missing := checkSources(cmd.OutOrStdout(), snap.Tree, folders); missing > 0 {
					return fmt.Errorf("%d of %d source folders not found on %s", missing, len(folders), snap.Device)
				}
				return nil
			},
		},
	)

	return cmd
}

func checkSources(w io.Writer, root *tree.Node, folders []string) int {
	missing := 0
	for _, f := range folders {
		node := resolveSource(root, f)
		switch {
		case node == nil:
			missing++
			fmt.Fprintf(w, "  missing  %s\n", f)
		case !node.Folder:
			missing++
			fmt.Fprintf(w, "  not a folder  %s\n", f)
		default:
			fmt.Fprintf(w, "  ok  %s (%d entries)\n", f, len(node.Children))
		}
	}
	return missing
}

// resolveSource finds a source folder path in a device tree. Source paths are
// written from the host's point of view ("This PC\<device>\Internal
// storage\DCIM"), so leading segments are dropped until the remainder
// resolves, either below the root or starting at the root itself.
func resolveSource(root *tree.Node, path string) *tree.Node {
	if root == nil {
		return nil
	}
	segments := tree.SplitPath(path)
	for i := range segments {
		rest := segments[i:]
		if rest[0] == root.Name() {
			if n := tree.Find(root, rest[1:]...); n != nil {
				return n
			}
		}
		if n := tree.Find(root, rest...); n != nil {
			return n
		}
	}
	return nil
}
