package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/gajzzs/devtree/internal/browser"
	"github.com/gajzzs/devtree/internal/tree"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const (
	refreshItem = "(refresh device list)"
	upItem      = ".."
)

func NewBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Pick a device interactively and explore its folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			errOut := cmd.ErrOrStderr()
			b, err := loadBrowser(cmd.Context(), stateReporter(errOut))
			if err != nil {
				return err
			}
			defer b.Close()

			for {
				entries := b.Entries()
				items := make([]string, 0, len(entries)+1)
				for _, h := range entries {
					items = append(items, h.String())
				}
				items = append(items, refreshItem)

				prompt := promptui.Select{
					Label: "Device",
					Items: items,
					Size:  10,
				}
				index, _, err := prompt.Run()
				if err != nil {
					return promptDone(err)
				}

				if index == len(entries) {
					if err := b.Refresh(cmd.Context()); err != nil {
						fmt.Fprintf(errOut, "refresh failed: %v\n", err)
					}
					continue
				}

				if err := b.Select(cmd.Context(), index); err != nil {
					return err
				}
				b.Wait()

				snap := b.Snapshot()
				if snap.State != browser.StateReady {
					continue
				}
				rememberDevice(snap.Device)
				if err := explore(cmd.OutOrStdout(), snap.Tree); err != nil {
					return promptDone(err)
				}
			}
		},
	}
}

// explore lets the user walk down the folders of root. Choosing ".." at the
// top returns to the device list.
func explore(w io.Writer, root *tree.Node) error {
	path := []*tree.Node{root}
	for len(path) > 0 {
		current := path[len(path)-1]

		items := []string{upItem}
		for _, child := range current.Children {
			items = append(items, child.Label)
		}
		prompt := promptui.Select{
			Label: labelPath(path),
			Items: items,
			Size:  15,
		}
		index, _, err := prompt.Run()
		if err != nil {
			return err
		}

		if index == 0 {
			path = path[:len(path)-1]
			continue
		}
		child := current.Children[index-1]
		if child.Folder {
			path = append(path, child)
			continue
		}
		fmt.Fprintf(w, "%s\\%s\n", labelPath(path), child.Label)
	}
	return nil
}

func labelPath(path []*tree.Node) string {
	var s string
	for _, n := range path {
		s += n.Label
	}
	return s
}

func stateReporter(w io.Writer) browser.Observer {
	return browser.ObserverFunc(func(s browser.Snapshot) {
		switch s.State {
		case browser.StateLoading:
			fmt.Fprintf(w, "Reading %s...\n", s.Device)
		case browser.StateReady:
			fmt.Fprintf(w, "%s: %d entries\n", s.Device, tree.Count(s.Tree)-1)
		case browser.StateFailed:
			fmt.Fprintf(w, "Error: %v\n", s.Err)
		case browser.StateIdle:
			fmt.Fprintln(w, "No device selected.")
		}
	})
}

// promptDone treats Ctrl-C and Ctrl-D at a prompt as a normal exit.
func promptDone(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return nil
	}
	return err
}
