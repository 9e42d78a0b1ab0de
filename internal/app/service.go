package app

import (
	"fmt"

	"github.com/gajzzs/devtree/internal/config"
	"github.com/gajzzs/devtree/internal/service"
	"github.com/spf13/cobra"
)

// daemonFactory opens the configured backend and snapshot store for the
// background service.
func daemonFactory() (*service.Daemon, func() error, error) {
	svc, err := newDeviceService()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	d := service.NewDaemon(svc, store, config.GetConfig().WatchInterval.Std())
	return d, store.Close, nil
}

func newServiceManager() (*service.ServiceManager, error) {
	return service.NewServiceManager(daemonFactory, config.ConfigFile)
}

func NewServiceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the devtree background watcher",
	}

	action := func(use, short, done string, run func(*service.ServiceManager) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				sm, err := newServiceManager()
				if err != nil {
					return err
				}
				if err := run(sm); err != nil {
					return fmt.Errorf("service %s: %w", use, err)
				}
				if done != "" {
					fmt.Fprintln(cmd.OutOrStdout(), done)
				}
				return nil
			},
		}
	}

	cmd.AddCommand(
		action("install", "Install the watcher as a user service", "Service installed", (*service.ServiceManager).Install),
		action("uninstall", "Remove the installed service", "Service uninstalled", (*service.ServiceManager).Uninstall),
		action("start", "Start the installed service", "Service started", (*service.ServiceManager).Start),
		action("stop", "Stop the running service", "Service stopped", (*service.ServiceManager).Stop),
		action("run", "Run the watcher in the foreground", "", (*service.ServiceManager).Run),
		&cobra.Command{
			Use:   "status",
			Short: "Show service status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				sm, err := newServiceManager()
				if err != nil {
					return err
				}
				status, err := sm.Status()
				if err != nil {
					status = "Not installed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Service status: %s\n", status)
				fmt.Fprintf(cmd.OutOrStdout(), "Service config: %s\n", service.GetServiceConfigPath())
				return nil
			},
		},
	)

	return cmd
}
