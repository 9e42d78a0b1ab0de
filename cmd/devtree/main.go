// Author @gajzzs
package main

import (
	"fmt"
	"os"

	"github.com/gajzzs/devtree/internal/app"
	"github.com/gajzzs/devtree/internal/config"
	"github.com/gajzzs/devtree/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "devtree",
	Short: "Browse the folder tree of connected phones and portable devices",
	Long: "devtree lists portable devices (MTP volumes, USB storage or adb devices),\n" +
		"reads the full folder tree of the one you pick and prints it.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			config.SetConfigFile(configFile)
		}
		if err := config.InitConfig(); err != nil {
			return err
		}
		cfg := config.GetConfig()
		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		return logging.Init(logging.Config{Level: level, Format: cfg.LogFormat})
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default "+config.ConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.AddCommand(
		app.NewDevicesCommand(),
		app.NewTreeCommand(),
		app.NewBrowseCommand(),
		app.NewSourcesCommand(),
		app.NewServiceCommand(),
		app.NewStatusCommand(),
	)
}

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
