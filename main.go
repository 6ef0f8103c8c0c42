package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"devserve/app"
	"devserve/config"
	"devserve/log"
	"devserve/web"
)

var (
	version = "1.0.0"

	hostFlag          string
	portFlag          int
	indexFlag         string
	watchFlag         bool
	watchIntervalFlag int
	copyFlag          bool
	configFlag        string
	logFileFlag       string
	verboseFlag       bool
	saveFlag          string

	rootCmd = &cobra.Command{
		Use:          "devserve [dir]",
		Short:        "devserve - serve a directory over HTTP for local development",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}

			log.Initialize(cfg.LogFile, cfg.Verbose)
			defer log.Close()

			return app.Run(cmd.Context(), cfg)
		},
	}

	portCmd = &cobra.Command{
		Use:   "port",
		Short: "Print a free TCP port",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := web.AllocateFreePort()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), port)
			return nil
		},
	}

	configCmd = &cobra.Command{
		Use:   "config [dir]",
		Short: "Print the effective configuration, or save it with --save",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			if saveFlag != "" {
				if err := config.SaveConfig(cfg, saveFlag); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote config to %s\n", saveFlag)
				return nil
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of devserve",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "devserve version %s\n", version)
		},
	}
)

// loadConfig reads the config file, then applies the flags the user set
// explicitly and the optional directory argument.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = hostFlag
	}
	if flags.Changed("port") {
		cfg.Port = portFlag
	}
	if flags.Changed("index") {
		cfg.Index = indexFlag
	}
	if flags.Changed("watch") {
		cfg.Watch = watchFlag
	}
	if flags.Changed("watch-interval") {
		cfg.WatchIntervalMs = watchIntervalFlag
	}
	if flags.Changed("copy") {
		cfg.CopyURL = copyFlag
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFileFlag
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verboseFlag
	}
	if len(args) == 1 {
		cfg.Root = args[0]
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}

// addServeFlags registers the flags that map onto config.Config fields.
func addServeFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig()

	f := cmd.Flags()
	f.StringVar(&hostFlag, "host", defaults.Host, "Interface to bind (empty for all interfaces)")
	f.IntVarP(&portFlag, "port", "p", defaults.Port, "Port to listen on (0 picks a free port)")
	f.StringVar(&indexFlag, "index", defaults.Index, "Document served for /")
	f.BoolVar(&watchFlag, "watch", defaults.Watch, "Enable live reload at /__devserve/reload.js")
	f.IntVar(&watchIntervalFlag, "watch-interval", defaults.WatchIntervalMs, "Milliseconds between scans for changes")
	f.BoolVar(&copyFlag, "copy", defaults.CopyURL, "Copy the server URL to the clipboard")
	f.StringVar(&configFlag, "config", "", "Path to a JSON config file")
	f.StringVar(&logFileFlag, "log-file", defaults.LogFile, "Log file (defaults to devserve.log in the temp dir)")
	f.BoolVarP(&verboseFlag, "verbose", "v", defaults.Verbose, "Log requests to stdout")
}

func init() {
	addServeFlags(rootCmd)
	addServeFlags(configCmd)
	configCmd.Flags().StringVar(&saveFlag, "save", "", "Write the effective config to this path")

	rootCmd.AddCommand(portCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
