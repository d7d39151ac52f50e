package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardi-game/cardi-client/internal/config"
	"github.com/cardi-game/cardi-client/internal/log"
)

var (
	flagConfigPath string
	flagServerURL  string
	flagLogLevel   string
)

func main() {
	root := &cobra.Command{
		Use:   "cardi",
		Short: "Terminal client for the Cardi multiplayer card game",
		Long: "cardi connects to a Cardi game server over its realtime broker,\n" +
			"keeps a synchronized view of one game room, and relays your plays.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&flagServerURL, "server", "", "broker websocket URL (overrides config)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newPlayCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves config with CLI flags taking highest precedence.
func loadConfig() (config.Config, error) {
	bootLog := log.New("info")
	cfg, path, err := config.Load(bootLog, flagConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if flagServerURL != "" {
		cfg.ServerURL = flagServerURL
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, nil
}
