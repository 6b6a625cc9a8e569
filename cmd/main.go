// FilePath: cmd/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	tm "github.com/buger/goterm"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/config"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/server"
	"github.com/spf13/cobra"
	nuts "github.com/vaudience/go-nuts"
)

var configDir string

func main() {
	nuts.InitVersion()

	root := &cobra.Command{
		Use:           "coldrelay",
		Short:         "Cold-chain sensor relay",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVar(&configDir, "config", "./config", "directory containing config.yaml")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP facade, the sensor poller and the refresher",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "poll",
			Short: "Run a single poll cycle against the configured sensor",
			RunE:  runPoll,
		},
		&cobra.Command{
			Use:   "readings",
			Short: "Print every stored reading as JSON",
			RunE:  runReadings,
		},
	)

	if err := root.Execute(); err != nil {
		nuts.L.Errorf("[Main] %v", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	nuts.L.Infof("[Main] Starting coldrelay v%s", nuts.GetVersion())

	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runPoll(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Sensor.Timeout+10*time.Second)
	defer cancel()

	hub, cleanup, err := server.BuildHub(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := hub.Poller.PollOnce(ctx); err != nil {
		return fmt.Errorf("poll failed: %w", err)
	}
	nuts.L.Infof("[Main] Poll cycle stored one reading")
	return nil
}

func runReadings(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	hub, cleanup, err := server.BuildHub(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	readings, err := hub.Readings.ListReadingsStrict(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(readings)
}

// ClearConsole clears the console screen
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"            __    __                __           ",
		"  _________/ /___/ /_______  / /___ ___  __     ",
		" / ___/ __ \\/ / __  / ___/ _ \\/ / __ `/ / / /   ",
		"/ /__/ /_/ / / /_/ / /  /  __/ / /_/ / /_/ /    ",
		"\\___/\\____/_/\\__,_/_/   \\___/_/\\__,_/\\__, /     ",
		"                                    /____/      ",
		"..........................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
