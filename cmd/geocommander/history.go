package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Epawse/geocommander/internal/config"
	"github.com/Epawse/geocommander/internal/store"
)

var historyLimit int

// historyCmd prints recent entries from the action log
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently executed actions",
	RunE:  showHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
}

func showHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cfg.Store.Enabled {
		fmt.Println("Action log is disabled in config.")
		return nil
	}

	actionLog, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer actionLog.Close()

	entries, err := actionLog.Recent(historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No actions recorded yet.")
		return nil
	}

	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "error: " + e.Error
		}
		fmt.Printf("%s  %-22s %4dms  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Action, e.LatencyMs, status)
	}
	return nil
}
