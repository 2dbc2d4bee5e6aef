package main

import (
	"github.com/spf13/cobra"

	"github.com/Epawse/geocommander/internal/config"
	"github.com/Epawse/geocommander/internal/dispatch"
	"github.com/Epawse/geocommander/internal/logging"
	"github.com/Epawse/geocommander/internal/mcptools"
	"github.com/Epawse/geocommander/internal/scene"
)

// mcpCmd serves the action vocabulary as MCP tools on stdio
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve scene actions as MCP tools on stdio",
	Long: `Runs an MCP server on stdin/stdout exposing every scene action as a
tool, plus geo:// resources for the location, basemap, weather, and
time-preset catalogs. Actions execute against the simulated scene.

Stdout carries the MCP protocol, so logging goes to files only.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logging.Configure(logging.Settings{
		DebugMode:  cfg.Logging.DebugMode || verbose,
		Dir:        cfg.Logging.Dir,
		Level:      cfg.Logging.Level,
		Categories: cfg.Logging.Categories,
	})
	defer logging.CloseAll()

	sim := scene.NewSim()

	dispatcher := dispatch.New()
	dispatcher.SetHomeView(homeView(cfg))
	dispatcher.Attach(sim)
	defer dispatcher.Destroy()

	return mcptools.NewServer(dispatcher, Version).ServeStdio()
}
