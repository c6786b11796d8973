package main

import (
	"errors"
	"fmt"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/api"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/history"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/mcpserver"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/suno"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Open a browser window, wait for a manual Suno login and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.ErrOrStderr(), "Log in to Suno in the opened window. The session is saved once the create page loads.")
			if err := a.service.OpenLogin(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Login successful! Session saved to", a.cfg.SessionConfig.StatePath)
			return nil
		},
	}
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		instrumental bool
		dir          string
	)
	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a song and download the new results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.start(cmd.Context()); err != nil {
				return err
			}
			result, err := a.service.Generate(cmd.Context(), suno.GenerateRequest{
				Prompt:       args[0],
				Instrumental: instrumental,
				TargetDir:    dir,
				Wait:         true,
			})
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Success {
				return errors.New(result.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&instrumental, "instrumental", "i", false, "Generate without vocals")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Download directory (default from config)")
	return cmd
}

func newDownloadCmd(a *app) *cobra.Command {
	var (
		count int
		dir   string
	)
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the most recent songs in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.start(cmd.Context()); err != nil {
				return err
			}
			target := a.service.DownloadDir(dir)
			paths, err := a.service.DownloadRecent(cmd.Context(), count, target)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"download_directory": target, "paths": paths})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of songs from the top of the list")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Download directory (default from config)")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded generations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.service.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if records == nil {
				records = []history.Record{}
			}
			return printJSON(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to show, 0 for all")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var withMCP bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			server := api.NewServer(a.service, a.cfg.ServerConfig, a.cfg.BrowserConfig.Headless, a.registry, a.logger)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return server.Run(ctx) })
			if withMCP {
				tools := mcpserver.New(a.service, version, a.cfg.BrowserConfig.Headless, a.logger)
				g.Go(func() error { return tools.Run(ctx, mcpserver.TransportHTTP, a.cfg.ServerConfig.MCPAddr) })
			}
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&withMCP, "mcp", false, "Also serve the MCP tools over streamable HTTP on the configured MCP address")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	var (
		transport string
		addr      string
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the song tools to an MCP client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("transport") {
				transport = a.cfg.ServerConfig.MCPTransport
			}
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.ServerConfig.MCPAddr
			}
			tools := mcpserver.New(a.service, version, a.cfg.BrowserConfig.Headless, a.logger)
			return tools.Run(cmd.Context(), transport, addr)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", mcpserver.TransportStdio, "Transport: stdio or http")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address for the http transport")
	return cmd
}
