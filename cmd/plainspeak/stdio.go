package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/plainspeak"
	"github.com/helixml/plainspeak/internal/clientopts"
	"github.com/helixml/plainspeak/internal/log"
	"github.com/helixml/plainspeak/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants call the translate_phrase tool, and extract_text when
an OCR engine is available. Configuration is loaded from environment variables
and .env file. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// stdout carries the protocol.
	slogger := log.New(os.Stderr, cfg.LogFormat(), cfg.LogLevel())

	opts, err := clientopts.Options(cfg)
	if err != nil {
		return err
	}
	opts = append(opts, plainspeak.WithLogger(slogger))

	slogger.Info("starting MCP server", slog.String("version", version))

	client, err := plainspeak.New(opts...)
	if err != nil {
		return fmt.Errorf("create plainspeak client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close plainspeak client", slog.Any("error", err))
		}
	}()

	var extractor mcp.TextExtractor
	if client.Capabilities().OCRAvailable {
		extractor = client
	}

	return mcp.NewServer(client, extractor, version, slogger).ServeStdio()
}
