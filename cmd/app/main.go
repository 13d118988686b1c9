package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/workbench/internal"
	"github.com/starford/workbench/internal/mcpserver"
	pkgconfig "github.com/starford/workbench/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(cmd.String("config"), "", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// serveMCP speaks MCP on stdin/stdout, so logs go to stderr.
func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	ws, err := internal.OpenWorkspace(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer ws.Close()

	logger.Info("MCP server starting", slog.String("storage_driver", cfg.Storage.Driver))
	return mcpserver.New(ws.Store, ws.Links, version).ServeStdio()
}

func export(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)
	cfg.Metadata.Enabled = false

	ws, err := internal.OpenWorkspace(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer ws.Close()

	format, docID, output := cmd.String("format"), cmd.String("doc"), cmd.String("output")

	var body []byte
	switch {
	case format == internal.FormatJSON:
		if body, err = internal.RenderBackup(ws.Store); err != nil {
			return err
		}
	case docID != "":
		d, ok := ws.Store.Doc(docID)
		if !ok {
			return fmt.Errorf("document %s not found", docID)
		}
		if body, err = internal.RenderDoc(d, format); err != nil {
			return err
		}
	default:
		if output == "" {
			return fmt.Errorf("--output directory is required when exporting every document")
		}
		paths, err := internal.ExportDocs(ctx, ws.Store, format, output)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(os.Stdout, p)
		}
		return nil
	}

	return writeOutput(os.Stdout, output, body)
}

func writeOutput(stdout io.Writer, path string, body []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "workbench",
		Usage:   "Personal workspace for notes, tasks, links, documents and prompt templates",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, change stream and inbox watcher",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve workspace tools over MCP on stdio",
				Action: serveMCP,
			},
			{
				Name:  "export",
				Usage: "Export the workspace as JSON or documents as Markdown/HTML",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "json, md or html",
						Value:   internal.FormatJSON,
					},
					&cli.StringFlag{
						Name:  "doc",
						Usage: "Document ID (md/html); every document when empty",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, or directory when exporting every document",
					},
				},
				Action: export,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
