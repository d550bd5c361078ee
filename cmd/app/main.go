package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/gazette/internal"
	pkgconfig "github.com/starford/gazette/pkg/config"
)

var version = "dev"

// defaultConfigFile is read when --config is absent or names a missing file.
const defaultConfigFile = "config/config.yaml"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	file := cmd.String("config")
	if file != "" || fileExists(defaultConfigFile) {
		if err := pkgconfig.LoadWithDefaults(file, defaultConfigFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if cmd.IsSet("env") {
		cfg.Site.Env = cmd.String("env")
	}
	if cmd.IsSet("root") {
		cfg.Site.Root = cmd.String("root")
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func runMode(mode string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithMode(mode),
			internal.WithVersion(version),
		}

		if err := internal.Run(ctx, opts...); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}

		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "gazette",
		Usage:   "Static site generator for posts, authors, categories, tags and newsletters",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfigFile,
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Build mode: development or production",
				Sources: cli.EnvVars("SITE_ENV"),
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "Project root directory",
				Sources: cli.EnvVars("SITE_ROOT"),
			},
		},
		DefaultCommand: "build",
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Render the site into the output directory",
				Action: runMode(internal.ModeBuild),
			},
			{
				Name:  "serve",
				Usage: "Build, then serve the output with live reload and a 404 fallback",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "HTTP port",
						Sources: cli.EnvVars("PORT"),
					},
				},
				Action: runMode(internal.ModeServe),
			},
			{
				Name:   "mcp",
				Usage:  "Serve content tools over MCP on stdio",
				Action: runMode(internal.ModeMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
