// Command sourcebundle turns a remote code locator (repository, blob or gist
// URL) into one bounded text bundle for downstream analysis, either as a
// one-shot CLI run or as a long-running HTTP daemon.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sourcebundle/internal/acquire"
	"git.home.luguber.info/inful/sourcebundle/internal/config"
	"git.home.luguber.info/inful/sourcebundle/internal/daemon"
	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/sourcebundle/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Fetch struct {
		Locator string `arg:"" help:"Repository, blob or gist URL (or owner/repo shorthand)"`
		Token   string `short:"t" env:"SOURCEBUNDLE_TOKEN" help:"GitHub access token; enables the authenticated contents API and private repositories"`
		Output  string `short:"o" help:"Write the bundle to a file instead of stdout"`
		Timeout int    `help:"Acquisition timeout in seconds" default:"120"`
	} `cmd:"" help:"Fetch one locator and print the assembled bundle"`

	Serve struct{} `cmd:"" help:"Run the acquisition pipeline as an HTTP daemon"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	switch ctx.Command() {
	case "fetch <locator>":
		runFetch()
	case "serve":
		runServe()
	case "init":
		setupLogging(config.LoggingConfig{})
		adapter := errors.NewCLIErrorAdapter(CLI.Verbose, slog.Default())
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			adapter.HandleError(err)
		}
		fmt.Printf("Configuration written to %s\n", CLI.Config)
	case "version":
		fmt.Printf("sourcebundle %s\n", version.String())
	}
}

// runFetch executes one acquisition. A config file is optional here: it only
// contributes logging settings, so a missing file falls back to defaults.
func runFetch() {
	logging := config.LoggingConfig{}
	if _, err := os.Stat(CLI.Config); err == nil {
		if cfg, err := config.Load(CLI.Config); err == nil {
			logging = cfg.Logging
		}
	}
	setupLogging(logging)
	adapter := errors.NewCLIErrorAdapter(CLI.Verbose, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(CLI.Fetch.Timeout)*time.Second)
	defer cancel()

	service := acquire.NewService(acquire.Options{})
	res, err := service.Acquire(ctx, acquire.Request{
		Locator: CLI.Fetch.Locator,
		Token:   CLI.Fetch.Token,
	})
	if err != nil {
		adapter.HandleError(err)
		return
	}

	if CLI.Fetch.Output != "" {
		if err := os.WriteFile(CLI.Fetch.Output, []byte(res.Bundle), 0o644); err != nil {
			adapter.HandleError(errors.RuntimeError("could not write bundle file").
				WithCause(err).
				WithContext("path", CLI.Fetch.Output).
				Build())
			return
		}
		slog.Info("bundle written",
			slog.String("path", CLI.Fetch.Output),
			slog.Int("files", res.Files),
			slog.Int("bytes", res.Bytes))
		return
	}
	fmt.Print(res.Bundle)
}

func runServe() {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		setupLogging(config.LoggingConfig{})
		errors.NewCLIErrorAdapter(CLI.Verbose, slog.Default()).HandleError(err)
		return
	}
	setupLogging(cfg.Logging)
	adapter := errors.NewCLIErrorAdapter(CLI.Verbose, slog.Default())

	d, err := daemon.New(cfg)
	if err != nil {
		adapter.HandleError(err)
		return
	}
	if err := d.Run(context.Background()); err != nil {
		adapter.HandleError(err)
	}
}

func setupLogging(logging config.LoggingConfig) {
	slog.SetDefault(config.SetupLogger(logging, CLI.Verbose))
}
