package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/cyrillknecht/nolimittexasholdem/internal/server"
)

var CLI struct {
	Config     string `short:"c" long:"config" default:"holdem-server.hcl" help:"Path to optional HCL configuration file"`
	Port       int    `short:"p" long:"port" help:"Port to bind to (overrides config)"`
	SmallBlind uint64 `short:"b" long:"small-blind" help:"Starting small blind (overrides config)"`
	StartMoney uint64 `short:"m" long:"start-money" help:"Starting chip stack per seat (overrides config)"`
	LogLevel   string `short:"l" long:"log-level" help:"Log level (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadFile(CLI.Config, server.DefaultConfig())
	if err != nil {
		kctx.FatalIfErrorf(err)
	}

	if CLI.Port != 0 {
		cfg.Port = CLI.Port
	}
	if CLI.SmallBlind != 0 {
		cfg.SmallBlind = CLI.SmallBlind
	}
	if CLI.StartMoney != 0 {
		cfg.StartMoney = CLI.StartMoney
	}
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		kctx.FatalIfErrorf(err)
	}

	logger := log.New(os.Stderr)
	logger.SetColorProfile(termenv.TrueColor)
	switch cfg.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("starting poker server",
		"port", cfg.Port,
		"small_blind", cfg.SmallBlind,
		"start_money", cfg.StartMoney)

	g, ctx := errgroup.WithContext(context.Background())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	g.Go(func() error {
		select {
		case <-sig:
			logger.Info("shutting down")
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	mediator := server.New(cfg, time.Now().UnixNano(), logger)
	g.Go(func() error {
		defer cancel()
		return mediator.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("mediator exited", "error", err)
		os.Exit(1)
	}
}
