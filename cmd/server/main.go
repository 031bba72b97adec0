// server runs on the robot. It listens for command frames and drives the
// motors; with --dry-run it only logs pin changes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/0ya-sh0/GoWASD/internal/config"
	"github.com/0ya-sh0/GoWASD/internal/logging"
	"github.com/0ya-sh0/GoWASD/internal/motor"
	"github.com/0ya-sh0/GoWASD/internal/server"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	config.AddFlags(flagSet)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	cfg, err := config.FromFlags(flagSet)
	if err != nil {
		return err
	}
	logger := logging.NewStderr(cfg.Level())

	pins, closeGPIO, err := openPins(cfg, logger)
	if err != nil {
		return err
	}
	controller := motor.NewController(pins)
	defer func() {
		controller.Stop()
		if closeGPIO != nil {
			closeGPIO()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(controller, logger)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(cfg.Listen)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openPins(cfg *config.Config, logger *slog.Logger) (motor.Pins, func() error, error) {
	if cfg.Motor.DryRun {
		logger.Info("dry run, motor pins are logged only")
		return motor.DryRunPins(logger), nil, nil
	}
	pins, closeGPIO, err := motor.OpenGPIO(cfg.Motor.Pins())
	if err != nil {
		return motor.Pins{}, nil, err
	}
	logger.Info("gpio ready", "pins", cfg.Motor.Pins())
	return pins, closeGPIO, nil
}
