// client drives the robot from the keyboard: W A S D each send one command
// frame to the robot's websocket endpoint. Ctrl+C quits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/0ya-sh0/GoWASD/internal/client"
	"github.com/0ya-sh0/GoWASD/internal/config"
	"github.com/0ya-sh0/GoWASD/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("client", pflag.ContinueOnError)
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

	if !client.IsTerminal(os.Stdin) {
		return errors.New("stdin is not a terminal, use testclient for scripted keys")
	}
	terminal := client.NewTerminal(os.Stdin, os.Stdout)
	if err := terminal.Setup(); err != nil {
		return err
	}
	defer terminal.Restore()

	logger := logging.New(client.NewCRLFWriter(os.Stderr), cfg.Level(), client.IsTerminal(os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	keys := make(chan client.KeyEvent)
	go client.NewKeyReader(os.Stdin).Listen(keys)

	adapter := client.NewAdapter(cfg.Endpoint, logger)
	if err := adapter.Run(ctx, keys); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
