// testclient replays keys without a terminal, e.g.
//
//	testclient --endpoint ws://robot.local:9001 wwaassdd
//
// Keys are sent once the connection is open, one per --interval, and the
// client lingers for --linger to log the robot's echoes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

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
	var interval, linger time.Duration
	flagSet := pflag.NewFlagSet("testclient", pflag.ContinueOnError)
	config.AddFlags(flagSet)
	flagSet.DurationVar(&interval, "interval", 200*time.Millisecond, "delay between keys")
	flagSet.DurationVar(&linger, "linger", time.Second, "time to wait for echoes after the last key")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		return errors.New("usage: testclient [flags] KEYS")
	}
	script := strings.TrimSpace(flagSet.Arg(0))

	cfg, err := config.FromFlags(flagSet)
	if err != nil {
		return err
	}
	logger := logging.NewStderr(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adapter := client.NewAdapter(cfg.Endpoint, logger)
	keys := make(chan client.KeyEvent)
	adapter.Channel().OnOpen(func() {
		go replay(ctx, script, keys, interval, linger)
	})
	// Nothing left to do once the link is gone.
	adapter.Channel().OnClose(adapter.Close)

	if err := adapter.Run(ctx, keys); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func replay(ctx context.Context, script string, keys chan<- client.KeyEvent, interval, linger time.Duration) {
	defer close(keys)
	for event := range client.ScriptedKeys(script) {
		select {
		case keys <- event:
		case <-ctx.Done():
			return
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return
		}
	}
	select {
	case <-time.After(linger):
	case <-ctx.Done():
	}
}
