package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pattarpon/pokescan/internal/emufeed"
	"github.com/pattarpon/pokescan/pkg/logger"
)

// Default configuration constants.
const (
	defaultAddr           = "127.0.0.1:9876"
	defaultInterval       = 2 * time.Second
	defaultShinyOdds      = 512
	defaultClearEvery     = 10
	defaultMalformedEvery = 0
)

func main() {
	var (
		addr           = flag.String("addr", defaultAddr, "TCP listen address")
		interval       = flag.Duration("interval", defaultInterval, "Delay between snapshot lines")
		shinyOdds      = flag.Int("shiny-odds", defaultShinyOdds, "Shiny chance denominator (1=always, 0=never)")
		clearEvery     = flag.Int("clear-every", defaultClearEvery, "Emit a clear sentinel after every N encounters (0=never)")
		malformedEvery = flag.Int("malformed-every", defaultMalformedEvery, "Inject a malformed line after every N encounters (0=never)")
		logLevel       = flag.String("log-level", "info", "Log verbosity: debug, info, warn, error")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(*logLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &emufeed.Config{
		Addr:           *addr,
		Interval:       *interval,
		ShinyOdds:      *shinyOdds,
		ClearEvery:     *clearEvery,
		MalformedEvery: *malformedEvery,
	}

	if err := emufeed.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("feed failed: " + err.Error() + "\n")
	}
}
