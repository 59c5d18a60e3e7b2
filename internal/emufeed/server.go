package emufeed

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pattarpon/pokescan/pkg/logger"
)

// Run listens on cfg.Addr and pushes synthetic snapshot lines to every
// connected client until the context is cancelled.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Named("emufeed")

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	log.Info(ctx, "feed listening",
		logger.String("addr", ln.Addr().String()),
		logger.Duration("interval", cfg.Interval),
		logger.Int("shinyOdds", cfg.ShinyOdds),
	)

	var wg sync.WaitGroup
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Warn(ctx, "accept failed", logger.Error(err))
			continue
		}

		log.Info(ctx, "client connected",
			logger.String("remote", conn.RemoteAddr().String()),
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			serve(ctx, cfg, conn, log)
		}()
	}

	wg.Wait()
	log.Info(ctx, "feed stopped")
	return nil
}

// serve streams encounters to one client until it disconnects or the
// context cancels.
func serve(ctx context.Context, cfg *Config, conn net.Conn, log logger.Logger) {
	defer conn.Close()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	count := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		count++

		if cfg.MalformedEvery > 0 && count%cfg.MalformedEvery == 0 {
			if _, err := conn.Write(malformedLine()); err != nil {
				logDisconnect(ctx, log, conn, err)
				return
			}
		}

		if cfg.ClearEvery > 0 && count%cfg.ClearEvery == 0 {
			if _, err := conn.Write(clearLine()); err != nil {
				logDisconnect(ctx, log, conn, err)
				return
			}
			continue
		}

		if _, err := conn.Write(encounterLine(cfg.ShinyOdds)); err != nil {
			logDisconnect(ctx, log, conn, err)
			return
		}
	}
}

func logDisconnect(ctx context.Context, log logger.Logger, conn net.Conn, err error) {
	if ctx.Err() != nil {
		return
	}
	log.Info(ctx, "client disconnected",
		logger.String("remote", conn.RemoteAddr().String()),
		logger.Error(err),
	)
}
