// Command flood-guard watches a flood sensor and shuts the water supply off
// when it reads wet.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/flood-guard/internal/board"
	"github.com/sweeney/flood-guard/internal/config"
	"github.com/sweeney/flood-guard/internal/controller"
	"github.com/sweeney/flood-guard/internal/event"
	"github.com/sweeney/flood-guard/internal/logging"
	"github.com/sweeney/flood-guard/internal/power"
	"github.com/sweeney/flood-guard/internal/status"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (overrides config)")
	target := flag.String("target", "", `hardware target: "linux" or "sim" (overrides config)`)
	printState := flag.Bool("print-state", false, "Print sensor and button levels and exit")

	flag.Parse()

	if err := run(*configPath, flagOverrides(*logLevel, *target), *printState); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func flagOverrides(logLevel, target string) map[string]any {
	o := map[string]any{}
	if logLevel != "" {
		o["log_level"] = logLevel
	}
	if target != "" {
		o["target"] = target
	}
	return o
}

func run(configPath string, overrides map[string]any, printState bool) error {
	cfg, err := config.Load(configPath, overrides)
	if err != nil {
		return err
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), nil)

	b, err := board.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn().Err(err).Msg("board close")
		}
	}()

	if printState {
		return printLevels(os.Stdout, b)
	}

	session := uuid.NewString()
	mb := event.NewMailbox()
	b.Watch(mb)
	host := power.NewHost(mb.Wake(), mb.PostPeriodicWake, cfg.Power.WakePeriod)
	tracker := status.NewTracker(time.Now, session, cfg.StatusConfig())
	ctrl := b.Controller(cfg, mb, host, tracker)

	log.Info().
		Str("session", session).
		Str("target", cfg.Target).
		RawJSON("status", status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", "")).
		Msg("started")

	ticker := time.NewTicker(cfg.Control.LoopTick)
	defer ticker.Stop()
	host.AttachLoop(ticker, cfg.Control.LoopTick)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	reason, err := runLoop(context.Background(), ctrl, host.RunPeriodic, ticker.C, sigCh)
	log.Info().
		Str("reason", reason).
		RawJSON("status", status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)).
		Msg("stopped")
	return err
}

// runLoop runs the controller and the periodic wake source until a signal
// arrives or either fails. It returns the shutdown reason.
func runLoop(parent context.Context, ctrl *controller.Controller, periodic func(context.Context) error, tick <-chan time.Time, sig <-chan os.Signal) (string, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	reason := "CONTEXT"

	g.Go(func() error {
		select {
		case s := <-sig:
			reason = signalName(s)
			log.Info().Str("signal", reason).Msg("shutting down")
			cancel()
		case <-gctx.Done():
		}
		return nil
	})
	g.Go(func() error { return periodic(gctx) })
	g.Go(func() error { return ctrl.Run(gctx, tick) })

	err := g.Wait()
	return reason, err
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

func printLevels(w io.Writer, b *board.Board) error {
	wet, err := b.Sensor.Level()
	if err != nil {
		return fmt.Errorf("read flood sensor: %w", err)
	}
	pressed, err := b.Button.Level()
	if err != nil {
		return fmt.Errorf("read button: %w", err)
	}
	fmt.Fprintf(w, "sensor: %s, button: %s\n", levelString(wet, "WET", "DRY"), levelString(pressed, "PRESSED", "RELEASED"))
	return nil
}

func levelString(on bool, yes, no string) string {
	if on {
		return yes
	}
	return no
}
