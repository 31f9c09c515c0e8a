// Command rstdpsimctl is the process entrypoint: it wires the simulation
// driver to stdin (command stream), stdout (line-delimited JSON snapshot
// stream), a log file, and an optional report store, then runs until
// stopped (spec §1, §6).
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"rstdpnet/internal/command"
	"rstdpnet/internal/control"
	"rstdpnet/internal/drive"
	"rstdpnet/internal/logsink"
	"rstdpnet/internal/params"
	"rstdpnet/internal/report"
	"rstdpnet/internal/runid"
	"rstdpnet/internal/snapshot"
	"rstdpnet/internal/store"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rstdpsimctl", flag.ContinueOnError)
	seed := fs.Int64("seed", 1, "PRNG seed for topology construction and random activity")
	delayMs := fs.Int64("delay-ms", 0, "initial inter-tick delay in milliseconds")
	logPath := fs.String("log-path", "", "append-only log file path (default: stderr)")
	reportPath := fs.String("report-path", "", "report store path (required for -store sqlite)")
	storeKind := fs.String("store", "memory", "report store backend: memory|sqlite")
	checkInvariants := fs.Bool("check-invariants", true, "run per-tick invariant checks")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logWriter, closeLog, err := openLogWriter(*logPath)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closeLog()
	log := logsink.New(logWriter)

	id := runid.New()
	log.Infof("run %s starting seed=%d", id, *seed)

	reportStore, err := store.New(*storeKind, *reportPath)
	if err != nil {
		return fmt.Errorf("opening report store: %w", err)
	}
	if err := reportStore.Init(ctx); err != nil {
		return fmt.Errorf("initializing report store: %w", err)
	}
	defer reportStore.Close()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	snapSink := snapshot.SinkFunc(func(s snapshot.Snapshot) error {
		enc := json.NewEncoder(out)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return out.Flush()
	})

	state := control.NewState(*delayMs)
	rng := rand.New(rand.NewSource(*seed))

	driver := drive.New(drive.Config{
		Params:          params.Default(),
		Rng:             rng,
		Log:             log,
		Snaps:           snapSink,
		State:           state,
		CheckInvariants: *checkInvariants,
	})

	go readCommands(os.Stdin, state, log)

	runErr := driver.Run()

	summary := report.Summary{
		RunID:               id,
		Ticks:               driver.Tick,
		RewardSum:           driver.Counters.RewardSum,
		PenaltySum:          driver.Counters.PenaltySum,
		FoodEaten:           driver.FoodEaten(),
		DangerHit:           driver.DangerHit(),
		FoodTime:            driver.Counters.FoodTime,
		DangerTime:          driver.Counters.DangerTime,
		ConfidenceHistogram: driver.ConfidenceHistogram(),
	}
	if err := reportStore.SaveSummary(ctx, summary); err != nil {
		log.Warnf("saving report summary: %v", err)
	}
	printReport(summary)

	if runErr != nil {
		log.Fatalf("run %s terminated: %v", id, runErr)
		return runErr
	}
	log.Infof("run %s stopped cleanly at tick %d", id, driver.Tick)
	return nil
}

// readCommands applies the textual command stream (spec §6) to state until
// stdin closes; a closed stream is treated like a "stop" command. Unknown or
// malformed lines are configuration faults (spec §7): logged at WARN and
// otherwise ignored.
func readCommands(r *os.File, state *control.State, log logsink.Sink) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cmd, err := command.Parse(scanner.Text())
		if err != nil {
			log.Warnf("command: %v", err)
			continue
		}
		switch cmd.Kind {
		case command.Start:
			state.Start()
		case command.Resume:
			state.Resume()
		case command.Pause:
			state.Pause()
		case command.Stop:
			state.Stop()
		case command.Reset:
			state.RequestReset()
		case command.Speed:
			state.SetDelayMs(cmd.DelayMs)
		}
	}
	state.Stop()
}

func openLogWriter(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// printReport writes the humanized end-of-run summary to stderr, matching
// the snapshot stream's numeric detail with a non-interactive twin. A real
// terminal gets a lightly highlighted rendering; a piped/logged stderr
// stays plain text.
func printReport(s report.Summary) {
	highlight := isatty.IsTerminal(os.Stderr.Fd())

	label := func(name string) string {
		if highlight {
			return "\033[1m" + name + "\033[0m"
		}
		return name
	}

	fmt.Fprintf(os.Stderr, "%s run=%s\n", label("rstdpnet"), s.RunID)
	fmt.Fprintf(os.Stderr, "  ticks:        %s\n", humanize.Comma(int64(s.Ticks)))
	fmt.Fprintf(os.Stderr, "  reward_sum:   %s\n", humanize.Comma(int64(s.RewardSum)))
	fmt.Fprintf(os.Stderr, "  penalty_sum:  %s\n", humanize.Comma(int64(s.PenaltySum)))
	fmt.Fprintf(os.Stderr, "  food_eaten:   %s\n", humanize.Comma(int64(s.FoodEaten)))
	fmt.Fprintf(os.Stderr, "  danger_hit:   %s\n", humanize.Comma(int64(s.DangerHit)))
	fmt.Fprintf(os.Stderr, "  food_time:    %s\n", humanizeTicks(s.FoodTime))
	fmt.Fprintf(os.Stderr, "  danger_time:  %s\n", humanizeTicks(s.DangerTime))
	fmt.Fprintf(os.Stderr, "  confidence histogram: %v\n", s.ConfidenceHistogram)
}

// humanizeTicks renders a tick count as an approximate duration, treating
// one tick as one simulated millisecond for display purposes only — the
// driver's own delay_ms is configurable and unrelated to wall-clock time.
func humanizeTicks(ticks int) string {
	return humanize.RelTime(time.Time{}, time.Time{}.Add(time.Duration(ticks)*time.Millisecond), "", "")
}
