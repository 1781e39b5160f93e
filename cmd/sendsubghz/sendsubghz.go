// Command sendsubghz replays a Flipper SubGHz descriptor through an OOK
// transmitter bridge.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/banshee-data/sendsubghz/internal/config"
	"github.com/banshee-data/sendsubghz/internal/db"
	"github.com/banshee-data/sendsubghz/internal/metrics"
	"github.com/banshee-data/sendsubghz/internal/monitoring"
	"github.com/banshee-data/sendsubghz/internal/playback"
	"github.com/banshee-data/sendsubghz/internal/preview"
	"github.com/banshee-data/sendsubghz/internal/protocol"
	"github.com/banshee-data/sendsubghz/internal/radio"
	"github.com/banshee-data/sendsubghz/internal/security"
	"github.com/banshee-data/sendsubghz/internal/subfile"
	"github.com/banshee-data/sendsubghz/internal/subghz"
	"github.com/banshee-data/sendsubghz/internal/version"
)

const (
	exitOK     = 0
	exitFatal  = 1
	exitNoData = 2
)

// openBridge connects to the serial OOK bridge. Tests replace it.
var openBridge = func(path string, opts radio.PortOptions, ackTimeout time.Duration) (radio.Transmitter, func() error, error) {
	tx, err := radio.OpenSerial(path, opts)
	if err != nil {
		return nil, nil, err
	}
	tx.AckTimeout = ackTimeout
	if err := tx.Initialise(); err != nil {
		tx.Close()
		return nil, nil, fmt.Errorf("failed to initialise bridge on %s: %w", path, err)
	}
	monitoring.Logf("initialised OOK bridge on %s", path)
	return tx, tx.Close, nil
}

// newSimulator is the transmitter behind -simulate. Tests replace it.
var newSimulator = func() radio.Transmitter {
	return radio.NewSimulatedTransmitter()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func fatal(stderr io.Writer, code int, format string, v ...interface{}) int {
	fmt.Fprintf(stderr, "FATAL : "+format+"\n", v...)
	return code
}

// run is the whole program; ctx is cancelled on SIGINT/SIGTERM.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return fatal(stderr, exitFatal, "%v", err)
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}

	cfg := config.Empty()
	if opts.configPath != "" {
		if cfg, err = config.Load(opts.configPath); err != nil {
			return fatal(stderr, exitFatal, "%v", err)
		}
	}
	s := resolveSettings(opts, cfg)

	if err := s.checkOutputs(opts); err != nil {
		return fatal(stderr, exitFatal, "%v", err)
	}

	if opts.history > 0 {
		if s.dbPath == "" {
			return fatal(stderr, exitFatal, "-history requires -db or history_db in the config file")
		}
		return printHistory(stdout, stderr, s.dbPath, opts.history)
	}

	started := time.Now()
	m := metrics.New()

	desc, warnings, err := subfile.Load(opts.file)
	if err != nil {
		return fatal(stderr, exitFatal, "%v", err)
	}
	sub, assembleWarnings, err := subfile.Assemble(desc, s.timing)
	warnings.Merge(assembleWarnings)
	monitoring.ReportWarnings(stderr, warnings)
	m.ObserveWarnings(warnings)
	if err != nil {
		return fatal(stderr, exitNoData, "%v in %s", err, opts.file)
	}

	if s.frequencyHz != 0 {
		sub.FrequencyHz = s.frequencyHz
	}

	printSummary(stdout, opts.file, desc, sub, s)

	if opts.previewPath != "" {
		if err := preview.Write(opts.previewPath, filepath.Base(opts.file), sub); err != nil {
			monitoring.Warnf("could not write preview: %v", err)
		} else {
			fmt.Fprintf(stdout, "Preview written to %s\n", opts.previewPath)
		}
	}

	rec := db.Run{
		ID:          db.NewRunID(),
		SourceFile:  opts.file,
		FrequencyHz: sub.FrequencyHz,
		Sequences:   len(sub.Sequences),
		TotalPulses: sub.TotalPulses(),
		Repeats:     s.repeat,
		PauseUs:     s.pause.Microseconds(),
		DryRun:      opts.dryRun || opts.simulate,
		Warnings:    len(warnings),
		StartedAt:   started,
	}

	if opts.dryRun && !opts.simulate {
		fmt.Fprintln(stdout, "Dry run: nothing transmitted.")
		rec.Outcome = "dry-run"
		s.finish(stdout, rec, m)
		return exitOK
	}

	var tx radio.Transmitter
	if opts.simulate {
		tx = newSimulator()
	} else {
		var closeBridge func() error
		tx, closeBridge, err = openBridge(s.port, s.portOptions, s.ackTimeout)
		if err != nil {
			return fatal(stderr, exitFatal, "transmitter unavailable: %v", err)
		}
		defer func() {
			if err := closeBridge(); err != nil {
				monitoring.Warnf("closing bridge: %v", err)
			}
		}()
	}

	sched := playback.NewScheduler(tx, s.repeat, s.pause)
	res, runErr := sched.Run(ctx, sub)

	m.ObserveRun(sub.FrequencyHz, res)
	rec.Outcome = string(res.Outcome)
	rec.Transmits = res.Transmits
	rec.AirTimeUs = uint64(res.AirTime.Microseconds())
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	s.finish(stdout, rec, m)

	switch res.Outcome {
	case playback.OutcomeInterrupted:
		fmt.Fprintf(stdout, "Transmission interrupted after %d of %d bursts.\n", res.Transmits, s.repeat*len(sub.Sequences))
		return exitOK
	case playback.OutcomeFailed:
		return fatal(stderr, exitFatal, "transmission failed: %v", runErr)
	}
	fmt.Fprintf(stdout, "Transmission complete. %d bursts, %d pulses in %s.\n", res.Transmits, res.PulsesSent, res.Elapsed.Round(time.Millisecond))
	return exitOK
}

// settings are the effective values after merging flags over the config file.
type settings struct {
	frequencyHz uint64
	repeat      int
	pause       time.Duration
	timing      protocol.Timing
	port        string
	portOptions radio.PortOptions
	ackTimeout  time.Duration
	dbPath      string
	metricsFile string

	dbFromFlag      bool
	metricsFromFlag bool
}

func resolveSettings(opts *options, cfg *config.Config) settings {
	s := settings{
		frequencyHz: cfg.GetFrequencyOverride(),
		repeat:      cfg.GetRepeat(),
		pause:       cfg.GetPause(),
		timing:      cfg.GetTiming(),
		port:        cfg.GetSerialPort(),
		portOptions: cfg.Serial.PortOptions,
		ackTimeout:  cfg.GetAckTimeout(),
		dbPath:      cfg.HistoryDB,
		metricsFile: cfg.MetricsFile,
	}
	if opts.explicit("f") {
		s.frequencyHz = opts.frequencyHz
	}
	if opts.explicit("r") {
		s.repeat = opts.repeat
	}
	if opts.explicit("p") {
		s.pause = opts.pause()
	}
	if opts.port != "" {
		s.port = opts.port
	}
	if opts.explicit("baud") {
		s.portOptions.BaudRate = opts.baud
	}
	if opts.dbPath != "" {
		s.dbPath = opts.dbPath
		s.dbFromFlag = true
	}
	if opts.metricsFile != "" {
		s.metricsFile = opts.metricsFile
		s.metricsFromFlag = true
	}
	return s
}

// checkOutputs validates output paths given on the command line. Paths from
// the config file are trusted.
func (s settings) checkOutputs(opts *options) error {
	if opts.previewPath != "" {
		if err := security.ValidateOutputPath(opts.previewPath); err != nil {
			return fmt.Errorf("invalid -preview: %w", err)
		}
	}
	if s.dbFromFlag {
		if err := security.ValidateOutputPath(s.dbPath); err != nil {
			return fmt.Errorf("invalid -db: %w", err)
		}
	}
	if s.metricsFromFlag {
		if err := security.ValidateOutputPath(s.metricsFile); err != nil {
			return fmt.Errorf("invalid -metrics-file: %w", err)
		}
	}
	return nil
}

// finish persists the run record and metrics. Failures here never change the
// exit code.
func (s settings) finish(stdout io.Writer, rec db.Run, m *metrics.Metrics) {
	rec.FinishedAt = time.Now()
	if rec.Outcome == "dry-run" {
		m.Runs.WithLabelValues(rec.Outcome).Inc()
	}

	if s.dbPath != "" {
		if err := recordRun(s.dbPath, rec); err != nil {
			monitoring.Warnf("could not record run: %v", err)
		} else {
			fmt.Fprintf(stdout, "Run %s recorded in %s\n", rec.ID, s.dbPath)
		}
	}
	if s.metricsFile != "" {
		if err := m.WriteTextfile(s.metricsFile); err != nil {
			monitoring.Warnf("could not write metrics: %v", err)
		}
	}
}

func recordRun(path string, rec db.Run) error {
	store, err := db.NewDB(path)
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = store.RecordRun(rec)
	return err
}

func printSummary(w io.Writer, path string, desc subfile.Descriptor, sub subghz.SubFile, s settings) {
	sum := subghz.Summarize(sub)

	fmt.Fprintf(w, "File:        %s\n", path)
	if desc.Filetype != "" {
		fmt.Fprintf(w, "Filetype:    %s (version %s)\n", desc.Filetype, desc.Version)
	}
	if desc.Preset != "" {
		fmt.Fprintf(w, "Preset:      %s\n", desc.Preset)
	}
	if desc.HasProtocol {
		fmt.Fprintf(w, "Protocol:    %s\n", desc.ProtocolName)
	}
	fmt.Fprintf(w, "Frequency:   %d Hz\n", sum.FrequencyHz)
	fmt.Fprintf(w, "Sequences:   %d\n", sum.Sequences)
	fmt.Fprintf(w, "Pulses:      %d\n", sum.TotalPulses)
	fmt.Fprintf(w, "Duration:    min %d us, max %d us, mean %.1f us\n", sum.MinDuration, sum.MaxDuration, sum.MeanDuration)
	fmt.Fprintf(w, "Air time:    %d us per pass\n", sum.TotalDuration)
	fmt.Fprintf(w, "Repeats:     %d, pause %d us\n", s.repeat, s.pause.Microseconds())
}
