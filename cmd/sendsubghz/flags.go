package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/sendsubghz/internal/config"
)

var errUsage = errors.New("usage")

// options is the parsed command line. Fields mirrored in the config file are
// only authoritative when the matching flag was given (see set).
type options struct {
	file        string
	frequencyHz uint64
	repeat      int
	pauseUs     int64
	dryRun      bool
	simulate    bool
	configPath  string
	port        string
	baud        int
	dbPath      string
	history     int
	previewPath string
	metricsFile string
	showVersion bool

	set map[string]bool
}

func (o *options) explicit(name string) bool {
	return o.set[name]
}

func (o *options) pause() time.Duration {
	return time.Duration(o.pauseUs) * time.Microsecond
}

// parseFlags parses args (without the program name). flag.ErrHelp is
// returned for -h; errUsage wraps every other invalid invocation.
func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{set: map[string]bool{}}

	fs := flag.NewFlagSet("sendsubghz", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Uint64Var(&o.frequencyHz, "f", 0, "Override the carrier frequency (Hz)")
	fs.IntVar(&o.repeat, "r", 1, "Number of times to play the whole file (> 0)")
	fs.Int64Var(&o.pauseUs, "p", 10000, "Pause between sequences in microseconds (>= 0)")
	fs.BoolVar(&o.dryRun, "d", false, "Dry run: parse and report without transmitting")
	fs.BoolVar(&o.simulate, "simulate", false, "Play through a simulated transmitter that only sleeps")
	fs.StringVar(&o.configPath, "config", "", "Path to a .json/.yaml configuration file")
	fs.StringVar(&o.port, "port", "", "Serial device of the OOK bridge (default from config or /dev/ttyACM0)")
	fs.IntVar(&o.baud, "baud", 0, "Baud rate of the OOK bridge (default from config or 115200)")
	fs.StringVar(&o.dbPath, "db", "", "Record playback runs in this sqlite database")
	fs.IntVar(&o.history, "history", 0, "Print the last N recorded runs and exit (requires -db)")
	fs.StringVar(&o.previewPath, "preview", "", "Write a waveform preview (.html or .png)")
	fs.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics after playback")
	fs.BoolVar(&o.showVersion, "version", false, "Print version information and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: sendsubghz [-f freq] [-r count] [-p pause_us] [-d] [-h] <file.sub>\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if o.showVersion {
		return o, nil
	}

	if o.explicit("r") && o.repeat <= 0 {
		return nil, fmt.Errorf("%w: repeat count must be > 0, got %d", errUsage, o.repeat)
	}
	if o.explicit("p") && o.pauseUs < 0 {
		return nil, fmt.Errorf("%w: pause must be >= 0, got %d", errUsage, o.pauseUs)
	}
	if o.explicit("p") && o.pauseUs > config.MaxPauseUs {
		return nil, fmt.Errorf("%w: pause must be <= %d, got %d", errUsage, config.MaxPauseUs, o.pauseUs)
	}
	if o.explicit("f") && o.frequencyHz == 0 {
		return nil, fmt.Errorf("%w: frequency must be > 0", errUsage)
	}
	if o.explicit("baud") && o.baud <= 0 {
		return nil, fmt.Errorf("%w: baud rate must be > 0, got %d", errUsage, o.baud)
	}
	if o.history < 0 {
		return nil, fmt.Errorf("%w: history count must be >= 0, got %d", errUsage, o.history)
	}
	if o.history > 0 {
		// -history may take its database from the config file, checked later
		return o, nil
	}

	switch fs.NArg() {
	case 0:
		fs.Usage()
		return nil, fmt.Errorf("%w: missing descriptor file", errUsage)
	case 1:
		o.file = fs.Arg(0)
	default:
		return nil, fmt.Errorf("%w: expected one descriptor file, got %d", errUsage, fs.NArg())
	}
	return o, nil
}
