package main

import (
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/sendsubghz/internal/db"
)

func printHistory(stdout, stderr io.Writer, path string, limit int) int {
	store, err := db.NewDB(path)
	if err != nil {
		return fatal(stderr, exitFatal, "failed to open history %s: %v", path, err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(limit)
	if err != nil {
		return fatal(stderr, exitFatal, "%v", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No recorded runs.")
		return exitOK
	}

	fmt.Fprintf(stdout, "%-20s %-11s %12s %5s %8s %s\n", "STARTED", "OUTCOME", "FREQ_HZ", "TX", "PULSES", "FILE")
	for _, r := range runs {
		outcome := r.Outcome
		if r.DryRun && outcome != "dry-run" {
			outcome += "*"
		}
		fmt.Fprintf(stdout, "%-20s %-11s %12d %5d %8d %s\n",
			r.StartedAt.Local().Format(time.DateTime), outcome, r.FrequencyHz, r.Transmits, r.TotalPulses, r.SourceFile)
		if r.Error != "" {
			fmt.Fprintf(stdout, "    error: %s\n", r.Error)
		}
	}
	return exitOK
}
