package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// sweep manually runs the auto-absence sweep for a date. Sections already
// swept that day are skipped; re-runs are safe.
func (cli *commandLine) sweep(date string) error {
	if date == "" {
		date = cli.attendanceSvc.Today()
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return errors.Errorf("invalid date %q: want YYYY-MM-DD", date)
	}

	marked, err := cli.sweeper.Sweep(context.Background(), date)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d member(s) marked absent\n", date, marked)
	return nil
}
