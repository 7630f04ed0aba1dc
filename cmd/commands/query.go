package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"

	"businesshours/pkg/businesshours"
)

// NewCheckCommand returns the check subcommand.
func NewCheckCommand() *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "Tell whether the rule is open at a given time",
		Flags:  []cli.Flag{ruleFlag(), atFlag()},
		Action: runCheck,
	}
}

func runCheck(_ context.Context, cmd *cli.Command) error {
	bh, err := parseRule(cmd)
	if err != nil {
		return err
	}
	at, err := parseAt(cmd)
	if err != nil {
		return err
	}
	state := "closed"
	if bh.IsOpen(at) {
		state = "open"
	}
	_, err = fmt.Fprintf(out(cmd), "%s at %s\n", state, at.Format("Mon 2006-01-02 15:04:05"))
	return err
}

// NewNextCommand returns the next subcommand.
func NewNextCommand() *cli.Command {
	return &cli.Command{
		Name:  "next",
		Usage: "Print the time before the next opening and closing",
		Flags: []cli.Flag{
			ruleFlag(), atFlag(),
			&cli.DurationFlag{
				Name:  "unit",
				Usage: "Unit of the printed counts (results are truncated)",
				Value: time.Minute,
			},
		},
		Action: runNext,
	}
}

func runNext(_ context.Context, cmd *cli.Command) error {
	bh, err := parseRule(cmd)
	if err != nil {
		return err
	}
	at, err := parseAt(cmd)
	if err != nil {
		return err
	}
	unit := cmd.Duration("unit")
	if unit <= 0 {
		return fmt.Errorf("--unit must be > 0")
	}
	w := out(cmd)
	for _, row := range []struct {
		label string
		n     int64
		when  time.Time
	}{
		{"opens in", bh.TimeBeforeOpening(at, unit), bh.NextOpening(at)},
		{"closes in", bh.TimeBeforeClosing(at, unit), bh.NextClosing(at)},
	} {
		if row.n == businesshours.Forever {
			fmt.Fprintf(w, "%s: never\n", row.label)
			continue
		}
		fmt.Fprintf(w, "%s: %d x %s (%s)\n", row.label, row.n, unit, row.when.Format("Mon 2006-01-02 15:04"))
	}
	return nil
}

// NewCronsCommand returns the crons subcommand.
func NewCronsCommand() *cli.Command {
	return &cli.Command{
		Name:  "crons",
		Usage: "Print the cron expressions marking every opening and closing",
		Flags: []cli.Flag{
			ruleFlag(), atFlag(),
			&cli.IntFlag{
				Name:  "preview",
				Usage: "Also print the next N firings of each expression",
			},
		},
		Action: runCrons,
	}
}

func runCrons(_ context.Context, cmd *cli.Command) error {
	bh, err := parseRule(cmd)
	if err != nil {
		return err
	}
	at, err := parseAt(cmd)
	if err != nil {
		return err
	}
	preview := cmd.Int("preview")
	w := out(cmd)
	for _, set := range []struct {
		label string
		specs []string
	}{
		{"opening", bh.OpeningCrons()},
		{"closing", bh.ClosingCrons()},
	} {
		for _, spec := range set.specs {
			fmt.Fprintf(w, "%s\t%s\n", set.label, spec)
			if preview <= 0 {
				continue
			}
			sched, err := cron.ParseStandard(spec)
			if err != nil {
				return fmt.Errorf("cron %q: %w", spec, err)
			}
			t := at
			for i := 0; i < preview; i++ {
				t = sched.Next(t)
				fmt.Fprintf(w, "\t-> %s\n", t.Format("Mon 2006-01-02 15:04"))
			}
		}
	}
	return nil
}

// NewNormalizeCommand returns the normalize subcommand.
func NewNormalizeCommand() *cli.Command {
	return &cli.Command{
		Name:   "normalize",
		Usage:  "Print the canonical form of a rule and its weekly intervals",
		Flags:  []cli.Flag{ruleFlag()},
		Action: runNormalize,
	}
}

func runNormalize(_ context.Context, cmd *cli.Command) error {
	bh, err := parseRule(cmd)
	if err != nil {
		return err
	}
	w := out(cmd)
	if bh.IsAlwaysOpen() {
		_, err := fmt.Fprintln(w, "always open")
		return err
	}
	fmt.Fprintf(w, "canonical: %s\n", bh.Canonical())
	for _, iv := range bh.Intervals() {
		fmt.Fprintf(w, "  %s\n", iv)
	}
	return nil
}
