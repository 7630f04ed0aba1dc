package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"businesshours/internal/app"
	"businesshours/internal/config"
	"businesshours/internal/storage"
	logx "businesshours/pkg/logx"
)

// NewWatchCommand returns the watch subcommand.
func NewWatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Run the transition daemon for every schedule in the config file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "follow",
				Usage: "Print each transition to stdout as it fires",
			},
		},
		Action: runWatch,
	}
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	a, err := app.NewApp(cmd.String("config"))
	if err != nil {
		return err
	}
	if cmd.Bool("follow") {
		events, unsub := a.Watch().Subscribe(16)
		defer unsub()
		go func() {
			for t := range events {
				fmt.Fprintf(out(cmd), "%s\t%s\t%s\n", t.At.Format(time.RFC3339), t.Schedule, t.Kind)
			}
		}()
	}
	if err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.Stop(stopCtx)
}

// NewHistoryCommand returns the history subcommand.
func NewHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded transitions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "schedule",
				Usage: "Only show this schedule",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of transitions",
				Value: 20,
			},
		},
		Action: runHistory,
	}
}

func runHistory(ctx context.Context, cmd *cli.Command) error {
	log := logx.NewConsole(logLevel(cmd))
	cfg, err := config.NewManager(cmd.String("config")).Load()
	if err != nil {
		return err
	}
	sc, err := cfg.StorageOptions()
	if err != nil {
		return err
	}
	st, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("%s: %w", cmd.String("config"), storage.ErrDisabled)
	}
	defer st.Close()

	items, err := st.RecentTransitions(ctx, cmd.String("schedule"), cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(out(cmd), "No transitions recorded.")
		return err
	}

	w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AT\tSCHEDULE\tKIND\tCRON")
	for _, t := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.At.Local().Format(time.RFC3339), t.Schedule, t.Kind, t.Cron)
	}
	return w.Flush()
}
