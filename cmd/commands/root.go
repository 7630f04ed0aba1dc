package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"businesshours/pkg/businesshours"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "bhours",
		Usage: "Query weekly business-hours rules and watch their transitions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (yaml or json)",
				Value:   "./bhours.yaml",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewCheckCommand(),
			NewNextCommand(),
			NewCronsCommand(),
			NewNormalizeCommand(),
			NewWatchCommand(),
			NewHistoryCommand(),
		},
	}
}

func ruleFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "rule",
		Aliases: []string{"r"},
		Usage:   `Business-hours rule, e.g. "wday{mon-fri} hr{9-18}" ("" is always open)`,
	}
}

func atFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "at",
		Usage: "Reference time (RFC3339 or 2006-01-02T15:04:05 local); defaults to now",
	}
}

// parseRule requires --rule to be passed explicitly; an empty value is a valid rule.
func parseRule(cmd *cli.Command) (*businesshours.BusinessHours, error) {
	if !cmd.IsSet("rule") {
		return nil, errors.New("--rule is required")
	}
	rule := cmd.String("rule")
	bh, err := businesshours.Parse(rule)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", rule, err)
	}
	return bh, nil
}

func parseAt(cmd *cli.Command) (time.Time, error) {
	raw := strings.TrimSpace(cmd.String("at"))
	if raw == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q (use RFC3339 or 2006-01-02T15:04:05)", raw)
	}
	return t, nil
}

func out(cmd *cli.Command) io.Writer { return cmd.Root().Writer }

func logLevel(cmd *cli.Command) string {
	if cmd.Bool("debug") {
		return "debug"
	}
	return "info"
}
