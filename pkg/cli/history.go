package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/mchmarny/dropout/pkg/data"
)

var (
	limitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Number of most recent assessments to list",
		Value: data.ListLimitDefault,
	}

	summaryFlag = &cli.BoolFlag{
		Name:  "summary",
		Usage: "Print per tier counts instead of individual assessments",
	}

	resetFlag = &cli.BoolFlag{
		Name:  "reset",
		Usage: "Delete all stored assessments",
	}

	historyCmd = &cli.Command{
		Name:   "history",
		Usage:  "List or reset stored assessments",
		Action: cmdHistory,
		Flags: []cli.Flag{
			limitFlag,
			summaryFlag,
			resetFlag,
		},
	}
)

type deleteResult struct {
	Deleted int64 `json:"deleted" yaml:"deleted"`
}

func cmdHistory(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	w := cmd.Root().Writer

	switch {
	case cmd.Bool(resetFlag.Name):
		n, err := data.DeletePredictions(cfg.DB)
		if err != nil {
			return fmt.Errorf("resetting history: %w", err)
		}
		slog.Debug("history reset", "deleted", n)
		return encode(w, &deleteResult{Deleted: n})
	case cmd.Bool(summaryFlag.Name):
		list, err := data.GetTierSummary(cfg.DB)
		if err != nil {
			return fmt.Errorf("summarizing history: %w", err)
		}
		return encode(w, list)
	default:
		list, err := data.ListPredictions(cfg.DB, cmd.Int(limitFlag.Name))
		if err != nil {
			return fmt.Errorf("listing history: %w", err)
		}
		return encode(w, list)
	}
}
