package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/urfave/cli/v3"

	"github.com/mchmarny/dropout/pkg/assess"
	"github.com/mchmarny/dropout/pkg/logging"
	"github.com/mchmarny/dropout/pkg/student"
)

const factorSeparator = "; "

var (
	csvFileFlag = &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "CSV file with one student per row, headers named like the JSON fields",
		Required: true,
	}

	outFileFlag = &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Write scored rows to this CSV file instead of stdout",
	}

	concurrencyFlag = &cli.IntFlag{
		Name:  "concurrency",
		Usage: "Rows scored in parallel (default: batch_concurrency from config)",
	}

	scoreCmd = &cli.Command{
		Name:   "score",
		Usage:  "Score a CSV of students",
		Action: cmdScore,
		Flags: []cli.Flag{
			csvFileFlag,
			outFileFlag,
			concurrencyFlag,
		},
	}
)

// scoredRow is one output line of the score command.
type scoredRow struct {
	Row         int     `csv:"row"`
	ID          string  `csv:"id"`
	Course      string  `csv:"course"`
	Label       int     `csv:"label"`
	Probability float64 `csv:"dropout_probability"`
	Tier        string  `csv:"tier"`
	Factors     string  `csv:"factors"`
	Error       string  `csv:"error"`
}

func cmdScore(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	path := cmd.String(csvFileFlag.Name)

	level := cfg.Config.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	logger := logging.NewCLILogger(level).WithGroup("score").With("file", path)

	inputs, err := readInputs(path)
	if err != nil {
		return err
	}
	logger.Info("scoring students", "rows", len(inputs))

	concurrency := cfg.Config.BatchConcurrency
	if n := cmd.Int(concurrencyFlag.Name); n > 0 {
		concurrency = n
	}

	results, err := cfg.Assessor.AssessBatch(ctx, inputs, concurrency)
	if err != nil {
		return err
	}

	rows := toScoredRows(results)
	failed := 0
	for _, r := range rows {
		if r.Error != "" {
			failed++
			logger.Error("row not scored", "row", r.Row, "error", r.Error)
		}
	}

	w := cmd.Root().Writer
	if out := cmd.String(outFileFlag.Name); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := writeScoredRows(w, rows); err != nil {
		return err
	}
	logger.Info("scoring done", "scored", len(rows)-failed, "failed", failed)
	return nil
}

func readInputs(path string) ([]student.RawInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file %s: %w", path, err)
	}
	defer f.Close()

	var list []*student.RawInput
	if err := gocsv.Unmarshal(f, &list); err != nil {
		return nil, fmt.Errorf("parsing CSV file %s: %w", path, err)
	}

	inputs := make([]student.RawInput, 0, len(list))
	for _, in := range list {
		inputs = append(inputs, *in)
	}
	return inputs, nil
}

func toScoredRows(results []*assess.BatchResult) []*scoredRow {
	rows := make([]*scoredRow, 0, len(results))
	for _, r := range results {
		// 1-based, counting data rows only
		row := &scoredRow{Row: r.Index + 1}
		if r.Err != nil {
			row.Error = r.Err.Error()
			rows = append(rows, row)
			continue
		}
		a := r.Assessment
		row.ID = a.ID
		row.Course = a.Input.Course
		row.Label = a.Label
		row.Probability = a.Probability
		row.Tier = a.Tier.String()
		row.Factors = strings.Join(a.Factors, factorSeparator)
		rows = append(rows, row)
	}
	return rows
}

func writeScoredRows(w io.Writer, rows []*scoredRow) error {
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writing scored rows: %w", err)
	}
	return nil
}
