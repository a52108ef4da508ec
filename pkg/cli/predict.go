package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/mchmarny/dropout/pkg/student"
)

var (
	inputFileFlag = &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Path to a YAML or JSON file with one student's values",
		Required: true,
	}

	predictCmd = &cli.Command{
		Name:   "predict",
		Usage:  "Score a single student",
		Action: cmdPredict,
		Flags: []cli.Flag{
			inputFileFlag,
		},
	}
)

func cmdPredict(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	in, err := readInput(cmd.String(inputFileFlag.Name))
	if err != nil {
		return err
	}

	res, err := cfg.Assessor.Assess(ctx, in)
	if err != nil {
		return err
	}
	return encode(cmd.Root().Writer, res)
}

// readInput decodes one student from path. JSON is read through the YAML
// decoder; unknown keys are rejected so typos do not silently zero a field.
func readInput(path string) (student.RawInput, error) {
	var in student.RawInput
	b, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("reading input file %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("decoding input file %s: %w", path, err)
	}
	return in, nil
}
