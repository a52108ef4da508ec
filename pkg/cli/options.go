package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/mchmarny/dropout/pkg/student"
)

var optionsCmd = &cli.Command{
	Name:  "options",
	Usage: "List accepted values for categorical fields",
	Action: func(_ context.Context, cmd *cli.Command) error {
		return encode(cmd.Root().Writer, student.GetCatalog())
	},
}
