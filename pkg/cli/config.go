package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mchmarny/dropout/pkg/config"
	"github.com/mchmarny/dropout/pkg/data"
)

var (
	historySetFlag = &cli.StringFlag{
		Name:  "history",
		Usage: "Turn assessment history on or off [on, off]",
	}

	configCmd = &cli.Command{
		Name:   "config",
		Usage:  "Show the resolved configuration or update config.yaml",
		Action: cmdConfig,
		Flags: []cli.Flag{
			historySetFlag,
		},
	}
)

type configView struct {
	Dir      string         `json:"dir" yaml:"dir"`
	Database string         `json:"database" yaml:"database"`
	Config   *config.Config `json:"config" yaml:"config"`
}

func cmdConfig(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	if v := cmd.String(historySetFlag.Name); v != "" {
		switch v {
		case "on":
			cfg.Config.History = true
		case "off":
			cfg.Config.History = false
		default:
			return fmt.Errorf("invalid history value %q, expected on or off", v)
		}
		if err := config.Save(cfg.Dir, cfg.Config); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
	}

	return encode(cmd.Root().Writer, &configView{
		Dir:      cfg.Dir,
		Database: data.DriverFor(cfg.DSN),
		Config:   cfg.Config,
	})
}
