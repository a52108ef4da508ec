package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/mchmarny/dropout/pkg/assess"
	"github.com/mchmarny/dropout/pkg/config"
	"github.com/mchmarny/dropout/pkg/data"
	"github.com/mchmarny/dropout/pkg/logging"
	"github.com/mchmarny/dropout/pkg/model"
)

const (
	appName      = "dropout"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"

	modelEnvVar = "DROPOUT_MODEL"
	dbEnvVar    = "DROPOUT_DB"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	outputFormat = formatJSON

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	dbFlag = &cli.StringFlag{
		Name:    "db",
		Usage:   "Sqlite file or postgres:// URL for assessment history (default: $HOME/.dropout/data.db)",
		Sources: cli.EnvVars(dbEnvVar),
	}

	modelFlag = &cli.StringFlag{
		Name:    "model",
		Usage:   "Path to the exported classifier (default: model_path from config)",
		Sources: cli.EnvVars(modelEnvVar),
	}

	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Directory holding config.yaml (default: $HOME/.dropout)",
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging(slog.LevelInfo)

	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Dir      string
	DSN      string
	Debug    bool
	Config   *config.Config
	DB       *sql.DB
	Model    *model.Service
	Assessor *assess.Assessor
}

func getConfig(cmd *cli.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Student dropout risk dashboard and scoring CLI",
		Metadata:              map[string]any{},
		Flags: []cli.Flag{
			debugFlag,
			dbFlag,
			modelFlag,
			configFlag,
			formatFlag,
		},
		Commands: []*cli.Command{
			serverCmd,
			predictCmd,
			scoreCmd,
			historyCmd,
			optionsCmd,
			configCmd,
		},
		Before: setup,
		After: func(_ context.Context, cmd *cli.Command) error {
			if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	debug := cmd.Bool(debugFlag.Name)
	if debug {
		initLogging(slog.LevelDebug)
	}

	outputFormat = formatJSON
	if f := cmd.String(formatFlag.Name); f == formatYAML || f == "yml" {
		outputFormat = formatYAML
	}

	dir := cmd.String(configFlag.Name)
	if dir == "" {
		d, _, err := config.GetOrCreateHomeDir(appName)
		if err != nil {
			return ctx, fmt.Errorf("resolving app directory: %w", err)
		}
		dir = d
	}

	conf, err := config.ReadOrCreate(dir)
	if err != nil {
		return ctx, fmt.Errorf("reading config: %w", err)
	}
	if !debug {
		initLogging(logging.ParseLogLevel(conf.LogLevel))
	}

	modelPath := cmd.String(modelFlag.Name)
	if modelPath == "" {
		modelPath = conf.ModelPath
	}

	dsn := cmd.String(dbFlag.Name)
	if dsn == "" {
		dsn = filepath.Join(dir, data.DataFileName)
	}

	if err := data.Init(dsn); err != nil {
		return ctx, fmt.Errorf("initializing database: %w", err)
	}

	db, err := data.GetDB(dsn)
	if err != nil {
		return ctx, fmt.Errorf("opening database: %w", err)
	}

	svc := model.NewService(modelPath)

	var opts []assess.Option
	if conf.History {
		opts = append(opts, assess.WithRecorder(newDBRecorder(db)))
	}

	slog.Debug("app configured", "dir", dir, "db", data.DriverFor(dsn), "model", modelPath, "history", conf.History)

	cmd.Root().Metadata[appConfigKey] = &appConfig{
		Dir:      dir,
		DSN:      dsn,
		Debug:    debug,
		Config:   conf,
		DB:       db,
		Model:    svc,
		Assessor: assess.New(svc, opts...),
	}
	return ctx, nil
}

func initLogging(level slog.Level) {
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

func encode(w io.Writer, v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(w).Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
