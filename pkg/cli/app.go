package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rafianfasaa/stunting/pkg/config"
	"github.com/rafianfasaa/stunting/pkg/data"
	"github.com/rafianfasaa/stunting/pkg/logging"
	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "stunting"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	configDirFlag = &urfave.StringFlag{
		Name:    "config",
		Usage:   "Directory holding config.yaml (default: $HOME/.stunting)",
		EnvVars: []string{"STUNTING_CONFIG"},
	}

	dbFlag = &urfave.StringFlag{
		Name:    "db",
		Usage:   "Reference store: sqlite file path or postgres:// URL (overrides config)",
		EnvVars: []string{"STUNTING_DB"},
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml, text]",
		Value: formatText,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging(false)

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Dir    string
	Config *config.Config
	DSN    string
	Debug  bool
	Format string
	Out    io.Writer

	db *sql.DB
}

// DB opens the reference store on first use.
func (a *appConfig) DB() (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	if err := data.Init(a.DSN); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	db, err := data.GetDB(a.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	return db, nil
}

func (a *appConfig) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 appName,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "Height-for-age z-score and stunting assessment for children under five",
		Metadata:             map[string]any{},
		Flags: []urfave.Flag{
			debugFlag,
			configDirFlag,
			dbFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			assessCmd,
			importCmd,
			tablesCmd,
			configCmd,
			resetCmd,
			serverCmd,
		},
		Before: func(c *urfave.Context) error {
			dir := c.String(configDirFlag.Name)
			if dir == "" {
				d, _, err := config.GetOrCreateHomeDir(appName)
				if err != nil {
					return fmt.Errorf("resolving home dir: %w", err)
				}
				dir = d
			}

			cfg, err := config.ReadOrCreate(dir)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}

			debug := c.Bool(debugFlag.Name)
			if debug {
				initLogging(true)
			} else {
				logging.SetDefaultCLILogger(cfg.LogLevel)
			}

			f := c.String(formatFlag.Name)
			switch f {
			case formatJSON, formatText:
			case formatYAML, "yml":
				f = formatYAML
			default:
				return fmt.Errorf("unsupported format %q (want json, yaml or text)", f)
			}

			dsn := c.String(dbFlag.Name)
			if dsn == "" {
				dsn = cfg.Database
			}
			if dsn == "" {
				dsn = filepath.Join(dir, data.DataFileName)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				Dir:    dir,
				Config: cfg,
				DSN:    dsn,
				Debug:  debug,
				Format: f,
				Out:    c.App.Writer,
			}
			slog.Debug("config loaded", "dir", dir, "source", cfg.Source, "format", f)
			return nil
		},
		After: func(c *urfave.Context) error {
			if cfg, ok := c.App.Metadata[appConfigKey].(*appConfig); ok {
				cfg.close()
			}
			return nil
		},
	}
}

func initLogging(debug bool) {
	level := "info"
	if debug {
		level = "debug"
	}
	logging.SetDefaultCLILogger(level)
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		return yaml.NewEncoder(w).Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
