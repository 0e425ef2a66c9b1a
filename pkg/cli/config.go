package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rafianfasaa/stunting/pkg/config"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var (
	setFlag = &cli.StringSliceFlag{
		Name:  "set",
		Usage: "Update a value: key=value (keys: source, database, model, lookup, locale, log_level)",
	}

	configCmd = &cli.Command{
		Name:  "config",
		Usage: "Show or update the saved configuration",
		UsageText: `stunting config
   stunting config --set locale=en --set model=/opt/stunting/model.json`,
		Action: cmdConfig,
		Flags: []cli.Flag{
			setFlag,
		},
	}
)

func cmdConfig(c *cli.Context) error {
	app := getConfig(c)

	sets := c.StringSlice(setFlag.Name)
	if len(sets) > 0 {
		next := *app.Config
		for _, kv := range sets {
			if err := applySetting(&next, kv); err != nil {
				return err
			}
		}
		if err := next.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := config.Save(app.Dir, &next); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		*app.Config = next
		slog.Info("config saved", "dir", app.Dir)
	}

	if app.Format == formatJSON {
		return encode(app.Out, formatJSON, app.Config)
	}
	return yaml.NewEncoder(app.Out).Encode(app.Config)
}

func applySetting(c *config.Config, kv string) error {
	key, val, ok := strings.Cut(kv, "=")
	if !ok || key == "" {
		return fmt.Errorf("invalid setting %q, want key=value", kv)
	}
	switch strings.TrimSpace(key) {
	case "source":
		c.Source = val
	case "database":
		c.Database = val
	case "model":
		c.Model = val
	case "lookup":
		c.Lookup = val
	case "locale":
		c.Locale = val
	case "log_level":
		c.LogLevel = val
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
