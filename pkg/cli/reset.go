package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/rafianfasaa/stunting/pkg/data"
	"github.com/urfave/cli/v2"
)

var (
	yesFlag = &cli.BoolFlag{
		Name:  "yes",
		Usage: "Skip the confirmation prompt",
	}

	resetCmd = &cli.Command{
		Name:   "reset",
		Usage:  "Delete all imported reference tables from the reference store",
		Flags:  []cli.Flag{yesFlag},
		Action: cmdReset,
	}
)

func cmdReset(c *cli.Context) error {
	app := getConfig(c)
	target := data.Redact(app.DSN)

	if !c.Bool(yesFlag.Name) {
		fmt.Fprintf(app.Out, "This will permanently delete all reference tables in %s\n", target)
		fmt.Fprint(app.Out, "Are you sure? [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(app.Out, "Aborted.")
			return nil
		}
	}

	db, err := app.DB()
	if err != nil {
		return err
	}

	n, err := data.DeleteAll(db)
	if err != nil {
		return fmt.Errorf("deleting reference tables: %w", err)
	}

	slog.Info("reference store cleared", "database", target, "rows", n)
	fmt.Fprintln(app.Out, "Reset complete.")
	return nil
}
