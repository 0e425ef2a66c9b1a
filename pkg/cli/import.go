package cli

import (
	"fmt"
	"log/slog"

	"github.com/rafianfasaa/stunting/pkg/data"
	"github.com/rafianfasaa/stunting/pkg/reference"
	"github.com/urfave/cli/v2"
)

var (
	dirFlag = &cli.StringFlag{
		Name:  "dir",
		Usage: "Directory holding the four WHO workbooks under their published names (overrides config paths)",
	}

	baseURLFlag = &cli.StringFlag{
		Name:  "base-url",
		Usage: "http(s) location serving the four WHO workbooks under their published names",
	}

	importCmd = &cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Import the WHO reference tables into the reference store",
		UsageText: `stunting import                        # import the files listed in config
   stunting import --dir rumus            # import the published workbooks from a directory
   stunting import --base-url https://example.org/who/rumus
   stunting --db postgres://who@db/who import --dir rumus`,
		Action: cmdImport,
		Flags: []cli.Flag{
			dirFlag,
			baseURLFlag,
		},
	}
)

type importResult struct {
	Database string         `json:"database" yaml:"database"`
	Tables   []*data.Import `json:"tables" yaml:"tables"`
}

func cmdImport(c *cli.Context) error {
	app := getConfig(c)

	sources := configSources(app)
	switch {
	case c.IsSet(dirFlag.Name) && c.IsSet(baseURLFlag.Name):
		return fmt.Errorf("use either --%s or --%s", dirFlag.Name, baseURLFlag.Name)
	case c.IsSet(dirFlag.Name):
		sources = reference.DefaultSources(c.String(dirFlag.Name))
	case c.IsSet(baseURLFlag.Name):
		sources = baseURLSources(c.String(baseURLFlag.Name))
	}

	// the whole set is validated before anything is written
	rs, err := loadSources(c.Context, sources)
	if err != nil {
		return fmt.Errorf("reading reference files: %w", err)
	}

	db, err := app.DB()
	if err != nil {
		return err
	}

	for _, src := range sources {
		t, ok := rs.Table(src.Sex, src.Standard)
		if !ok {
			return fmt.Errorf("missing %s/%s table", src.Sex, src.Standard)
		}
		if err := data.SaveTable(db, t, src.Path); err != nil {
			return fmt.Errorf("saving %s/%s: %w", src.Sex, src.Standard, err)
		}
		slog.Info("imported", "sex", src.Sex, "standard", src.Standard, "rows", t.Len())
	}

	list, err := data.GetImports(db)
	if err != nil {
		return fmt.Errorf("listing imports: %w", err)
	}

	res := &importResult{Database: data.Redact(app.DSN), Tables: list}
	if app.Format == formatText {
		return printImports(app.Out, res.Database, list)
	}
	return encode(app.Out, app.Format, res)
}
