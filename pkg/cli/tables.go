package cli

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/rafianfasaa/stunting/pkg/config"
	"github.com/rafianfasaa/stunting/pkg/data"
	"github.com/rafianfasaa/stunting/pkg/growth"
	"github.com/urfave/cli/v2"
)

var (
	standardFlag = &cli.StringFlag{
		Name:  "standard",
		Usage: "Only list tables of one standard [length, height]",
	}

	tablesCmd = &cli.Command{
		Name:    "tables",
		Aliases: []string{"t"},
		Usage:   "List the reference tables the assessor would use",
		Action:  cmdTables,
		Flags: []cli.Flag{
			sourceFlag,
			standardFlag,
		},
	}
)

type tableInfo struct {
	Sex        growth.Sex      `json:"sex" yaml:"sex"`
	Standard   growth.Standard `json:"standard" yaml:"standard"`
	Rows       int             `json:"rows" yaml:"rows"`
	FirstMonth float64         `json:"first_month" yaml:"first_month"`
	LastMonth  float64         `json:"last_month" yaml:"last_month"`
	Source     string          `json:"source,omitempty" yaml:"source,omitempty"`
	ImportedAt string          `json:"imported_at,omitempty" yaml:"imported_at,omitempty"`
}

func describeTables(rs *growth.ReferenceSet) []*tableInfo {
	list := make([]*tableInfo, 0, 4)
	for _, t := range rs.Tables() {
		rows := t.Rows()
		list = append(list, &tableInfo{
			Sex:        t.Sex,
			Standard:   t.Standard,
			Rows:       len(rows),
			FirstMonth: rows[0].Month,
			LastMonth:  rows[len(rows)-1].Month,
		})
	}
	return list
}

func cmdTables(c *cli.Context) error {
	app := getConfig(c)
	source := app.Config.Source
	if c.IsSet(sourceFlag.Name) {
		source = c.String(sourceFlag.Name)
	}

	var only growth.Standard
	if c.IsSet(standardFlag.Name) {
		std, err := growth.ParseStandard(c.String(standardFlag.Name))
		if err != nil {
			return err
		}
		only = std
	}

	rs, err := loadReferences(c.Context, app, source)
	if err != nil {
		return err
	}
	list := describeTables(rs)
	if only != "" {
		list = slices.DeleteFunc(list, func(ti *tableInfo) bool { return ti.Standard != only })
	}

	switch source {
	case config.SourceFiles:
		refs := app.Config.References.Resolve(app.Dir)
		for _, ti := range list {
			ti.Source = refs.Path(ti.Sex, ti.Standard)
		}
	case config.SourceDB:
		db, err := app.DB()
		if err != nil {
			return err
		}
		imports, err := data.GetImports(db)
		if err != nil {
			return fmt.Errorf("listing imports: %w", err)
		}
		for _, ti := range list {
			for _, imp := range imports {
				if imp.Sex == ti.Sex && imp.Standard == ti.Standard {
					ti.Source = imp.Source
					ti.ImportedAt = imp.ImportedAt
				}
			}
		}
	}

	if app.Format == formatText {
		return printTables(app.Out, list)
	}
	return encode(app.Out, app.Format, list)
}

func printTables(w io.Writer, list []*tableInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEX\tSTANDARD\tROWS\tMONTHS\tSOURCE")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%g-%g\t%s\n", t.Sex, t.Standard, t.Rows, t.FirstMonth, t.LastMonth, t.Source)
	}
	return tw.Flush()
}

func printImports(w io.Writer, database string, list []*data.Import) error {
	fmt.Fprintf(w, "database: %s\n", database)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEX\tSTANDARD\tROWS\tIMPORTED\tSOURCE")
	for _, i := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", i.Sex, i.Standard, i.Rows, i.ImportedAt, i.Source)
	}
	return tw.Flush()
}
