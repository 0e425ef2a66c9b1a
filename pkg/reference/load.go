package reference

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/rafianfasaa/stunting/pkg/growth"
	"golang.org/x/sync/errgroup"
)

// Source names the file holding one WHO table.
type Source struct {
	Sex      growth.Sex      `json:"sex" yaml:"sex"`
	Standard growth.Standard `json:"standard" yaml:"standard"`
	Path     string          `json:"path" yaml:"path"`
}

// Workbook names of the published WHO tables, as distributed with the original tool.
var defaultFileNames = map[growth.Standard]map[growth.Sex]string{
	growth.Length: {
		growth.Male:   "Panjang_Laki-laki_usia_0-2-tahun_z-score.xlsx",
		growth.Female: "Panjang_Perempuan_usia_0-2-tahun_z-score-Panjang.xlsx",
	},
	growth.Height: {
		growth.Male:   "Tinggi_Laki-laki_usia_2-5-tahun_z-score.xlsx",
		growth.Female: "Tinggi_Perempuan_usia_2-5-tahun_z-score.xlsx",
	},
}

// DefaultSources returns the four sources under dir using the published workbook names.
func DefaultSources(dir string) []Source {
	list := make([]Source, 0, 4)
	for _, sex := range growth.Sexes {
		for _, std := range growth.Standards {
			list = append(list, Source{
				Sex:      sex,
				Standard: std,
				Path:     filepath.Join(dir, defaultFileNames[std][sex]),
			})
		}
	}
	return list
}

// LoadTable reads and validates the table of one source.
func LoadTable(src Source) (*growth.Table, error) {
	rows, err := ReadFile(src.Path)
	if err != nil {
		return nil, err
	}
	t, err := growth.NewTable(src.Sex, src.Standard, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}
	slog.Debug("reference table loaded", "sex", src.Sex, "standard", src.Standard,
		"rows", t.Len(), "path", src.Path)
	return t, nil
}

// LoadSet reads all sources concurrently and builds the reference set. The first failure
// cancels the remaining reads.
func LoadSet(ctx context.Context, sources []Source) (*growth.ReferenceSet, error) {
	tables := make([]*growth.Table, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := LoadTable(src)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return growth.NewReferenceSet(tables...)
}
