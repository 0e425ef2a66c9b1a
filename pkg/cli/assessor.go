package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/rafianfasaa/stunting/pkg/config"
	"github.com/rafianfasaa/stunting/pkg/data"
	"github.com/rafianfasaa/stunting/pkg/growth"
	"github.com/rafianfasaa/stunting/pkg/model"
	"github.com/rafianfasaa/stunting/pkg/net"
	"github.com/rafianfasaa/stunting/pkg/reference"
)

// assessorSettings are the config values a command may override with flags.
type assessorSettings struct {
	Source string
	Lookup string
	Locale string
	Model  string
}

// settingsFrom reads the saved settings; relative model paths are taken from the config dir.
func settingsFrom(app *appConfig) assessorSettings {
	cfg := app.Config
	return assessorSettings{
		Source: cfg.Source,
		Lookup: cfg.Lookup,
		Locale: cfg.Locale,
		Model:  config.ResolvePath(app.Dir, cfg.Model),
	}
}

func configSources(app *appConfig) []reference.Source {
	refs := app.Config.References.Resolve(app.Dir)
	list := make([]reference.Source, 0, 4)
	for _, sex := range growth.Sexes {
		for _, std := range growth.Standards {
			list = append(list, reference.Source{
				Sex:      sex,
				Standard: std,
				Path:     refs.Path(sex, std),
			})
		}
	}
	return list
}

// baseURLSources names the published workbooks under an http(s) base URL.
func baseURLSources(base string) []reference.Source {
	list := reference.DefaultSources("")
	for i := range list {
		list[i].Path = strings.TrimRight(base, "/") + "/" + list[i].Path
	}
	return list
}

// loadSources reads the tables of sources, downloading any URL first.
func loadSources(ctx context.Context, sources []reference.Source) (*growth.ReferenceSet, error) {
	dir, err := os.MkdirTemp("", appName+"-refs-")
	if err != nil {
		return nil, fmt.Errorf("creating download dir: %w", err)
	}
	defer os.RemoveAll(dir)

	local := make([]reference.Source, len(sources))
	for i, src := range sources {
		p, err := net.Fetch(ctx, src.Path, dir)
		if err != nil {
			return nil, err
		}
		local[i] = src
		local[i].Path = p
	}
	return reference.LoadSet(ctx, local)
}

func loadModel(ctx context.Context, src string) (*model.Adapter, error) {
	path := src
	if net.IsURL(src) {
		dir, err := os.MkdirTemp("", appName+"-model-")
		if err != nil {
			return nil, fmt.Errorf("creating download dir: %w", err)
		}
		defer os.RemoveAll(dir)

		if path, err = net.Fetch(ctx, src, dir); err != nil {
			return nil, err
		}
	}

	m, err := model.Load(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("classifier ready", "source", src, "features", m.Schema().Columns())
	return m, nil
}

func loadReferences(ctx context.Context, app *appConfig, source string) (*growth.ReferenceSet, error) {
	switch source {
	case config.SourceFiles:
		rs, err := loadSources(ctx, configSources(app))
		if err != nil {
			return nil, fmt.Errorf("loading reference files: %w", err)
		}
		return rs, nil
	case config.SourceDB:
		db, err := app.DB()
		if err != nil {
			return nil, err
		}
		rs, err := data.GetReferenceSet(db)
		if err != nil {
			return nil, fmt.Errorf("loading stored references: %w", err)
		}
		return rs, nil
	}
	return nil, fmt.Errorf("unsupported reference source %q", source)
}

// buildAssessor loads the tables and the optional model once, at startup.
func buildAssessor(ctx context.Context, app *appConfig, s assessorSettings) (*growth.Assessor, error) {
	policy, err := growth.ParseLookupPolicy(s.Lookup)
	if err != nil {
		return nil, err
	}
	locale, err := growth.ParseLocale(s.Locale)
	if err != nil {
		return nil, err
	}

	refs, err := loadReferences(ctx, app, s.Source)
	if err != nil {
		return nil, err
	}

	opts := []growth.Option{
		growth.WithLookupPolicy(policy),
		growth.WithLocale(locale),
		growth.WithLogger(slog.Default()),
	}
	if s.Model != "" {
		m, err := loadModel(ctx, s.Model)
		if err != nil {
			return nil, err
		}
		opts = append(opts, growth.WithLabeler(m))
	} else {
		slog.Debug("no model configured, results carry no model label")
	}

	return growth.NewAssessor(refs, opts...)
}
