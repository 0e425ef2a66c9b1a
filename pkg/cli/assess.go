package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rafianfasaa/stunting/pkg/growth"
	"github.com/urfave/cli/v2"
)

var (
	sexFlag = &cli.StringFlag{
		Name:     "sex",
		Aliases:  []string{"s"},
		Usage:    "Sex of the child [male, female]",
		Required: true,
	}

	heightFlag = &cli.Float64Flag{
		Name:     "height",
		Usage:    "Measured length or height in cm",
		Required: true,
	}

	methodFlag = &cli.StringFlag{
		Name:     "method",
		Aliases:  []string{"m"},
		Usage:    "Measuring position [standing, lying_down]",
		Required: true,
	}

	ageFlag = &cli.IntFlag{
		Name:  "age",
		Usage: "Age in whole months (0-60)",
	}

	birthFlag = &cli.StringFlag{
		Name:  "birth",
		Usage: "Birth date (YYYY-MM-DD), used with --test instead of --age",
	}

	testDateFlag = &cli.StringFlag{
		Name:  "test",
		Usage: "Measurement date (YYYY-MM-DD)",
	}

	lookupFlag = &cli.StringFlag{
		Name:  "lookup",
		Usage: "Reference row lookup [auto, exact, nearest] (overrides config)",
	}

	localeFlag = &cli.StringFlag{
		Name:  "locale",
		Usage: "Language of labels and advice [id, en] (overrides config)",
	}

	modelFlag = &cli.StringFlag{
		Name:  "model",
		Usage: "Path to the classifier bundle (overrides config)",
	}

	sourceFlag = &cli.StringFlag{
		Name:  "source",
		Usage: "Reference table source [files, db] (overrides config)",
	}

	assessCmd = &cli.Command{
		Name:    "assess",
		Aliases: []string{"a"},
		Usage:   "Assess the height-for-age of one child",
		UsageText: `stunting assess --sex female --height 84.5 --method standing --age 26
   stunting assess --sex male --height 71 --method lying_down --birth 2024-01-31 --test 2024-12-15
   stunting --format json assess --sex male --height 92 --method standing --age 36 --locale en`,
		Action: cmdAssess,
		Flags: []cli.Flag{
			sexFlag,
			heightFlag,
			methodFlag,
			ageFlag,
			birthFlag,
			testDateFlag,
			lookupFlag,
			localeFlag,
			modelFlag,
			sourceFlag,
		},
	}
)

// overrideSettings applies the command flags that were set on top of the config values.
func overrideSettings(c *cli.Context, s assessorSettings) assessorSettings {
	if c.IsSet(lookupFlag.Name) {
		s.Lookup = c.String(lookupFlag.Name)
	}
	if c.IsSet(localeFlag.Name) {
		s.Locale = c.String(localeFlag.Name)
	}
	if c.IsSet(modelFlag.Name) {
		s.Model = c.String(modelFlag.Name)
	}
	if c.IsSet(sourceFlag.Name) {
		s.Source = c.String(sourceFlag.Name)
	}
	return s
}

func cmdAssess(c *cli.Context) error {
	app := getConfig(c)

	req := &assessRequest{
		Sex:       c.String(sexFlag.Name),
		HeightCM:  c.Float64(heightFlag.Name),
		Method:    c.String(methodFlag.Name),
		BirthDate: c.String(birthFlag.Name),
		TestDate:  c.String(testDateFlag.Name),
	}
	if c.IsSet(ageFlag.Name) {
		age := c.Int(ageFlag.Name)
		req.AgeMonths = &age
	}

	subject, err := req.subject()
	if err != nil {
		return err
	}

	a, err := buildAssessor(c.Context, app, overrideSettings(c, settingsFrom(app)))
	if err != nil {
		return err
	}

	res, err := a.Assess(subject)
	if err != nil {
		return fmt.Errorf("assessing: %w", err)
	}

	if app.Format == formatText {
		return printResult(app.Out, res)
	}
	return encode(app.Out, app.Format, res)
}

func categoryColor(cat growth.Category) *color.Color {
	switch cat {
	case growth.SeverelyStunted:
		return color.New(color.FgRed, color.Bold)
	case growth.Stunted:
		return color.New(color.FgYellow, color.Bold)
	case growth.Tall:
		return color.New(color.FgCyan, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func printResult(w io.Writer, r *growth.Result) error {
	bold := color.New(color.Bold)

	age := fmt.Sprintf("%d months", r.Age.WholeMonths)
	if r.Age.Days > 0 {
		age = fmt.Sprintf("%d months %d days (%.2f)", r.Age.WholeMonths, r.Age.Days, r.Age.Months)
	}

	lines := []struct {
		key string
		val string
	}{
		{"sex", string(r.Sex)},
		{"age", age},
		{"method", string(r.Method)},
		{"standard", fmt.Sprintf("%s (row %g, %s lookup)", r.Standard, r.Reference.Month, r.Lookup)},
		{"measured", fmt.Sprintf("%.1f cm", r.Measured)},
		{"corrected", fmt.Sprintf("%.1f cm (%+.1f)", r.Corrected, r.Adjustment)},
		{"z-score", fmt.Sprintf("%.2f", r.ZRounded)},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-10s %s\n", bold.Sprint(l.key), l.val); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%-10s %s\n", bold.Sprint("status"), categoryColor(r.Category).Sprint(r.Label)); err != nil {
		return err
	}
	if r.ModelLabel != "" {
		if _, err := fmt.Fprintf(w, "%-10s %s\n", bold.Sprint("model"), r.ModelLabel); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%s\n", r.Advice)
	return err
}
